package jira

import (
	"encoding/json"
	"strings"
)

// ADFDocument is an Atlassian Document Format document. Jira Cloud
// (API v3) uses ADF for rich-text fields like descriptions and
// comments.
type ADFDocument struct {
	Version int       `json:"version"`
	Type    string    `json:"type"`
	Content []ADFNode `json:"content,omitempty"`
}

// ADFNode is one node in an ADF document tree.
type ADFNode struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Content []ADFNode      `json:"content,omitempty"`
	Marks   []ADFMark      `json:"marks,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// ADFMark is a formatting mark on a text node (strong, em, link, ...).
type ADFMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// TextToADF converts plain text into a minimal ADF document. Each line
// becomes a paragraph; blank lines become empty paragraphs so the
// round trip preserves spacing.
func TextToADF(text string) *ADFDocument {
	doc := &ADFDocument{Version: 1, Type: "doc"}

	for _, line := range strings.Split(text, "\n") {
		para := ADFNode{Type: "paragraph"}
		if line != "" {
			para.Content = []ADFNode{{Type: "text", Text: line}}
		}
		doc.Content = append(doc.Content, para)
	}

	return doc
}

// Text flattens the document to plain text. Block-level nodes are
// joined with newlines; inline formatting is dropped.
func (d *ADFDocument) Text() string {
	if d == nil {
		return ""
	}

	var blocks []string
	for _, node := range d.Content {
		blocks = append(blocks, flattenNode(node))
	}
	return strings.Join(blocks, "\n")
}

// flattenNode extracts the text content of one node and its children.
func flattenNode(node ADFNode) string {
	if node.Type == "text" {
		return node.Text
	}
	if node.Type == "hardBreak" {
		return "\n"
	}

	var parts []string
	for _, child := range node.Content {
		parts = append(parts, flattenNode(child))
	}

	sep := ""
	switch node.Type {
	case "bulletList", "orderedList", "listItem", "blockquote", "panel":
		sep = "\n"
	}
	return strings.Join(parts, sep)
}

// DescriptionText extracts plain text from a description field, which
// is an ADF object on Cloud (v3) and a plain string on Server (v2).
func DescriptionText(description any) string {
	switch v := description.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		var doc ADFDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return ""
		}
		return doc.Text()
	}
}
