package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSaveLocalAndReload(t *testing.T) {
	root := t.TempDir()

	if err := SaveLocal(root, KeyJiraProject, "PROJ"); err != nil {
		t.Fatalf("SaveLocal: %v", err)
	}
	if err := SaveLocal(root, KeyProvider, "jira"); err != nil {
		t.Fatalf("SaveLocal second key: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, localConfigName))
	if err != nil {
		t.Fatal(err)
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed[KeyJiraProject] != "PROJ" {
		t.Errorf("jira_project_key = %v", parsed[KeyJiraProject])
	}
	if parsed[KeyProvider] != "jira" {
		t.Errorf("provider = %v (earlier keys should survive)", parsed[KeyProvider])
	}
}

func TestSaveLocalRejectsUnknownKey(t *testing.T) {
	if err := SaveLocal(t.TempDir(), "bogus_key", "x"); err == nil {
		t.Error("unknown key accepted")
	}
}

func TestSaveLocalRequiresGitRoot(t *testing.T) {
	if err := SaveLocal("", KeyProvider, "jira"); err == nil {
		t.Error("empty git root accepted")
	}
}

func TestSaveLocalParsesBooleans(t *testing.T) {
	root := t.TempDir()

	if err := SaveLocal(root, KeyNonInteractive, "true"); err != nil {
		t.Fatalf("SaveLocal: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(root, localConfigName))
	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		t.Fatal(err)
	}
	if v, ok := parsed[KeyNonInteractive].(bool); !ok || !v {
		t.Errorf("non_interactive = %v (%T), want bool true", parsed[KeyNonInteractive], parsed[KeyNonInteractive])
	}
}
