// Package prompt reads values interactively from the terminal, with
// echo disabled for secrets.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads interactive input. The zero value is not usable; use
// New for terminal prompting or set In and Out explicitly in tests.
type Prompter struct {
	In  io.Reader
	Out io.Writer
}

// New returns a Prompter attached to stdin and stderr. Output goes to
// stderr so prompts don't pollute piped stdout.
func New() *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stderr}
}

// Line prints the label and reads one line of input.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.Out, label)

	reader := bufio.NewReader(p.In)
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Password prints the label and reads a secret without echoing it.
// When stdin is not a terminal it falls back to a plain line read.
func (p *Prompter) Password(label string) (string, error) {
	fmt.Fprint(p.Out, label)

	if f, ok := p.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.Out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}

	reader := bufio.NewReader(p.In)
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question and returns the answer. Empty input
// returns the default.
func (p *Prompter) Confirm(label string, def bool) (bool, error) {
	suffix := " [y/N]: "
	if def {
		suffix = " [Y/n]: "
	}

	answer, err := p.Line(label + suffix)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
