// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks where to save a generated document. defaultName is the
// suggested file name including ext, the format's extension. ok is false
// when the user declines; that is a cancellation, not an error.
type Prompter interface {
	SaveDestination(defaultName, ext string) (path string, ok bool, err error)
}

// TerminalPrompter asks on a terminal. An empty answer accepts the default
// name; end of input declines.
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalPrompter returns a prompter reading answers from in and writing
// questions to out.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(in), out: out}
}

// SaveDestination prints "Save as [name]: " and reads one line.
func (p *TerminalPrompter) SaveDestination(defaultName, _ string) (string, bool, error) {
	fmt.Fprintf(p.out, "Save as [%s]: ", defaultName)

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, fmt.Errorf("reading destination: %w", err)
	}
	answer := strings.TrimSpace(line)
	if errors.Is(err, io.EOF) && answer == "" {
		fmt.Fprintln(p.out)
		return "", false, nil
	}
	if answer == "" {
		answer = defaultName
	}
	return answer, true, nil
}

// FixedPrompter answers every prompt with the same path. The empty path
// declines.
type FixedPrompter string

// SaveDestination returns the fixed path.
func (p FixedPrompter) SaveDestination(string, string) (string, bool, error) {
	return string(p), p != "", nil
}
