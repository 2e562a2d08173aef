// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// OutputFormat is the encoding of a generated document.
type OutputFormat string

const (
	// FormatDocx is the native archive format. Exporting to it is the identity.
	FormatDocx OutputFormat = "docx"
	// FormatPDF is the portable fixed-layout format produced by conversion.
	FormatPDF OutputFormat = "pdf"
)

// Ext returns the file extension for the format, including the leading dot.
func (f OutputFormat) Ext() string {
	return "." + string(f)
}

// ParseOutputFormat accepts "docx" or "pdf" in any case, with or without a
// leading dot.
func ParseOutputFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case FormatDocx, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q: use docx or pdf", s)
}

// Artifact is the final bytes of a generated document tagged with their
// format. It is handed to the orchestrator for writing and then discarded.
type Artifact struct {
	Format OutputFormat
	Data   []byte
}
