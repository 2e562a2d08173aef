// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docx reads a WordprocessingML archive, exposes its text the way
// the renderer sees it, substitutes {name} markers, and writes the archive
// back out.
//
// Only the w:t elements that carry marker text are rewritten. Every other
// byte of a text part, and every other archive entry, is copied unchanged.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const mainPart = "word/document.xml"

// Marker matches a {name} placeholder: the shortest span from a literal "{"
// to the next literal "}". Matching is left to right and non-overlapping,
// nested braces get no special treatment, and "." stops at newlines so a
// marker never crosses a paragraph or line break.
var Marker = regexp.MustCompile(`\{(.*?)\}`)

// textPartPattern selects the parts, besides the main document, whose text
// is scanned and rendered.
var textPartPattern = regexp.MustCompile(`^word/(header\d*|footer\d*|footnotes|endnotes)\.xml$`)

// ErrNotDocx reports an archive without word/document.xml.
var ErrNotDocx = errors.New("not a valid DOCX file: missing word/document.xml")

// Options control how text is extracted and rendered. Scanning and
// rendering must use the same Options.
type Options struct {
	// Linebreaks renders "\n" in a value as a w:br line break.
	Linebreaks bool
}

// Document is a parsed template archive. It is built for one run and is
// not safe for concurrent use.
type Document struct {
	opts     Options
	comment  string
	files    []*zip.File
	parts    map[string]*part
	order    []string
	rendered map[string][]byte
}

// Parse reads a docx archive from data. It fails when data is not a zip
// archive, when word/document.xml is missing, or when a text part is not
// well-formed XML.
func Parse(data []byte, opts Options) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("reading template archive: %w", err)
	}

	d := &Document{
		opts:    opts,
		comment: zr.Comment,
		files:   zr.File,
		parts:   make(map[string]*part),
	}

	var others []string
	for _, f := range zr.File {
		if f.Name != mainPart && !textPartPattern.MatchString(f.Name) {
			continue
		}
		if _, dup := d.parts[f.Name]; dup {
			return nil, fmt.Errorf("reading template archive: duplicate entry %s", f.Name)
		}
		raw, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		p, err := parsePart(f.Name, raw)
		if err != nil {
			return nil, err
		}
		d.parts[f.Name] = p
		if f.Name != mainPart {
			others = append(others, f.Name)
		}
	}

	if _, ok := d.parts[mainPart]; !ok {
		return nil, ErrNotDocx
	}

	sort.Strings(others)
	d.order = append([]string{mainPart}, others...)
	return d, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return data, nil
}

// Parts returns the names of the text parts in scan order: the main
// document first, then headers, footers, footnotes and endnotes by name.
func (d *Document) Parts() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// FullText returns the document text as the renderer sees it. Each
// paragraph, and each line inside a paragraph split by w:br or w:cr, is one
// line; lines are joined with "\n" across all text parts.
func (d *Document) FullText() string {
	var lines []string
	for _, name := range d.order {
		lines = append(lines, d.parts[name].lines()...)
	}
	return strings.Join(lines, "\n")
}

// Render substitutes every marker in every text part. A marker whose name
// has no entry in values is replaced by the empty string. Render may be
// called again; each call starts from the original template text.
func (d *Document) Render(values map[string]string) error {
	for name, v := range values {
		if !utf8.ValidString(v) {
			return fmt.Errorf("value for field %q is not valid UTF-8", name)
		}
		if i := invalidXMLChar(v); i >= 0 {
			return fmt.Errorf("value for field %q contains a character not allowed in XML at offset %d", name, i)
		}
	}

	rendered := make(map[string][]byte)
	for _, name := range d.order {
		out, changed, err := d.parts[name].render(values, d.opts)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", name, err)
		}
		if changed {
			rendered[name] = out
		}
	}
	d.rendered = rendered
	return nil
}

// Bytes serializes the archive. Entries are written in their original order;
// entries Render did not touch are copied without recompression.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range d.files {
		data, ok := d.rendered[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Comment:  f.Comment,
			Method:   f.Method,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", f.Name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}

	if d.comment != "" {
		if err := zw.SetComment(d.comment); err != nil {
			return nil, fmt.Errorf("setting archive comment: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// invalidXMLChar returns the byte offset of the first rune in s that XML 1.0
// cannot represent, or -1.
func invalidXMLChar(s string) int {
	for i, r := range s {
		switch {
		case r == 0x09 || r == 0x0A || r == 0x0D:
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= 0x10FFFF:
		default:
			return i
		}
	}
	return -1
}
