// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

const (
	nsMain   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsStrict = "http://purl.oclc.org/ooxml/wordprocessingml/main"
	nsXML    = "http://www.w3.org/XML/1998/namespace"
)

// part is one tokenized text part. Offsets index into raw.
type part struct {
	name  string
	raw   []byte
	paras []*paragraph
}

type paragraph struct {
	segments []*segment
}

// segment is a run of text with no paragraph or line break inside it.
// Markers are matched within a single segment.
type segment struct {
	nodes []*textNode
}

// textNode is one w:t element.
type textNode struct {
	tagStart     int // start of the opening tag
	contentStart int // end of the opening tag
	contentEnd   int // start of the closing tag
	tagEnd       int // end of the closing tag
	text         string
	preserve     bool // opening tag already declares xml:space
}

func isWordNS(space string) bool {
	return space == nsMain || space == nsStrict
}

func (p *paragraph) current() *segment {
	return p.segments[len(p.segments)-1]
}

func (p *paragraph) breakLine() {
	if len(p.current().nodes) > 0 {
		p.segments = append(p.segments, &segment{})
	}
}

func (s *segment) text() string {
	var b strings.Builder
	for _, n := range s.nodes {
		b.WriteString(n.text)
	}
	return b.String()
}

// parsePart tokenizes raw, recording the byte span of every w:t element and
// the paragraph and line structure around it.
func parsePart(name string, raw []byte) (*part, error) {
	p := &part{name: name, raw: raw}
	dec := xml.NewDecoder(bytes.NewReader(raw))

	var (
		stack []*paragraph
		node  *textNode
		text  strings.Builder
	)
	top := func() *paragraph {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		end := dec.InputOffset()

		switch t := tok.(type) {
		case xml.StartElement:
			if !isWordNS(t.Name.Space) {
				continue
			}
			switch t.Name.Local {
			case "p":
				if outer := top(); outer != nil {
					outer.breakLine()
				}
				para := &paragraph{segments: []*segment{{}}}
				p.paras = append(p.paras, para)
				stack = append(stack, para)
			case "br", "cr":
				if para := top(); para != nil {
					para.breakLine()
				}
			case "t":
				node = &textNode{
					tagStart:     int(start),
					contentStart: int(end),
					preserve:     hasSpaceAttr(t.Attr),
				}
				text.Reset()
			}
		case xml.CharData:
			if node != nil {
				text.Write(t)
			}
		case xml.EndElement:
			if !isWordNS(t.Name.Space) {
				continue
			}
			switch t.Name.Local {
			case "p":
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			case "t":
				if node == nil {
					continue
				}
				node.contentEnd = int(start)
				node.tagEnd = int(end)
				node.text = text.String()
				if para := top(); para != nil {
					seg := para.current()
					seg.nodes = append(seg.nodes, node)
				}
				node = nil
			}
		}
	}
	return p, nil
}

func hasSpaceAttr(attrs []xml.Attr) bool {
	for _, a := range attrs {
		if a.Name.Local == "space" && (a.Name.Space == nsXML || a.Name.Space == "xml") {
			return true
		}
	}
	return false
}

func (p *part) lines() []string {
	var lines []string
	for _, para := range p.paras {
		for _, seg := range para.segments {
			lines = append(lines, seg.text())
		}
	}
	return lines
}

type edit struct {
	node *textNode
	text string
}

// render returns the part with every marker substituted and reports whether
// anything changed.
func (p *part) render(values map[string]string, opts Options) ([]byte, bool, error) {
	var edits []edit
	for _, para := range p.paras {
		for _, seg := range para.segments {
			edits = append(edits, seg.substitute(values)...)
		}
	}
	if len(edits) == 0 {
		return p.raw, false, nil
	}

	sort.Slice(edits, func(i, j int) bool {
		return edits[i].node.tagStart < edits[j].node.tagStart
	})

	var out bytes.Buffer
	out.Grow(len(p.raw))
	last := 0
	for _, e := range edits {
		if e.node.tagStart < last {
			return nil, false, fmt.Errorf("overlapping text elements at offset %d", e.node.tagStart)
		}
		out.Write(p.raw[last:e.node.tagStart])
		if err := p.writeNode(&out, e.node, e.text, opts); err != nil {
			return nil, false, err
		}
		last = e.node.tagEnd
	}
	out.Write(p.raw[last:])
	return out.Bytes(), true, nil
}

// substitute computes the new text of every node in the segment whose text
// changes. A value is written into the node that holds the marker's opening
// brace; marker characters in later nodes are dropped.
func (s *segment) substitute(values map[string]string) []edit {
	text := s.text()
	locs := Marker.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	var (
		edits []edit
		pos   int
		mi    int
	)
	for _, n := range s.nodes {
		ns, ne := pos, pos+len(n.text)
		pos = ne

		var b strings.Builder
		for at := ns; at < ne; {
			for mi < len(locs) && locs[mi][1] <= at {
				mi++
			}
			if mi < len(locs) && at >= locs[mi][0] {
				if at == locs[mi][0] {
					b.WriteString(values[text[locs[mi][2]:locs[mi][3]]])
				}
				at = min(locs[mi][1], ne)
				continue
			}
			next := ne
			if mi < len(locs) && locs[mi][0] < next {
				next = locs[mi][0]
			}
			b.WriteString(text[at:next])
			at = next
		}

		if got := b.String(); got != n.text {
			edits = append(edits, edit{node: n, text: got})
		}
	}
	return edits
}

// writeNode writes a replacement for the w:t element n holding text. The
// opening tag gains xml:space="preserve" so surrounding spaces survive.
func (p *part) writeNode(w *bytes.Buffer, n *textNode, text string, opts Options) error {
	open := p.raw[n.tagStart:n.contentStart]
	if !n.preserve {
		i := bytes.LastIndexByte(open, '>')
		if i < 0 || (i > 0 && open[i-1] == '/') {
			return fmt.Errorf("unexpected text element at offset %d", n.tagStart)
		}
		fixed := make([]byte, 0, len(open)+len(` xml:space="preserve"`))
		fixed = append(fixed, open[:i]...)
		fixed = append(fixed, ` xml:space="preserve"`...)
		fixed = append(fixed, open[i:]...)
		open = fixed
	}
	closing := p.raw[n.contentEnd:n.tagEnd]

	lines := []string{text}
	if opts.Linebreaks {
		lines = strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	}

	brTag := "<" + elementPrefix(open) + "br/>"
	w.Write(open)
	for i, line := range lines {
		if i > 0 {
			w.Write(closing)
			w.WriteString(brTag)
			w.Write(open)
		}
		if err := xml.EscapeText(w, []byte(line)); err != nil {
			return err
		}
	}
	w.Write(closing)
	return nil
}

// elementPrefix returns the namespace prefix of an opening tag including its
// colon ("w:"), or "" for an unprefixed tag.
func elementPrefix(open []byte) string {
	name := bytes.TrimPrefix(open, []byte("<"))
	end := bytes.IndexAny(name, " \t\r\n/>")
	if end >= 0 {
		name = name[:end]
	}
	if i := bytes.IndexByte(name, ':'); i >= 0 {
		return string(name[:i+1])
	}
	return ""
}
