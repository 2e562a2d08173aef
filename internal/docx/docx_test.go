// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docgen/internal/docx/docxtest"
)

func mustParse(t *testing.T, data []byte, opts Options) *Document {
	t.Helper()
	doc, err := Parse(data, opts)
	require.NoError(t, err)
	return doc
}

func renderText(t *testing.T, data []byte, values map[string]string, opts Options) (string, []byte) {
	t.Helper()
	doc := mustParse(t, data, opts)
	require.NoError(t, doc.Render(values))
	out, err := doc.Bytes()
	require.NoError(t, err)
	return mustParse(t, out, opts).FullText(), out
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    func(t *testing.T) []byte
		wantErr string
	}{
		{
			name:    "not a zip archive",
			data:    func(*testing.T) []byte { return []byte("plain text, not an archive") },
			wantErr: "reading template archive",
		},
		{
			name: "archive without main document",
			data: func(t *testing.T) []byte {
				return docxtest.Zip(t, map[string]string{"word/styles.xml": "<styles/>"})
			},
			wantErr: "missing word/document.xml",
		},
		{
			name: "malformed document XML",
			data: func(t *testing.T) []byte {
				return docxtest.Zip(t, map[string]string{"word/document.xml": "<w:document><w:body>"})
			},
			wantErr: "parsing word/document.xml",
		},
		{
			name: "malformed header XML",
			data: func(t *testing.T) []byte {
				return docxtest.Build(t, docxtest.Paragraphs("ok"), map[string]string{"word/header1.xml": "<w:hdr"})
			},
			wantErr: "parsing word/header1.xml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data(t), Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseMissingMainIsErrNotDocx(t *testing.T) {
	_, err := Parse(docxtest.Zip(t, map[string]string{"a.txt": "x"}), Options{})
	assert.True(t, errors.Is(err, ErrNotDocx))
}

func TestFullText(t *testing.T) {
	body := docxtest.Paragraphs("Hello {name},", "second line") +
		`<w:p><w:r><w:t>before</w:t><w:br/><w:t>after</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve"> spaced </w:t></w:r><w:r><w:tab/><w:t>tabbed</w:t></w:r></w:p>` +
		`<w:p><w:r><w:delText>deleted</w:delText></w:r></w:p>`
	header := docxtest.Header(docxtest.Paragraphs("Header {title}"))

	doc := mustParse(t, docxtest.Build(t, body, map[string]string{"word/header1.xml": header}), Options{})

	want := strings.Join([]string{
		"Hello {name},",
		"second line",
		"before",
		"after",
		" spaced tabbed",
		"",
		"Header {title}",
	}, "\n")
	assert.Equal(t, want, doc.FullText())
	assert.Equal(t, []string{"word/document.xml", "word/header1.xml"}, doc.Parts())
}

func TestFullTextEmptyDocument(t *testing.T) {
	doc := mustParse(t, docxtest.Build(t, "", nil), Options{})
	assert.Equal(t, "", doc.FullText())
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		values map[string]string
		opts   Options
		want   string
	}{
		{
			name:   "single run",
			body:   docxtest.Paragraphs("Dear {client}, total due: {amount}"),
			values: map[string]string{"client": "Acme", "amount": "100"},
			want:   "Dear Acme, total due: 100",
		},
		{
			name:   "marker split across runs",
			body:   docxtest.Paragraph("Dear {cli", "ent}, hi"),
			values: map[string]string{"client": "Acme"},
			want:   "Dear Acme, hi",
		},
		{
			name:   "marker split across three runs",
			body:   docxtest.Paragraph("x{", "na", "me}y"),
			values: map[string]string{"name": "Z"},
			want:   "xZy",
		},
		{
			name:   "missing value renders empty",
			body:   docxtest.Paragraphs("[{missing}]"),
			values: map[string]string{},
			want:   "[]",
		},
		{
			name:   "non-greedy nested brace",
			body:   docxtest.Paragraphs("{a{b}c}"),
			values: map[string]string{"a{b": "X"},
			want:   "Xc}",
		},
		{
			name:   "empty marker",
			body:   docxtest.Paragraphs("a{}b"),
			values: map[string]string{},
			want:   "ab",
		},
		{
			name:   "unmatched brace left alone",
			body:   docxtest.Paragraphs("open { only"),
			values: map[string]string{},
			want:   "open { only",
		},
		{
			name:   "markup characters escaped",
			body:   docxtest.Paragraphs("{v}"),
			values: map[string]string{"v": `A & B <c> "d"`},
			want:   `A & B <c> "d"`,
		},
		{
			name:   "repeated marker",
			body:   docxtest.Paragraphs("{n} and {n}"),
			values: map[string]string{"n": "1"},
			want:   "1 and 1",
		},
		{
			name:   "linebreaks split value into lines",
			body:   docxtest.Paragraphs("{addr}"),
			values: map[string]string{"addr": "1 Main St\r\nSpringfield"},
			opts:   Options{Linebreaks: true},
			want:   "1 Main St\nSpringfield",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := renderText(t, docxtest.Build(t, tt.body, nil), tt.values, tt.opts)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderLinebreakMarkup(t *testing.T) {
	data := docxtest.Build(t, docxtest.Paragraphs("{addr}"), nil)

	_, out := renderText(t, data, map[string]string{"addr": "a\nb"}, Options{Linebreaks: true})
	xml := docxtest.Part(t, out, "word/document.xml")
	assert.Contains(t, xml, `<w:t xml:space="preserve">a</w:t><w:br/><w:t xml:space="preserve">b</w:t>`)

	_, out = renderText(t, data, map[string]string{"addr": "a\nb"}, Options{})
	xml = docxtest.Part(t, out, "word/document.xml")
	assert.NotContains(t, xml, "<w:br/>")
	assert.Contains(t, xml, "a&#xA;b")
}

func TestRenderHeaders(t *testing.T) {
	data := docxtest.Build(t, docxtest.Paragraphs("body {x}"), map[string]string{
		"word/header1.xml": docxtest.Header(docxtest.Paragraphs("head {x}")),
	})
	got, _ := renderText(t, data, map[string]string{"x": "1"}, Options{})
	assert.Equal(t, "body 1\nhead 1", got)
}

func TestRenderPreservesUntouchedBytes(t *testing.T) {
	body := `<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t>Hi {name}</w:t></w:r></w:p>` +
		docxtest.Paragraphs("no markers")
	data := docxtest.Build(t, body, map[string]string{"word/styles.xml": "<w:styles/>"})

	_, out := renderText(t, data, map[string]string{"name": "Ann"}, Options{})

	orig := docxtest.Part(t, data, "word/document.xml")
	got := docxtest.Part(t, out, "word/document.xml")
	want := strings.Replace(orig, "<w:t>Hi {name}</w:t>", `<w:t xml:space="preserve">Hi Ann</w:t>`, 1)
	assert.Equal(t, want, got)
	assert.Equal(t, "<w:styles/>", docxtest.Part(t, out, "word/styles.xml"))
}

func TestBytesWithoutRenderKeepsEntries(t *testing.T) {
	data := docxtest.Build(t, docxtest.Paragraphs("{a}"), map[string]string{"word/styles.xml": "<s/>"})
	doc := mustParse(t, data, Options{})

	out, err := doc.Bytes()
	require.NoError(t, err)
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/styles.xml"} {
		assert.Equal(t, docxtest.Part(t, data, name), docxtest.Part(t, out, name), name)
	}
}

func TestRenderDeterministic(t *testing.T) {
	data := docxtest.Build(t, docxtest.Paragraphs("Dear {client}", "{amount}"), nil)
	values := map[string]string{"client": "Acme", "amount": "100"}

	_, first := renderText(t, data, values, Options{Linebreaks: true})
	_, second := renderText(t, data, values, Options{Linebreaks: true})
	assert.Equal(t, first, second)
}

func TestRenderRejectsInvalidXMLCharacters(t *testing.T) {
	doc := mustParse(t, docxtest.Build(t, docxtest.Paragraphs("{v}"), nil), Options{})
	err := doc.Render(map[string]string{"v": "bell\x07"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "v"`)
}

func TestRenderRejectsInvalidUTF8(t *testing.T) {
	doc := mustParse(t, docxtest.Build(t, docxtest.Paragraphs("{v}"), nil), Options{})
	err := doc.Render(map[string]string{"v": "a\xffb"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "v"`)
	assert.Contains(t, err.Error(), "not valid UTF-8")
}

func TestRenderAgainStartsFromTemplate(t *testing.T) {
	doc := mustParse(t, docxtest.Build(t, docxtest.Paragraphs("{v}"), nil), Options{})
	require.NoError(t, doc.Render(map[string]string{"v": "first"}))
	require.NoError(t, doc.Render(map[string]string{"v": "second"}))

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "second", mustParse(t, out, Options{}).FullText())
}

func TestElementPrefix(t *testing.T) {
	assert.Equal(t, "w:", elementPrefix([]byte("<w:t>")))
	assert.Equal(t, "w:", elementPrefix([]byte(`<w:t xml:space="preserve">`)))
	assert.Equal(t, "", elementPrefix([]byte("<t>")))
}
