// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package template discovers the {name} fields of a docx template, binds
// user values to them, and renders the filled document.
package template

import (
	"fmt"

	"github.com/pdiddy/docgen/internal/docx"
	"github.com/pdiddy/docgen/pkg/types"
)

// Context maps every discovered field name to the value substituted for it.
type Context map[string]string

// Engine scans and renders templates with one set of document options, so
// the fields Scan reports are exactly the markers Render substitutes.
type Engine struct {
	opts docx.Options
}

// New returns an Engine configured from cfg.
func New(cfg types.TemplateConfig) *Engine {
	return &Engine{opts: docx.Options{Linebreaks: cfg.Linebreaks}}
}

// Scan returns the unique field names referenced by the template, in order
// of first appearance. It fails with a malformed-template error when data is
// not a docx archive.
func (e *Engine) Scan(data []byte) ([]string, error) {
	doc, err := docx.Parse(data, e.opts)
	if err != nil {
		return nil, types.NewStageError(types.KindMalformedTemplate, "scan", err)
	}
	return Fields(doc.FullText()), nil
}

// Render substitutes ctx into the template and returns the new archive.
// Markers with no entry in ctx render as the empty string.
func (e *Engine) Render(data []byte, ctx Context) ([]byte, error) {
	doc, err := docx.Parse(data, e.opts)
	if err != nil {
		return nil, types.NewStageError(types.KindRender, "render", err)
	}
	if err := doc.Render(ctx); err != nil {
		return nil, types.NewStageError(types.KindRender, "render", err)
	}
	out, err := doc.Bytes()
	if err != nil {
		return nil, types.NewStageError(types.KindRender, "render", fmt.Errorf("serializing rendered document: %w", err))
	}
	return out, nil
}

// Fields returns the unique marker names in text in order of first
// appearance. Empty names ("{}") are skipped. The result is never nil.
func Fields(text string) []string {
	fields := []string{}
	seen := make(map[string]bool)
	for _, m := range docx.Marker.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		fields = append(fields, name)
	}
	return fields
}

// Bind builds the substitution context for fields. Each field takes its
// value from values, or "" when absent; keys of values that are not fields
// are ignored.
func Bind(fields []string, values map[string]string) Context {
	ctx := make(Context, len(fields))
	for _, name := range fields {
		ctx[name] = values[name]
	}
	return ctx
}
