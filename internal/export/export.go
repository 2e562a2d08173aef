// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export produces the final artifact for a rendered document in the
// requested output format. The native format passes through untouched; PDF is
// delegated to a conversion backend.
package export

import (
	"context"
	"fmt"

	"github.com/pdiddy/docgen/internal/convert"
	"github.com/pdiddy/docgen/pkg/types"
)

// Exporter turns rendered docx bytes into an Artifact.
type Exporter struct {
	conv convert.Converter
}

// New returns an Exporter that uses conv for formats other than docx. conv
// may be nil when only docx output is needed; a PDF export then fails.
func New(conv convert.Converter) *Exporter {
	return &Exporter{conv: conv}
}

// Export returns rendered as the given format. For docx the returned
// artifact shares rendered's backing array. Failures are KindExport errors
// whose message is the cause's message.
func (e *Exporter) Export(ctx context.Context, rendered []byte, format types.OutputFormat) (types.Artifact, error) {
	switch format {
	case types.FormatDocx:
		return types.Artifact{Format: format, Data: rendered}, nil
	case types.FormatPDF:
		if e.conv == nil {
			return types.Artifact{}, exportError(fmt.Errorf("no PDF converter configured"))
		}
		data, err := e.conv.Convert(ctx, rendered, format.Ext())
		if err != nil {
			return types.Artifact{}, exportError(err)
		}
		return types.Artifact{Format: format, Data: data}, nil
	default:
		return types.Artifact{}, exportError(fmt.Errorf("unsupported output format %q", format))
	}
}

func exportError(err error) error {
	return types.NewStageError(types.KindExport, "export", err)
}
