// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docgen/internal/docx/docxtest"
	"github.com/pdiddy/docgen/pkg/types"
)

func TestGenerateBatch(t *testing.T) {
	s := newSetup(t, nil)

	var reqs []GenerateRequest
	for i := 0; i < 6; i++ {
		reqs = append(reqs, GenerateRequest{
			TemplatePath: "invoice.docx",
			Values:       map[string]string{"client": fmt.Sprintf("Client %d", i), "amount": "10"},
			Format:       types.FormatPDF,
			Destination:  fmt.Sprintf("out/%d.pdf", i),
		})
	}
	reqs[2].Values = map[string]string{"client": "bad\x01"}
	reqs[4].Destination = ""

	res := s.orch.GenerateBatch(context.Background(), reqs, 3)

	assert.Equal(t, 4, res.Saved)
	assert.Equal(t, 1, res.Cancelled)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 6, res.Total())
	assert.True(t, res.HasFailures())
	assert.Equal(t, "Batch summary: 4 saved, 1 cancelled, 1 failed (total: 6)", res.Summary())
	assert.Equal(t, int32(4), atomic.LoadInt32(&s.conv.calls))

	require.Len(t, res.Results, 6)
	require.Len(t, res.States, 6)
	assert.Equal(t, "out/0.pdf", res.Results[0].Path)
	assert.Equal(t, types.OutcomeFailed, res.Results[2].Outcome)
	assert.Equal(t, types.StageFailed, res.States[2].Stage)
	assert.True(t, res.Results[4].Cancelled())
	assert.Equal(t, types.StageCancelled, res.States[4].Stage)

	data, err := afero.ReadFile(s.fs, "out/5.pdf")
	require.NoError(t, err)
	assert.Contains(t, string(data), "%PDF-")
	assert.Contains(t, s.out.String(), "failed: out/2.pdf: ")
}

func TestGenerateBatchEmpty(t *testing.T) {
	s := newSetup(t, nil)
	res := s.orch.GenerateBatch(context.Background(), nil, 0)
	assert.Zero(t, res.Total())
	assert.False(t, res.HasFailures())
	assert.Equal(t, "Batch summary: 0 saved, 0 cancelled, 0 failed (total: 0)", res.Summary())
}

func TestGenerateBatchOwnStatePerRun(t *testing.T) {
	s := newSetup(t, nil)
	require.NoError(t, afero.WriteFile(s.fs, "letter.docx", docxtest.Build(t, docxtest.Paragraphs("Hi {name}"), nil), 0o644))

	res := s.orch.GenerateBatch(context.Background(), []GenerateRequest{
		{TemplatePath: "invoice.docx", Destination: "a.docx"},
		{TemplatePath: "letter.docx", Destination: "b.docx", Values: map[string]string{"name": "Bo"}},
	}, 2)

	require.Equal(t, 2, res.Saved)
	assert.Equal(t, []string{"client", "amount"}, res.States[0].Fields)
	assert.Equal(t, []string{"name"}, res.States[1].Fields)
}
