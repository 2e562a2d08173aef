// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStateHappyPath(t *testing.T) {
	r := NewRunState("t.docx")
	for _, stage := range []RunStage{StageScanning, StageAwaitingInput, StageRendering, StageExporting, StageSaved} {
		require.NoError(t, r.Advance(stage), "advance to %s", stage)
	}
	assert.True(t, r.Stage.IsTerminal())
}

func TestRunStateTransitions(t *testing.T) {
	tests := []struct {
		from, to RunStage
		ok       bool
	}{
		{StageIdle, StageScanning, true},
		{StageIdle, StageRendering, false},
		{StageScanning, StageFailed, true},
		{StageScanning, StageCancelled, false},
		{StageAwaitingInput, StageRendering, true},
		{StageAwaitingInput, StageCancelled, false},
		{StageRendering, StageCancelled, true},
		{StageRendering, StageSaved, false},
		{StageExporting, StageCancelled, false},
		{StageExporting, StageFailed, true},
		{StageSaved, StageFailed, false},
		{StageFailed, StageScanning, false},
		{StageCancelled, StageExporting, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			r := &RunState{Stage: tt.from}
			err := r.Advance(tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, r.Stage)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.from, r.Stage, "a rejected transition leaves the run unchanged")
		})
	}
}

func TestRunStateZeroValueIsIdle(t *testing.T) {
	var r RunState
	require.NoError(t, r.Advance(StageScanning))
}

func TestRunStateFail(t *testing.T) {
	r := &RunState{Stage: StageRendering, Status: "Generating PDF..."}
	r.Fail(errors.New("boom"))
	assert.Equal(t, StageFailed, r.Stage)
	assert.Equal(t, "boom", r.Error)
	assert.Empty(t, r.Status)

	saved := &RunState{Stage: StageSaved}
	saved.Fail(errors.New("late"))
	assert.Equal(t, StageSaved, saved.Stage)
}

func TestRunStateBeginDiscardsPreviousRun(t *testing.T) {
	r := &RunState{TemplatePath: "a.docx", Fields: []string{"x"}, Stage: StageFailed, Error: "bad"}
	r.Begin("b.docx")
	assert.Equal(t, RunState{TemplatePath: "b.docx", Stage: StageIdle}, *r)
}
