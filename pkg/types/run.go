// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// RunStage is the position of a single pipeline run.
//
//	idle -> scanning -> awaiting_input -> rendering -> exporting -> saved
//
// Any non-terminal stage may move to failed. cancelled is reachable only
// from rendering, where the destination is requested.
type RunStage string

const (
	StageIdle          RunStage = "idle"
	StageScanning      RunStage = "scanning"
	StageAwaitingInput RunStage = "awaiting_input"
	StageRendering     RunStage = "rendering"
	StageExporting     RunStage = "exporting"
	StageSaved         RunStage = "saved"
	StageFailed        RunStage = "failed"
	StageCancelled     RunStage = "cancelled"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s RunStage) IsTerminal() bool {
	switch s {
	case StageSaved, StageFailed, StageCancelled:
		return true
	default:
		return false
	}
}

func isAllowedTransition(from, to RunStage) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StageFailed {
		return true
	}
	switch from {
	case StageIdle:
		return to == StageScanning
	case StageScanning:
		return to == StageAwaitingInput
	case StageAwaitingInput:
		return to == StageRendering
	case StageRendering:
		return to == StageExporting || to == StageCancelled
	case StageExporting:
		return to == StageSaved
	default:
		return false
	}
}

// RunState is the caller-owned record of one run: the selected template,
// the discovered fields, the values entered so far, and status strings for
// display. It is passed by pointer through each stage and serializes to
// JSON or YAML as-is.
type RunState struct {
	TemplatePath string            `json:"template_path" yaml:"template_path"`
	Fields       []string          `json:"fields" yaml:"fields"`
	Values       map[string]string `json:"values,omitempty" yaml:"values,omitempty"`
	Format       OutputFormat      `json:"format,omitempty" yaml:"format,omitempty"`
	Stage        RunStage          `json:"stage" yaml:"stage"`
	Status       string            `json:"status,omitempty" yaml:"status,omitempty"`
	Error        string            `json:"error,omitempty" yaml:"error,omitempty"`
	OutputPath   string            `json:"output_path,omitempty" yaml:"output_path,omitempty"`
}

// NewRunState returns an idle run for templatePath.
func NewRunState(templatePath string) *RunState {
	return &RunState{TemplatePath: templatePath, Stage: StageIdle}
}

// Begin discards everything recorded so far and starts a new idle run for
// templatePath.
func (r *RunState) Begin(templatePath string) {
	*r = RunState{TemplatePath: templatePath, Stage: StageIdle}
}

// Advance moves the run to stage to. It returns an error and leaves the run
// unchanged when the transition is not allowed.
func (r *RunState) Advance(to RunStage) error {
	from := r.Stage
	if from == "" {
		from = StageIdle
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed run transition: %s -> %s", from, to)
	}
	r.Stage = to
	return nil
}

// Fail records err and moves the run to failed. A run that already ended
// keeps its terminal stage.
func (r *RunState) Fail(err error) {
	r.Status = ""
	r.Error = err.Error()
	if !r.Stage.IsTerminal() {
		r.Stage = StageFailed
	}
}
