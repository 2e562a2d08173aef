// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the two user-facing operations end to end: discover
// the fields of a template, and generate a filled document in the chosen
// format. Every stage failure is turned into a result value; nothing escapes
// as a panic.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/pdiddy/docgen/internal/export"
	"github.com/pdiddy/docgen/internal/template"
	"github.com/pdiddy/docgen/pkg/types"
)

// Status messages recorded on the run state and printed as progress.
const (
	StatusExtracting = "Extracting placeholders..."
	StatusSaved      = "Document saved successfully at: "
)

// Options configures an Orchestrator.
type Options struct {
	// FS is the filesystem templates are read from and documents written to.
	FS afero.Fs

	Engine   *template.Engine
	Exporter *export.Exporter

	// Prompter asks for a destination when a request names none. A nil
	// Prompter declines every prompt.
	Prompter Prompter

	// Progress receives one line per stage. Nil discards.
	Progress io.Writer

	// DefaultName is the suggested file name without extension.
	DefaultName string
}

// Orchestrator sequences read, scan, bind, render, export and write. It
// holds no per-run state and is safe for concurrent use.
type Orchestrator struct {
	fs          afero.Fs
	engine      *template.Engine
	exporter    *export.Exporter
	prompter    Prompter
	defaultName string

	outMu    sync.Mutex
	out      io.Writer
	promptMu sync.Mutex
}

// New returns an Orchestrator for opts.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		fs:          opts.FS,
		engine:      opts.Engine,
		exporter:    opts.Exporter,
		prompter:    opts.Prompter,
		defaultName: opts.DefaultName,
		out:         opts.Progress,
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
	if o.engine == nil {
		o.engine = template.New(types.DefaultConfig().Template)
	}
	if o.exporter == nil {
		o.exporter = export.New(nil)
	}
	if o.prompter == nil {
		o.prompter = FixedPrompter("")
	}
	if o.defaultName == "" {
		o.defaultName = types.DefaultConfig().Output.DefaultName
	}
	if o.out == nil {
		o.out = io.Discard
	}
	return o
}

// GenerateRequest names the template, the values entered for its fields,
// the output format, and optionally where to save. An empty Destination
// makes Generate ask the Prompter.
type GenerateRequest struct {
	TemplatePath string
	Values       map[string]string
	Format       types.OutputFormat
	Destination  string
}

// Discover reads the template at path and returns its field names. state,
// when non-nil, is reset for path and left in awaiting_input on success.
func (o *Orchestrator) Discover(ctx context.Context, path string, state *types.RunState) (res types.DiscoverResult) {
	if state == nil {
		state = types.NewRunState(path)
	}
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("internal error: %v", r)
			state.Fail(err)
			res = types.DiscoverFailed(err)
		}
	}()

	state.Begin(path)
	fields, _, err := o.readAndScan(path, state)
	if err != nil {
		state.Fail(err)
		return types.DiscoverFailed(err)
	}
	return types.DiscoverOK(fields)
}

// readAndScan moves state from idle to awaiting_input and returns the
// template's fields and bytes. The template is read once per run.
func (o *Orchestrator) readAndScan(path string, state *types.RunState) ([]string, []byte, error) {
	if err := state.Advance(types.StageScanning); err != nil {
		return nil, nil, err
	}
	o.status(state, StatusExtracting)

	data, err := afero.ReadFile(o.fs, path)
	if err != nil {
		return nil, nil, types.NewStageError(types.KindIO, "read", err)
	}

	fields, err := o.engine.Scan(data)
	if err != nil {
		return nil, nil, err
	}
	state.Fields = fields
	if err := state.Advance(types.StageAwaitingInput); err != nil {
		return nil, nil, err
	}
	state.Status = fmt.Sprintf("Found %d placeholders", len(fields))
	return fields, data, nil
}

// Generate fills the template with req.Values and saves it in req.Format.
// The destination is asked for after rendering; when the user declines,
// nothing is converted or written and the result is the cancelled outcome.
// state, when non-nil, is reset for the template and records each stage.
func (o *Orchestrator) Generate(ctx context.Context, req GenerateRequest, state *types.RunState) (res types.GenerateResult) {
	if state == nil {
		state = types.NewRunState(req.TemplatePath)
	}
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("internal error: %v", r)
			state.Fail(err)
			res = types.GenerateFailed(err)
		}
	}()

	state.Begin(req.TemplatePath)
	path, err := o.generate(ctx, req, state)
	if err != nil {
		if !types.IsKind(err, types.KindCancelled) {
			state.Fail(err)
		}
		return types.GenerateFailed(err)
	}
	return types.GenerateOK(path)
}

func (o *Orchestrator) generate(ctx context.Context, req GenerateRequest, state *types.RunState) (string, error) {
	format := req.Format
	if format == "" {
		format = types.FormatDocx
	}
	state.Format = format
	if format != types.FormatDocx && format != types.FormatPDF {
		return "", types.NewStageError(types.KindExport, "export", fmt.Errorf("unsupported output format %q", format))
	}

	fields, data, err := o.readAndScan(req.TemplatePath, state)
	if err != nil {
		return "", err
	}

	values := template.Bind(fields, req.Values)
	state.Values = values
	if err := state.Advance(types.StageRendering); err != nil {
		return "", err
	}
	o.status(state, fmt.Sprintf("Generating %s...", strings.ToUpper(string(format))))

	rendered, err := o.engine.Render(data, values)
	if err != nil {
		return "", err
	}

	dest, err := o.destination(req.Destination, format)
	if err != nil {
		return "", err
	}
	if dest == "" {
		if err := state.Advance(types.StageCancelled); err != nil {
			return "", err
		}
		o.status(state, types.CancelledMessage)
		return "", types.ErrCancelled
	}

	if err := state.Advance(types.StageExporting); err != nil {
		return "", err
	}
	artifact, err := o.exporter.Export(ctx, rendered, format)
	if err != nil {
		return "", err
	}

	if err := o.write(dest, artifact.Data); err != nil {
		return "", err
	}
	state.OutputPath = dest
	if err := state.Advance(types.StageSaved); err != nil {
		return "", err
	}
	o.status(state, StatusSaved+dest)
	return dest, nil
}

// destination returns where to save, asking the prompter when requested is
// empty. A path without an extension gets the format's. The empty string
// means the user declined.
func (o *Orchestrator) destination(requested string, format types.OutputFormat) (string, error) {
	dest := requested
	if dest == "" {
		o.promptMu.Lock()
		path, ok, err := o.prompter.SaveDestination(o.defaultName+format.Ext(), format.Ext())
		o.promptMu.Unlock()
		if err != nil {
			return "", types.NewStageError(types.KindIO, "prompt", err)
		}
		if !ok || strings.TrimSpace(path) == "" {
			return "", nil
		}
		dest = path
	}
	if filepath.Ext(dest) == "" {
		dest += format.Ext()
	}
	return dest, nil
}

func (o *Orchestrator) write(dest string, data []byte) error {
	if dir := filepath.Dir(dest); dir != "." {
		if err := o.fs.MkdirAll(dir, 0o755); err != nil {
			return types.NewStageError(types.KindIO, "write", err)
		}
	}
	if err := afero.WriteFile(o.fs, dest, data, 0o644); err != nil {
		return types.NewStageError(types.KindIO, "write", err)
	}
	return nil
}

// status records msg on state and prints it as a progress line.
func (o *Orchestrator) status(state *types.RunState, msg string) {
	state.Status = msg
	o.printf("%s\n", msg)
}
