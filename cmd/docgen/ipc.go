package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docgen/internal/pipeline"
	"github.com/pdiddy/docgen/pkg/types"
)

// maxRequestSize bounds one request line.
const maxRequestSize = 16 << 20

var ipcCmd = &cobra.Command{
	Use:   "ipc",
	Short: "Serve discover and generate requests as JSON lines on stdin/stdout",
	Long: `Ipc lets another program drive docgen. Each line on stdin is one request
and each line on stdout is its result, in order:

  {"op":"discover","path":"invoice.docx"}
  {"success":true,"placeholders":["client","amount"]}

  {"op":"generate","templatePath":"invoice.docx","values":{"client":"Acme"},
   "outputFormat":"pdf","destination":"invoice.pdf"}
  {"success":true,"path":"invoice.pdf","outcome":"saved"}

A generate request without a destination is treated as a declined save and
returns {"success":false,"error":"Save cancelled","outcome":"cancelled"}.
Progress lines go to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		orch, err := newOrchestrator(cfg, nil, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return serveIPC(cmd.Context(), orch, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(ipcCmd)
}

type ipcRequest struct {
	Op           string            `json:"op"`
	Path         string            `json:"path"`
	TemplatePath string            `json:"templatePath"`
	Values       map[string]string `json:"values"`
	OutputFormat string            `json:"outputFormat"`
	Destination  string            `json:"destination"`
}

type ipcError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// serveIPC answers requests from in until it is exhausted. Requests are
// handled one at a time. A line that is not a valid request gets an error
// result; only a failure to read or write ends the loop early.
func serveIPC(ctx context.Context, orch *pipeline.Orchestrator, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxRequestSize)
	enc := json.NewEncoder(out)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := enc.Encode(handleIPC(ctx, orch, line)); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading requests: %w", err)
	}
	return nil
}

func handleIPC(ctx context.Context, orch *pipeline.Orchestrator, line string) any {
	var req ipcRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return ipcError{Error: fmt.Sprintf("invalid request: %v", err)}
	}

	switch req.Op {
	case "discover":
		return orch.Discover(ctx, req.Path, nil)
	case "generate":
		format := types.FormatDocx
		if req.OutputFormat != "" {
			f, err := types.ParseOutputFormat(req.OutputFormat)
			if err != nil {
				return types.GenerateFailed(types.NewStageError(types.KindExport, "export", err))
			}
			format = f
		}
		return orch.Generate(ctx, pipeline.GenerateRequest{
			TemplatePath: req.TemplatePath,
			Values:       req.Values,
			Format:       format,
			Destination:  req.Destination,
		}, nil)
	default:
		return ipcError{Error: fmt.Sprintf("unknown op %q: use discover or generate", req.Op)}
	}
}
