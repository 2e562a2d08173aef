package main

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docgen/internal/pipeline"
	"github.com/pdiddy/docgen/internal/values"
	"github.com/pdiddy/docgen/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate <template.docx>",
	Short: "Fill a template and save it as .docx or .pdf",
	Long: `Generate fills every {name} field of a template and saves the result.
Fields without a value are left empty. Values come from, in increasing
precedence, --values-dir (one file per field), --values (a YAML or JSON
mapping), and --set name=value.

Without --out, generate asks where to save, offering document.<format>.
Declining the prompt (end of input) cancels the run: nothing is converted
or written.

With --batch, generate produces one document per record of a YAML or JSON
list of {destination, format, values}. Records run concurrently, up to
batch.workers at a time, and a summary line follows.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("format", "docx", "output format: docx or pdf")
	generateCmd.Flags().StringP("out", "o", "", "destination path (skips the save prompt)")
	generateCmd.Flags().StringArray("set", nil, "field value as name=value (repeatable)")
	generateCmd.Flags().String("values", "", "YAML or JSON file mapping field names to values")
	generateCmd.Flags().String("values-dir", "", "directory with one file per field")
	generateCmd.Flags().String("batch", "", "YAML or JSON list of records to generate")
	generateCmd.Flags().String("state", "", "write the final run state as YAML to this file")
	generateCmd.Flags().Int("workers", 0, "concurrent batch runs (default from batch.workers)")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")
	batchFile, _ := cmd.Flags().GetString("batch")
	stateFile, _ := cmd.Flags().GetString("state")

	format, err := types.ParseOutputFormat(formatFlag)
	if err != nil {
		return err
	}
	base, err := collectValues(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if batchFile != "" {
		if out != "" {
			return fmt.Errorf("--out cannot be combined with --batch; records name their destinations")
		}
		return runBatch(cmd, cfg, args[0], batchFile, format, base, stateFile)
	}

	var prompter pipeline.Prompter = pipeline.FixedPrompter(out)
	if out == "" {
		prompter = pipeline.NewTerminalPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	}
	orch, err := newOrchestrator(cfg, prompter, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	state := types.NewRunState(args[0])
	res := orch.Generate(cmd.Context(), pipeline.GenerateRequest{
		TemplatePath: args[0],
		Values:       base,
		Format:       format,
	}, state)

	if stateFile != "" {
		if err := writeYAML(stateFile, state); err != nil {
			return err
		}
	}

	switch {
	case res.Success:
		return nil
	case res.Cancelled():
		fmt.Fprintln(cmd.ErrOrStderr(), res.Error)
		return nil
	default:
		return errors.New(res.Error)
	}
}

func runBatch(cmd *cobra.Command, cfg types.Config, templatePath, batchFile string, format types.OutputFormat, base map[string]string, stateFile string) error {
	records, err := values.LoadBatch(appFs, batchFile)
	if err != nil {
		return err
	}

	reqs := make([]pipeline.GenerateRequest, len(records))
	for i, r := range records {
		f := format
		if r.Format != "" {
			if f, err = types.ParseOutputFormat(r.Format); err != nil {
				return fmt.Errorf("batch record %d: %w", i+1, err)
			}
		}
		reqs[i] = pipeline.GenerateRequest{
			TemplatePath: templatePath,
			Values:       values.Merge(base, r.Values),
			Format:       f,
			Destination:  r.Destination,
		}
	}

	orch, err := newOrchestrator(cfg, nil, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	result := orch.GenerateBatch(cmd.Context(), reqs, cfg.Batch.Workers)
	fmt.Fprintln(cmd.OutOrStdout(), result.Summary())

	if stateFile != "" {
		if err := writeYAML(stateFile, result.States); err != nil {
			return err
		}
	}
	if result.HasFailures() {
		return fmt.Errorf("%d record(s) failed", result.Failed)
	}
	return nil
}

// collectValues merges the value sources named by flags. Later sources win.
func collectValues(cmd *cobra.Command) (map[string]string, error) {
	dir, _ := cmd.Flags().GetString("values-dir")
	file, _ := cmd.Flags().GetString("values")
	pairs, _ := cmd.Flags().GetStringArray("set")

	var fromDir, fromFile map[string]string
	var err error
	if dir != "" {
		if fromDir, err = values.LoadDir(appFs, dir); err != nil {
			return nil, err
		}
	}
	if file != "" {
		if fromFile, err = values.LoadFile(appFs, file); err != nil {
			return nil, err
		}
	}
	fromSet, err := values.ParseSet(pairs)
	if err != nil {
		return nil, err
	}
	return values.Merge(fromDir, fromFile, fromSet), nil
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling run state: %w", err)
	}
	if err := afero.WriteFile(appFs, path, data, 0o644); err != nil {
		return fmt.Errorf("writing run state: %w", err)
	}
	return nil
}
