package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docgen/internal/pipeline"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <template.docx>",
	Short: "List the fields a template expects",
	Long: `Fields reads a .docx template and prints each distinct {name} field once,
in the order the fields first appear. With --json it prints the discover
result object instead: {"success":true,"placeholders":[...]} or
{"success":false,"error":"..."}; the command then exits 0 either way.`,
	Args: cobra.ExactArgs(1),
	RunE: runFields,
}

func init() {
	fieldsCmd.Flags().Bool("json", false, "print the result as JSON")

	rootCmd.AddCommand(fieldsCmd)
}

func runFields(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// Discovery never converts, so progress stays off stdout.
	orch := pipeline.New(pipeline.Options{
		FS:     appFs,
		Engine: templateEngine(cfg),
	})

	res := orch.Discover(cmd.Context(), args[0], nil)
	if asJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
	}
	if !res.Success {
		return errors.New(res.Error)
	}
	for _, f := range res.Placeholders {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	return nil
}
