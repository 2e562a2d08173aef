// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docgen CLI.
// docgen discovers the {name} fields of a .docx template and writes filled
// documents as .docx or .pdf.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the docgen CLI.
var rootCmd = &cobra.Command{
	Use:   "docgen",
	Short: "Fill .docx templates and export them as .docx or .pdf",
	Long: `docgen fills Word templates. A template is an ordinary .docx file whose
text contains fields written as {name}. docgen lists those fields, takes a
value for each, and saves the filled document as .docx or, through
LibreOffice, as .pdf.

Use fields to list a template's fields, generate to produce documents, and
ipc to drive both operations from another program over stdin and stdout.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docgen.yaml or ~/.config/docgen/docgen.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "PDF conversion backend: soffice, container, or gotenberg")
	rootCmd.PersistentFlags().Bool("linebreaks", true, "render newlines in values as line breaks")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
