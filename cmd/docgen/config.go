// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/docgen/internal/convert"
	"github.com/pdiddy/docgen/internal/export"
	"github.com/pdiddy/docgen/internal/httputil"
	"github.com/pdiddy/docgen/internal/pipeline"
	"github.com/pdiddy/docgen/internal/template"
	"github.com/pdiddy/docgen/pkg/types"
)

// configFlags maps config keys to the flags that override them.
func configFlags() map[string]*pflag.Flag {
	return map[string]*pflag.Flag{
		"conversion.backend":  rootCmd.PersistentFlags().Lookup("backend"),
		"template.linebreaks": rootCmd.PersistentFlags().Lookup("linebreaks"),
		"batch.workers":       generateCmd.Flags().Lookup("workers"),
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	configureViper(cfgFile)

	// An explicitly set flag overrides the config file and environment.
	for key, flag := range configFlags() {
		if err := viper.BindPFlag(key, flag); err != nil {
			fmt.Fprintf(os.Stderr, "warning: binding flag for %s: %v\n", key, err)
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "warning: could not read config file %s: %v\n", cfgFile, err)
	}
}

// configureViper registers defaults, config file locations, and environment
// lookup. Environment variables use the DOCGEN_ prefix with dots replaced by
// underscores: DOCGEN_CONVERSION_BACKEND sets conversion.backend.
func configureViper(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docgen")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docgen"))
		}
	}

	setDefaults()

	viper.SetEnvPrefix("DOCGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// setDefaults registers every key so environment variables apply to keys no
// config file mentions.
func setDefaults() {
	d := types.DefaultConfig()
	viper.SetDefault("template.linebreaks", d.Template.Linebreaks)
	viper.SetDefault("conversion.backend", string(d.Conversion.Backend))
	viper.SetDefault("conversion.soffice_path", d.Conversion.SofficePath)
	viper.SetDefault("conversion.image", d.Conversion.Image)
	viper.SetDefault("conversion.gotenberg_url", d.Conversion.GotenbergURL)
	viper.SetDefault("conversion.timeout", d.Conversion.Timeout)
	viper.SetDefault("conversion.max_retries", d.Conversion.MaxRetries)
	viper.SetDefault("output.default_name", d.Output.DefaultName)
	viper.SetDefault("batch.workers", d.Batch.Workers)
}

// loadConfig decodes the merged settings.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

// appFs is the filesystem the CLI reads templates from and writes documents
// to. Tests replace it.
var appFs = afero.NewOsFs()

// newOrchestrator wires the pipeline from cfg. progress receives stage
// lines; prompter may be nil to decline every prompt.
func newOrchestrator(cfg types.Config, prompter pipeline.Prompter, progress io.Writer) (*pipeline.Orchestrator, error) {
	conv, err := convert.New(cfg.Conversion)
	if err != nil {
		return nil, err
	}
	httputil.Log = os.Stderr

	return pipeline.New(pipeline.Options{
		FS:          appFs,
		Engine:      templateEngine(cfg),
		Exporter:    export.New(conv),
		Prompter:    prompter,
		Progress:    progress,
		DefaultName: cfg.Output.DefaultName,
	}), nil
}

func templateEngine(cfg types.Config) *template.Engine {
	return template.New(cfg.Template)
}
