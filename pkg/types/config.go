// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TemplateConfig holds settings shared by the scanner and the renderer. Both
// stages must see the same values or discovered fields will not match what
// gets substituted.
type TemplateConfig struct {
	// Linebreaks renders newlines in values as line breaks (default true).
	Linebreaks bool `json:"linebreaks" yaml:"linebreaks" mapstructure:"linebreaks"`
}

// ConversionBackend identifies the tool that turns a rendered docx into PDF.
type ConversionBackend string

const (
	BackendSoffice   ConversionBackend = "soffice"
	BackendContainer ConversionBackend = "container"
	BackendGotenberg ConversionBackend = "gotenberg"
)

// ConversionConfig holds settings for the PDF conversion capability.
type ConversionConfig struct {
	// Backend selects the conversion tool: soffice, container, or gotenberg.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// SofficePath is the LibreOffice binary used by the soffice backend.
	SofficePath string `json:"soffice_path" yaml:"soffice_path" mapstructure:"soffice_path"`

	// Image is the container image used by the container backend. The image
	// reads a docx on stdin and writes a PDF on stdout.
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	// GotenbergURL is the base URL of a Gotenberg service.
	GotenbergURL string `json:"gotenberg_url" yaml:"gotenberg_url" mapstructure:"gotenberg_url"`

	// Timeout bounds a single conversion. Zero means no limit.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries is the number of 429 retries for HTTP backends (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// OutputConfig holds settings for saving generated documents.
type OutputConfig struct {
	// DefaultName is the file name offered by the save prompt, without
	// extension (default "document").
	DefaultName string `json:"default_name" yaml:"default_name" mapstructure:"default_name"`
}

// BatchConfig holds settings for batch generation.
type BatchConfig struct {
	// Workers caps the number of concurrent runs (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// Config groups all docgen settings.
type Config struct {
	Template   TemplateConfig   `json:"template" yaml:"template" mapstructure:"template"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Output     OutputConfig     `json:"output" yaml:"output" mapstructure:"output"`
	Batch      BatchConfig      `json:"batch" yaml:"batch" mapstructure:"batch"`
}

// DefaultConfig returns the settings used when no config file or flag
// overrides them.
func DefaultConfig() Config {
	return Config{
		Template: TemplateConfig{Linebreaks: true},
		Conversion: ConversionConfig{
			Backend:      BackendSoffice,
			SofficePath:  "soffice",
			Image:        "docgen-libreoffice:latest",
			GotenbergURL: "http://localhost:3000",
			MaxRetries:   5,
		},
		Output: OutputConfig{DefaultName: "document"},
		Batch:  BatchConfig{Workers: 4},
	}
}
