// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const sofficeInput = "document.docx"

// commandRunner abstracts command execution for testing.
type commandRunner interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) error
}

type osRunner struct{}

func (osRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osRunner) Run(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// SofficeConverter converts documents with a local LibreOffice installation
// in headless mode. Each call works in its own temporary directory with its
// own LibreOffice profile.
type SofficeConverter struct {
	bin     string
	run     commandRunner
	tempDir string
}

// NewSofficeConverter returns a converter that invokes bin ("soffice" when
// empty). The binary is looked up on PATH at conversion time.
func NewSofficeConverter(bin string) *SofficeConverter {
	if bin == "" {
		bin = "soffice"
	}
	return &SofficeConverter{bin: bin, run: osRunner{}}
}

// Convert writes src to a temporary file, runs soffice --convert-to, and
// returns the converted file's bytes.
func (s *SofficeConverter) Convert(ctx context.Context, src []byte, ext string) ([]byte, error) {
	format := normalizeExt(ext)

	bin, err := s.run.LookPath(s.bin)
	if err != nil {
		return nil, conversionError("soffice", fmt.Errorf("LibreOffice is not available (%s): %w", s.bin, err))
	}

	dir, err := os.MkdirTemp(s.tempDir, "docgen-convert-")
	if err != nil {
		return nil, conversionError("soffice", fmt.Errorf("creating work directory: %w", err))
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, sofficeInput)
	if err := os.WriteFile(in, src, 0o600); err != nil {
		return nil, conversionError("soffice", fmt.Errorf("writing conversion input: %w", err))
	}
	outDir := filepath.Join(dir, "out")

	args := []string{
		"-env:UserInstallation=" + fileURL(filepath.Join(dir, "profile")),
		"--headless",
		"--norestore",
		"--convert-to", format,
		"--outdir", outDir,
		in,
	}
	if err := s.run.Run(ctx, bin, args...); err != nil {
		return nil, conversionError("soffice", fmt.Errorf("converting to %s with %s: %w", format, s.bin, err))
	}

	outPath := filepath.Join(outDir, strings.TrimSuffix(sofficeInput, filepath.Ext(sofficeInput))+"."+format)
	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, conversionError("soffice", fmt.Errorf("%s produced no %s output: %w", s.bin, format, err))
	}
	if len(out) == 0 {
		return nil, conversionError("soffice", fmt.Errorf("%s produced empty %s output", s.bin, format))
	}
	return out, nil
}

// fileURL returns a file:// URL for an absolute path.
func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
