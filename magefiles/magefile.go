//go:build mage

// Package main contains Mage build targets for docgen developer tooling.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "docgen"
	cmdPkg  = "./cmd/docgen"

	// converterImage is the LibreOffice image used by the container
	// conversion backend. It must match conversion.image.
	converterImage = "docgen-libreoffice:latest"
	imageDir       = "build/libreoffice"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	mg.Deps(Vet)
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Vet runs go vet over every package.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Image builds the LibreOffice converter image for the container backend.
// The image reads a .docx on stdin, takes the target format as its argument,
// and writes the converted file on stdout.
func Image() error {
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", imageDir, err)
	}
	files := map[string]string{
		"Dockerfile": dockerfile,
		"convert.sh": convertScript,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(imageDir, name), []byte(content), 0o755); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}

	runtime := "docker"
	if _, err := sh.Output("docker", "info"); err != nil {
		runtime = "podman"
	}
	return sh.RunV(runtime, "build", "-t", converterImage, imageDir)
}

const dockerfile = `FROM debian:bookworm-slim
RUN apt-get update \
 && apt-get install -y --no-install-recommends libreoffice-writer-nogui fonts-dejavu \
 && rm -rf /var/lib/apt/lists/*
COPY convert.sh /usr/local/bin/convert.sh
ENTRYPOINT ["/usr/local/bin/convert.sh"]
`

const convertScript = `#!/bin/sh
set -e
fmt="${1:-pdf}"
work=$(mktemp -d)
cat > "$work/document.docx"
soffice -env:UserInstallation=file://$work/profile --headless --norestore \
  --convert-to "$fmt" --outdir "$work/out" "$work/document.docx" >&2
cat "$work/out/document.$fmt"
`

// Stats prints project metrics: Go production and test line counts and the
// documentation word count.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// countGoLines walks the directory tree and counts non-blank lines in Go files.
// If testOnly is true, count only _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return skipDir(path, info)
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				total++
			}
		}
		return nil
	})
	return total, err
}

// skipDir skips directories the go tool ignores: names starting with "_"
// or ".", and testdata.
func skipDir(path string, info os.FileInfo) error {
	name := info.Name()
	if path != "." && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "testdata") {
		return filepath.SkipDir
	}
	return nil
}

// countDocWords walks root and counts words in .md and .yaml files.
func countDocWords(root string) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return skipDir(path, info)
		}
		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".yaml" && ext != ".yml" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(bytes.Fields(data))
		return nil
	})
	return total, err
}
