// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package values loads field values for a run from the places a user can
// keep them: a directory of plain-text files, a YAML or JSON mapping, a batch
// file of records, and name=value pairs from the command line.
package values

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"
)

// LoadDir reads all files in dir and returns a map of filename to trimmed
// contents. Each file holds one field value. A missing directory is not an
// error; LoadDir returns an empty map. Dotfiles and subdirectories are
// skipped. Unreadable files produce a warning on stderr but do not abort.
//
// Unlike a YAML mapping, a directory keeps multi-line values readable, and
// trailing newlines added by editors are trimmed away.
func LoadDir(fs afero.Fs, dir string) (map[string]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading values directory %s: %w", dir, err)
	}

	values := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := afero.ReadFile(fs, filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read value %s: %v\n", name, err)
			continue
		}

		values[name] = strings.TrimSpace(string(data))
	}

	return values, nil
}

// LoadFile reads a mapping of field names to values from a YAML file. JSON
// objects are valid YAML and load the same way. Scalars keep their source
// text, so 42.50 stays "42.50"; null becomes "".
func LoadFile(fs afero.Fs, path string) (map[string]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading values file: %w", err)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing values file %s: %w", path, err)
	}
	return values, nil
}

// Record is one entry of a batch file: the values for one output document
// and where to write it. Format is optional and overrides the run's format.
type Record struct {
	Destination string            `yaml:"destination" json:"destination"`
	Format      string            `yaml:"format,omitempty" json:"format,omitempty"`
	Values      map[string]string `yaml:"values" json:"values"`
}

// LoadBatch reads a list of records from a YAML or JSON file. Every record
// must name a destination.
func LoadBatch(fs afero.Fs, path string) ([]Record, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}

	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing batch file %s: %w", path, err)
	}
	for i, r := range records {
		if strings.TrimSpace(r.Destination) == "" {
			return nil, fmt.Errorf("batch file %s: record %d has no destination", path, i+1)
		}
		if r.Values == nil {
			records[i].Values = map[string]string{}
		}
	}
	return records, nil
}

// ParseSet parses name=value pairs. The value may be empty and may itself
// contain '='; the name may not be empty.
func ParseSet(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid value %q: want name=value", p)
		}
		values[name] = value
	}
	return values, nil
}

// Merge combines layers into a new map. Later layers win.
func Merge(layers ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, l := range layers {
		for k, v := range l {
			out[k] = v
		}
	}
	return out
}
