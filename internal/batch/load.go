// Package batch computes many diffs concurrently from a request file.
package batch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/sidediff/internal/diff"
)

// Request is one entry of a batch file. Each side is given inline (Old, New)
// or as a path (OldFile, NewFile). Inline values are decoded untyped and must
// turn out to be strings.
type Request struct {
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
	Old     any    `json:"old,omitempty" yaml:"old,omitempty"`
	New     any    `json:"new,omitempty" yaml:"new,omitempty"`
	OldFile string `json:"old_file,omitempty" yaml:"old_file,omitempty"`
	NewFile string `json:"new_file,omitempty" yaml:"new_file,omitempty"`

	// Overrides of the runner defaults. Method accepts canonical names and
	// the diffXxx aliases.
	Method          string `json:"method,omitempty" yaml:"method,omitempty"`
	DisableWordDiff *bool  `json:"disable_word_diff,omitempty" yaml:"disable_word_diff,omitempty"`
	LinesOffset     *int   `json:"lines_offset,omitempty" yaml:"lines_offset,omitempty"`
}

type document struct {
	Requests []Request `json:"requests" yaml:"requests"`
}

// Load reads a batch file. Files ending in .json are decoded as JSON and
// everything else as YAML. Relative old_file/new_file paths are resolved
// against the batch file's directory.
func Load(path string) ([]Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	reqs, err := Parse(data, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range reqs {
		reqs[i].OldFile = resolve(base, reqs[i].OldFile)
		reqs[i].NewFile = resolve(base, reqs[i].NewFile)
	}
	return reqs, nil
}

// Parse decodes a batch document from data.
func Parse(data []byte, isJSON bool) ([]Request, error) {
	var doc document
	if isJSON {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Requests, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return doc.Requests, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Texts returns both sides of r: file contents when a path is set, otherwise
// the inline values, which must be strings.
func (r Request) Texts() (oldText, newText string, err error) {
	if oldText, err = side("old", r.Old, r.OldFile); err != nil {
		return "", "", err
	}
	if newText, err = side("new", r.New, r.NewFile); err != nil {
		return "", "", err
	}
	return oldText, newText, nil
}

func side(name string, v any, path string) (string, error) {
	if path == "" {
		return diff.TextValue(name, v)
	}
	if v != nil {
		return "", fmt.Errorf("%w: both %s and %s_file are set", diff.ErrInvalidInput, name, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s file: %w", name, err)
	}
	return string(data), nil
}

// Options applies r's overrides to defaults.
func (r Request) Options(defaults diff.Options) diff.Options {
	opts := defaults
	if r.Method != "" {
		// Unknown names fall back to the default method, as in the engine.
		opts.CompareMethod, _ = diff.ParseMethod(r.Method)
	}
	if r.DisableWordDiff != nil {
		opts.DisableWordDiff = *r.DisableWordDiff
	}
	if r.LinesOffset != nil {
		opts.LinesOffset = *r.LinesOffset
	}
	return opts
}
