// Package doctor provides vocabulary preflight checks for chartok.
package doctor

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/go-chartok/internal/vocab"
)

// PassMark, WarnMark and FailMark are the prefix symbols printed for each
// check result.
const (
	PassMark = "✓"
	WarnMark = "!"
	FailMark = "✗"
)

// LoadFunc loads a vocabulary from path.
type LoadFunc func(path string) (*vocab.Store, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// VocabPath is the vocabulary definition to inspect.
	VocabPath string
	// Strict turns structural vocabulary issues into failures.
	Strict bool
	// Load parses the vocabulary; defaults to vocab.LoadFile.
	Load LoadFunc
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
	warnings []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// Warnings returns the list of non-fatal findings.
func (r *Result) Warnings() []string { return append([]string(nil), r.warnings...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) warn(msg string) { r.warnings = append(r.warnings, msg) }

// Run executes all checks and writes human-readable output to w.
// Each check line is prefixed with PassMark, WarnMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	load := cfg.Load
	if load == nil {
		load = vocab.LoadFile
	}

	// ---- vocab file -------------------------------------------------------
	if cfg.VocabPath == "" {
		res.fail("vocab file: no path configured")
		fmt.Fprintf(w, "%s vocab file: no path configured\n", FailMark)
		return res
	}
	if _, err := os.Stat(cfg.VocabPath); err != nil {
		res.fail(fmt.Sprintf("vocab file %q: %v", cfg.VocabPath, err))
		fmt.Fprintf(w, "%s vocab file %s: not found\n", FailMark, cfg.VocabPath)
		return res
	}
	fmt.Fprintf(w, "%s vocab file: %s\n", PassMark, cfg.VocabPath)

	// ---- parse ------------------------------------------------------------
	store, err := load(cfg.VocabPath)
	if err != nil {
		res.fail(fmt.Sprintf("vocab parse: %v", err))
		fmt.Fprintf(w, "%s vocab parse: %v\n", FailMark, err)
		return res
	}
	fmt.Fprintf(w, "%s vocab parse: %d tokens (%s)\n", PassMark, store.Len(), vocab.FormatFromPath(cfg.VocabPath))

	// ---- structure --------------------------------------------------------
	issues := vocab.Check(store)
	for _, issue := range issues {
		msg := "vocab check: " + issue.String()
		if cfg.Strict {
			res.fail(msg)
			fmt.Fprintf(w, "%s %s\n", FailMark, msg)
		} else {
			res.warn(msg)
			fmt.Fprintf(w, "%s %s\n", WarnMark, msg)
		}
	}
	if len(issues) == 0 {
		fmt.Fprintf(w, "%s vocab check: no issues\n", PassMark)
	}

	// ---- special tokens ---------------------------------------------------
	fmt.Fprintf(w, "%s special tokens: %s\n", PassMark, describeSpecials(store))

	return res
}

// describeSpecials renders each role as "<ROLE>=id" or "<ROLE>=unset".
func describeSpecials(s *vocab.Store) string {
	parts := make([]string, 0, len(vocab.Roles))
	for _, role := range vocab.Roles {
		if id, ok := s.Special(role); ok {
			parts = append(parts, fmt.Sprintf("%s=%d", role, id))
		} else {
			parts = append(parts, fmt.Sprintf("%s=unset", role))
		}
	}
	return strings.Join(parts, " ")
}
