// Package bench provides benchmarking primitives for the chartok bench command.
package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/go-chartok/internal/tokenizer"
)

// Codec is the tokenizer surface exercised by a benchmark run.
type Codec interface {
	Encode(text string, opts tokenizer.EncodeOptions) []int
	Decode(ids []int, opts tokenizer.DecodeOptions) string
}

// ---------------------------------------------------------------------------
// Run result and stats
// ---------------------------------------------------------------------------

// RunResult holds the timing and size metadata for a single encode/decode run.
type RunResult struct {
	Index      int
	Cold       bool // true for the first run
	Duration   time.Duration
	Runes      int
	IDs        int
	Throughput float64 // runes per second
}

// Stats holds aggregate timing statistics across all runs.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean over a slice of durations.
// The slice must be non-empty.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

// Durations extracts the per-run durations from results.
func Durations(results []RunResult) []time.Duration {
	out := make([]time.Duration, len(results))
	for i, r := range results {
		out[i] = r.Duration
	}
	return out
}

// ---------------------------------------------------------------------------
// Throughput helpers
// ---------------------------------------------------------------------------

// CalcThroughput returns runes processed per second.
// Returns 0 if dur is zero to avoid division by zero.
func CalcThroughput(runes int, dur time.Duration) float64 {
	if dur <= 0 {
		return 0
	}
	return float64(runes) / dur.Seconds()
}

// MeanThroughput averages Throughput over runs with a measurable duration.
// Runs the clock recorded as zero carry no rate and are skipped; when every
// run is zero the text was processed faster than the clock resolution and
// the result is +Inf.
func MeanThroughput(results []RunResult) float64 {
	var (
		total    float64
		measured int
	)
	for _, r := range results {
		if r.Duration <= 0 {
			continue
		}
		total += r.Throughput
		measured++
	}
	if measured == 0 {
		if len(results) == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return total / float64(measured)
}

// CheckThroughputFloor returns an error if mean < floor.
// A floor of 0 disables the gate.
func CheckThroughputFloor(mean, floor float64) error {
	if floor <= 0 {
		return nil
	}
	if mean < floor {
		return fmt.Errorf("mean throughput %.0f runes/s is below floor %.0f", mean, floor)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Runner
// ---------------------------------------------------------------------------

// Options configures Run.
type Options struct {
	Text   string
	Runs   int
	Encode tokenizer.EncodeOptions
	Decode tokenizer.DecodeOptions
}

// Run encodes and decodes opts.Text opts.Runs times, timing each round trip.
func Run(c Codec, opts Options) ([]RunResult, error) {
	if opts.Runs < 1 {
		return nil, fmt.Errorf("runs must be at least 1, got %d", opts.Runs)
	}

	runes := utf8.RuneCountInString(opts.Text)
	results := make([]RunResult, 0, opts.Runs)

	for i := 0; i < opts.Runs; i++ {
		start := time.Now()
		ids := c.Encode(opts.Text, opts.Encode)
		_ = c.Decode(ids, opts.Decode)
		dur := time.Since(start)

		results = append(results, RunResult{
			Index:      i,
			Cold:       i == 0,
			Duration:   dur,
			Runes:      runes,
			IDs:        len(ids),
			Throughput: CalcThroughput(runes, dur),
		})
	}

	return results, nil
}

// ---------------------------------------------------------------------------
// Output formatters
// ---------------------------------------------------------------------------

// FormatTable writes a human-readable ASCII table of bench results to w.
func FormatTable(runs []RunResult, stats Stats, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%-5s  %-5s  %10s  %8s  %8s  %14s\n", "Run", "Cold", "µs", "Runes", "IDs", "Runes/s")
	fmt.Fprintln(sb, strings.Repeat("-", 60))

	for _, r := range runs {
		cold := ""
		if r.Cold {
			cold = "yes"
		}
		fmt.Fprintf(sb, "%-5d  %-5s  %10d  %8d  %8d  %14.0f\n",
			r.Index+1,
			cold,
			r.Duration.Microseconds(),
			r.Runes,
			r.IDs,
			r.Throughput,
		)
	}

	fmt.Fprintln(sb, strings.Repeat("-", 60))
	fmt.Fprintf(sb, "%-5s  %-5s  %10d  (min)\n", "", "", stats.Min.Microseconds())
	fmt.Fprintf(sb, "%-5s  %-5s  %10d  (mean)\n", "", "", stats.Mean.Microseconds())
	fmt.Fprintf(sb, "%-5s  %-5s  %10d  (max)\n", "", "", stats.Max.Microseconds())

	fmt.Fprint(w, sb.String())
}

// jsonReport is the top-level JSON structure emitted by FormatJSON.
type jsonReport struct {
	Runs  []jsonRun `json:"runs"`
	Stats jsonStats `json:"stats"`
}

type jsonRun struct {
	Index          int     `json:"index"`
	Cold           bool    `json:"cold"`
	DurationUS     int64   `json:"duration_us"`
	Runes          int     `json:"runes"`
	IDs            int     `json:"ids"`
	RunesPerSecond float64 `json:"runes_per_second"`
}

type jsonStats struct {
	MinUS  int64 `json:"min_us"`
	MeanUS int64 `json:"mean_us"`
	MaxUS  int64 `json:"max_us"`
}

// FormatJSON writes a JSON report of bench results to w.
func FormatJSON(runs []RunResult, stats Stats, w io.Writer) {
	jr := jsonReport{
		Runs: make([]jsonRun, len(runs)),
		Stats: jsonStats{
			MinUS:  stats.Min.Microseconds(),
			MeanUS: stats.Mean.Microseconds(),
			MaxUS:  stats.Max.Microseconds(),
		},
	}
	for i, r := range runs {
		jr.Runs[i] = jsonRun{
			Index:          r.Index,
			Cold:           r.Cold,
			DurationUS:     r.Duration.Microseconds(),
			Runes:          r.Runes,
			IDs:            r.IDs,
			RunesPerSecond: r.Throughput,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(jr)
}
