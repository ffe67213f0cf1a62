package bench_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/example/go-chartok/internal/bench"
	"github.com/example/go-chartok/internal/testutil"
	"github.com/example/go-chartok/internal/tokenizer"
	"github.com/example/go-chartok/internal/vocab"
)

// ---------------------------------------------------------------------------
// Aggregation
// ---------------------------------------------------------------------------

func TestStats_MinMaxMean(t *testing.T) {
	durations := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
	}
	s := bench.ComputeStats(durations)

	if s.Min != 100*time.Millisecond {
		t.Errorf("want min=100ms, got %v", s.Min)
	}

	if s.Max != 300*time.Millisecond {
		t.Errorf("want max=300ms, got %v", s.Max)
	}

	if s.Mean != 200*time.Millisecond {
		t.Errorf("want mean=200ms, got %v", s.Mean)
	}
}

func TestStats_SingleRun(t *testing.T) {
	s := bench.ComputeStats([]time.Duration{150 * time.Millisecond})
	if s.Min != s.Max || s.Min != s.Mean {
		t.Errorf("single run: min/max/mean should all be equal, got min=%v max=%v mean=%v", s.Min, s.Max, s.Mean)
	}
}

func TestStats_Empty(t *testing.T) {
	if s := bench.ComputeStats(nil); s != (bench.Stats{}) {
		t.Errorf("empty input: want zero Stats, got %+v", s)
	}
}

// ---------------------------------------------------------------------------
// Throughput
// ---------------------------------------------------------------------------

func TestThroughput_Calculation(t *testing.T) {
	// 1000 runes in 500ms → 2000 runes/s
	got := bench.CalcThroughput(1000, 500*time.Millisecond)
	if got < 1999.9 || got > 2000.1 {
		t.Errorf("want throughput≈2000, got %.4f", got)
	}
}

func TestThroughput_ZeroDuration(t *testing.T) {
	if got := bench.CalcThroughput(10, 0); got != 0 {
		t.Errorf("want 0 for zero duration, got %.4f", got)
	}
}

func TestMeanThroughput(t *testing.T) {
	runs := []bench.RunResult{
		{Duration: time.Millisecond, Throughput: 100},
		{Duration: time.Millisecond, Throughput: 300},
	}
	if got := bench.MeanThroughput(runs); got != 200 {
		t.Errorf("want mean 200, got %v", got)
	}
	if got := bench.MeanThroughput(nil); got != 0 {
		t.Errorf("want 0 for no runs, got %v", got)
	}
}

func TestMeanThroughput_SkipsZeroDurationRuns(t *testing.T) {
	runs := []bench.RunResult{
		{Duration: 0, Runes: 3, Throughput: bench.CalcThroughput(3, 0)},
		{Duration: time.Millisecond, Runes: 3, Throughput: 3000},
		{Duration: 0, Runes: 3, Throughput: 0},
	}

	got := bench.MeanThroughput(runs)
	if got != 3000 {
		t.Errorf("want mean 3000 over measured runs, got %v", got)
	}
	if err := bench.CheckThroughputFloor(got, 2000); err != nil {
		t.Errorf("zero-duration runs must not fail the floor: %v", err)
	}
}

func TestMeanThroughput_AllZeroDurationPassesFloor(t *testing.T) {
	runs := []bench.RunResult{{Runes: 3}, {Runes: 3}}

	got := bench.MeanThroughput(runs)
	if !math.IsInf(got, 1) {
		t.Fatalf("want +Inf when no run was measurable, got %v", got)
	}
	if err := bench.CheckThroughputFloor(got, 1e9); err != nil {
		t.Errorf("unmeasurably fast runs must pass the floor: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Throughput floor gate
// ---------------------------------------------------------------------------

func TestThroughputFloor_BelowFloor(t *testing.T) {
	if err := bench.CheckThroughputFloor(500, 1000); err == nil {
		t.Error("want error when mean throughput is below floor")
	}
}

func TestThroughputFloor_AboveFloor(t *testing.T) {
	if err := bench.CheckThroughputFloor(1500, 1000); err != nil {
		t.Errorf("want no error above floor, got: %v", err)
	}
}

func TestThroughputFloor_ExactlyAtFloor(t *testing.T) {
	if err := bench.CheckThroughputFloor(1000, 1000); err != nil {
		t.Errorf("want no error at exact floor, got: %v", err)
	}
}

func TestThroughputFloor_DisabledWhenZero(t *testing.T) {
	if err := bench.CheckThroughputFloor(0, 0); err != nil {
		t.Errorf("floor=0 should disable gate, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Runner
// ---------------------------------------------------------------------------

func TestRun_RecordsEachRoundTrip(t *testing.T) {
	store, err := vocab.Parse([]byte(testutil.ScenarioVocabJSON), vocab.FormatJSON)
	if err != nil {
		t.Fatalf("parse vocab: %v", err)
	}
	tok, err := tokenizer.New(store)
	if err != nil {
		t.Fatalf("tokenizer.New: %v", err)
	}

	results, err := bench.Run(tok, bench.Options{
		Text:   "abcabc",
		Runs:   3,
		Encode: tokenizer.EncodeOptions{AddBOS: true, AddEOS: true},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("want 3 results, got %d", len(results))
	}

	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d: Index = %d", i, r.Index)
		}
		if r.Cold != (i == 0) {
			t.Errorf("result %d: Cold = %v", i, r.Cold)
		}
		if r.Runes != 6 || r.IDs != 8 {
			t.Errorf("result %d: runes=%d ids=%d; want 6 and 8", i, r.Runes, r.IDs)
		}
	}
}

func TestRun_RejectsZeroRuns(t *testing.T) {
	if _, err := bench.Run(nil, bench.Options{Text: "a", Runs: 0}); err == nil {
		t.Error("want error for zero runs")
	}
}

// ---------------------------------------------------------------------------
// Output formatting
// ---------------------------------------------------------------------------

func TestFormatTable_ContainsHeaders(t *testing.T) {
	runs := []bench.RunResult{
		{Index: 0, Cold: true, Duration: 800 * time.Microsecond, Runes: 10, IDs: 12, Throughput: 12500},
		{Index: 1, Cold: false, Duration: 500 * time.Microsecond, Runes: 10, IDs: 12, Throughput: 20000},
	}
	stats := bench.ComputeStats(bench.Durations(runs))

	var buf strings.Builder
	bench.FormatTable(runs, stats, &buf)
	out := buf.String()

	for _, want := range []string{"run", "cold", "runes", "ids", "runes/s", "(mean)"} {
		if !strings.Contains(strings.ToLower(out), want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatJSON_IsValidJSON(t *testing.T) {
	runs := []bench.RunResult{
		{Index: 0, Cold: true, Duration: 800 * time.Microsecond, Runes: 4, IDs: 4, Throughput: 5000},
	}
	stats := bench.ComputeStats(bench.Durations(runs))

	var buf bytes.Buffer
	bench.FormatJSON(runs, stats, &buf)

	var out struct {
		Runs []struct {
			DurationUS int64 `json:"duration_us"`
			IDs        int   `json:"ids"`
		} `json:"runs"`
		Stats struct {
			MeanUS int64 `json:"mean_us"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("FormatJSON produced invalid JSON: %v\n%s", err, buf.String())
	}
	if len(out.Runs) != 1 || out.Runs[0].DurationUS != 800 || out.Runs[0].IDs != 4 {
		t.Errorf("unexpected runs: %+v", out.Runs)
	}
	if out.Stats.MeanUS != 800 {
		t.Errorf("mean_us = %d; want 800", out.Stats.MeanUS)
	}
}
