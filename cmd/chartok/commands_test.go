package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/example/go-chartok/internal/testutil"
)

const noUnknownVocab = testutil.NoUnknownVocabJSON

func writeVocab(t *testing.T, content string) string {
	t.Helper()
	return testutil.WriteVocabFile(t, "vocab.json", content)
}

// runRoot executes the root command with args and stdin, returning stdout.
func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	orig := activeCfg
	t.Cleanup(func() { activeCfg = orig })

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestEncodeCmd_WithMarkers(t *testing.T) {
	path := writeVocab(t, testutil.ScenarioVocabJSON)

	out, err := runRoot(t, "", "encode", "--paths-vocab-path", path, "--bos", "--eos", "abc")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := strings.TrimSpace(out); got != "[10,1,2,3,11]" {
		t.Errorf("encode output = %q; want [10,1,2,3,11]", got)
	}
}

func TestEncodeCmd_JoinsArgsWithSpaces(t *testing.T) {
	path := writeVocab(t, testutil.ScenarioVocabJSON)

	out, err := runRoot(t, "", "encode", "--paths-vocab-path", path, "a", "b")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// The space is not in the vocabulary and maps to <UNK>.
	if got := strings.TrimSpace(out); got != "[1,12,2]" {
		t.Errorf("encode output = %q; want [1,12,2]", got)
	}
}

func TestEncodeCmd_ReadsStdin(t *testing.T) {
	path := writeVocab(t, testutil.ScenarioVocabJSON)

	out, err := runRoot(t, "CAB\n", "encode", "--paths-vocab-path", path)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := strings.TrimSpace(out); got != "[3,1,2]" {
		t.Errorf("encode output = %q; want [3,1,2]", got)
	}
}

func TestEncodeCmd_EmptyInput(t *testing.T) {
	path := writeVocab(t, testutil.ScenarioVocabJSON)

	out, err := runRoot(t, "", "encode", "--paths-vocab-path", path)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := strings.TrimSpace(out); got != "[]" {
		t.Errorf("encode output = %q; want []", got)
	}
}

func TestEncodeCmd_MissingVocabFails(t *testing.T) {
	_, err := runRoot(t, "", "encode", "--paths-vocab-path", "/nonexistent/vocab.json", "abc")
	if err == nil {
		t.Fatal("expected error for missing vocabulary")
	}
}

func TestDecodeCmd_StripsByDefault(t *testing.T) {
	path := writeVocab(t, testutil.ScenarioVocabJSON)

	out, err := runRoot(t, "", "decode", "--paths-vocab-path", path, "10", "1,2", "3", "11")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := strings.TrimSuffix(out, "\n"); got != "abc" {
		t.Errorf("decode output = %q; want abc", got)
	}
}

func TestDecodeCmd_KeepSpecial(t *testing.T) {
	path := writeVocab(t, testutil.ScenarioVocabJSON)

	out, err := runRoot(t, "", "decode", "--paths-vocab-path", path, "--keep-special", "1", "2", "99")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := strings.TrimSuffix(out, "\n"); got != "ab<UNK>" {
		t.Errorf("decode output = %q; want ab<UNK>", got)
	}
}

func TestDecodeCmd_ReadsJSONFromStdin(t *testing.T) {
	path := writeVocab(t, testutil.ScenarioVocabJSON)

	out, err := runRoot(t, "[10,3,1,2,11]\n", "decode", "--paths-vocab-path", path)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := strings.TrimSuffix(out, "\n"); got != "cab" {
		t.Errorf("decode output = %q; want cab", got)
	}
}

func TestDecodeCmd_RejectsBadIDs(t *testing.T) {
	path := writeVocab(t, testutil.ScenarioVocabJSON)

	if _, err := runRoot(t, "", "decode", "--paths-vocab-path", path, "x"); err == nil {
		t.Error("expected error for non-integer id argument")
	}
	if _, err := runRoot(t, `{"ids":[1]}`, "decode", "--paths-vocab-path", path); err == nil {
		t.Error("expected error for non-array stdin")
	}
}

func TestVocabCmd_PrintsSizeAndSample(t *testing.T) {
	path := writeVocab(t, testutil.ScenarioVocabJSON)

	out, err := runRoot(t, "", "vocab", "--paths-vocab-path", path, "--sample", "2")
	if err != nil {
		t.Fatalf("vocab: %v", err)
	}

	want := "vocab size: 3\n\"a\"\t1\n\"b\"\t2\n"
	if out != want {
		t.Errorf("vocab output = %q; want %q", out, want)
	}
}

func TestVocabCmd_DefaultSampleUsesConfig(t *testing.T) {
	path := writeVocab(t, testutil.ScenarioVocabJSON)

	out, err := runRoot(t, "", "vocab", "--paths-vocab-path", path, "--server-sample-size", "1")
	if err != nil {
		t.Fatalf("vocab: %v", err)
	}
	if lines := strings.Count(out, "\n"); lines != 2 {
		t.Errorf("vocab printed %d lines; want 2:\n%s", lines, out)
	}
}

func TestDoctorCmd_PassesForScenario(t *testing.T) {
	path := writeVocab(t, testutil.ScenarioVocabJSON)

	out, err := runRoot(t, "", "doctor", "--paths-vocab-path", path)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	if !strings.Contains(out, "doctor checks passed") {
		t.Errorf("output should report success; got:\n%s", out)
	}
}

func TestDoctorCmd_WarnsOutsideStrictMode(t *testing.T) {
	path := writeVocab(t, noUnknownVocab)

	out, err := runRoot(t, "", "doctor", "--paths-vocab-path", path)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if !strings.Contains(out, "warning") {
		t.Errorf("output should mention warnings; got:\n%s", out)
	}
}

func TestDoctorCmd_FailsInStrictMode(t *testing.T) {
	path := writeVocab(t, noUnknownVocab)

	if _, err := runRoot(t, "", "doctor", "--paths-vocab-path", path, "--tokenizer-strict"); err == nil {
		t.Fatal("expected doctor to fail in strict mode")
	}
}

func TestHealthCmd_UnreachableServerFails(t *testing.T) {
	if _, err := runRoot(t, "", "health", "--addr", "127.0.0.1:1"); err == nil {
		t.Fatal("expected health probe to fail against a closed port")
	}
}

func TestBenchCmd_JSONReport(t *testing.T) {
	path := writeVocab(t, testutil.ScenarioVocabJSON)

	out, err := runRoot(t, "", "bench", "--paths-vocab-path", path, "--text", "abc", "--runs", "2", "--format", "json")
	if err != nil {
		t.Fatalf("bench: %v", err)
	}
	if !strings.Contains(out, `"runes_per_second"`) {
		t.Errorf("json report missing throughput field:\n%s", out)
	}
}

func TestBenchCmd_ValidatesFlags(t *testing.T) {
	path := writeVocab(t, testutil.ScenarioVocabJSON)

	cases := [][]string{
		{"bench", "--paths-vocab-path", path},
		{"bench", "--paths-vocab-path", path, "--text", "a", "--runs", "0"},
		{"bench", "--paths-vocab-path", path, "--text", "a", "--format", "xml"},
	}
	for _, args := range cases {
		if _, err := runRoot(t, "", args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}
