package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"typematch/internal/diagfmt"
	"typematch/internal/version"
)

const testdata = "../../internal/scenario/testdata"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// emptyConfig pins the configuration so discovery cannot pick up a stray file.
func emptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "typematch.toml")
	if err := os.WriteFile(path, []byte("[report]\ncolor = \"off\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckDirectoryJSON(t *testing.T) {
	stdout, _, err := execute(t, "check", "--config", emptyConfig(t), "--format", "json", testdata)
	if err != nil {
		t.Fatalf("check failed: %v\n%s", err, stdout)
	}
	var out diagfmt.Output
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout)
	}
	if out.Total != 16 || out.Passed != 16 || out.Failed != 0 {
		t.Fatalf("totals = %d/%d/%d", out.Total, out.Passed, out.Failed)
	}
	// classes.yaml sorts before properties.toml
	if got := filepath.Base(out.Cases[0].Suite); got != "classes.yaml" {
		t.Fatalf("first suite = %s", got)
	}
}

func TestCheckFailureExitsWithReport(t *testing.T) {
	dir := t.TempDir()
	scenarioPath := filepath.Join(dir, "bad.toml")
	src := `
[[class]]
name = "int"

[[class]]
name = "str"

[[case]]
name = "wrong"
actual = "str"
formal = "int"
`
	if err := os.WriteFile(scenarioPath, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	stdout, _, err := execute(t, "check", "--config", emptyConfig(t), scenarioPath)
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("expected errCheckFailed, got %v", err)
	}
	for _, want := range []string{"FAIL", "wrong", "TM4004", "1 cases: 0 passed, 1 failed"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestCheckReportsLoadErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.toml")
	stdout, _, err := execute(t, "check", "--config", emptyConfig(t), "--format", "json", missing, missing)
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("expected errCheckFailed, got %v", err)
	}
	var out diagfmt.Output
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Load) != 1 || out.Load[0].Code != "LOAD1001" {
		t.Fatalf("load diagnostics = %+v", out.Load)
	}
}

func TestCheckTracesPhases(t *testing.T) {
	_, stderr, err := execute(t, "check", "--config", emptyConfig(t),
		"--trace", "-", "--trace-level", "phase", filepath.Join(testdata, "classes.yaml"))
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	for _, want := range []string{"[driver]", "[case]", "box of int"} {
		if !strings.Contains(stderr, want) {
			t.Fatalf("trace missing %q:\n%s", want, stderr)
		}
	}
	if strings.Contains(stderr, "[match]") {
		t.Fatalf("phase level should not emit match spans:\n%s", stderr)
	}
}

func TestConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typematch.toml")
	if err := os.WriteFile(path, []byte("[matcher]\ndepth_limit = 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, _, err := execute(t, "check", "--config", path, testdata)
	if err == nil || !strings.Contains(err.Error(), "unknown keys") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestCheckRejectsBadFlagValues(t *testing.T) {
	_, _, err := execute(t, "check", "--config", emptyConfig(t), "--format", "xml", testdata)
	if err == nil || !strings.Contains(err.Error(), "[report].format") {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.toml", "notes.txt", "typematch.toml"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	got, err := collectFiles([]string{dir, "explicit.toml"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.toml"), filepath.Join(dir, "b.yaml"), "explicit.toml"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}

	if _, err := collectFiles([]string{t.TempDir()}); err == nil {
		t.Fatalf("empty directory should be an error")
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := execute(t, "version", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var info version.Info
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != version.Version {
		t.Fatalf("version = %q", info.Version)
	}
}

func TestCheckRejectsBadUIMode(t *testing.T) {
	_, _, err := execute(t, "check", "--config", emptyConfig(t), "--ui", "fancy", testdata)
	if err == nil || !strings.Contains(err.Error(), "invalid --ui value") {
		t.Fatalf("expected ui mode error, got %v", err)
	}
}

func TestCheckWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.pprof")
	mem := filepath.Join(dir, "mem.pprof")
	_, _, err := execute(t, "check", "--config", emptyConfig(t),
		"--cpu-profile", cpu, "--mem-profile", mem, filepath.Join(testdata, "classes.yaml"))
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	for _, path := range []string{cpu, mem} {
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Fatalf("%s not written: %v", path, err)
		}
	}
}
