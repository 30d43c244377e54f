package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "openscad.toml")
	content := `
[general]
data_dir = "` + filepath.ToSlash(dir) + `"
log_level = "error"

[store]
path = "` + filepath.ToSlash(filepath.Join(dir, "history.db")) + `"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func execute(t *testing.T, cfgPath, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestRun_Formats(t *testing.T) {
	cfg := writeConfig(t)
	source := "translate([1,0,0]) cube(2);"

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"json", []string{"run", "-"}, []string{`"object": "translate"`, `"object": "cube"`}},
		{"yaml", []string{"run", "--format", "yaml", "-"}, []string{"object: translate", "size: [2, 2, 2]"}},
		{"tree", []string{"run", "-f", "tree", "-"}, []string{"translate [1, 0, 0]\n  cube [2, 2, 2]\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := execute(t, cfg, source, tt.args...)
			if r.err != nil {
				t.Fatalf("Execute() error = %v, stderr = %s", r.err, r.stderr)
			}
			for _, want := range tt.want {
				if !strings.Contains(r.stdout, want) {
					t.Errorf("stdout = %q, missing %q", r.stdout, want)
				}
			}
		})
	}
}

func TestRun_RawAndEcho(t *testing.T) {
	cfg := writeConfig(t)

	r := execute(t, cfg, `echo("hi"); translate([0,0,0]) cube();`, "run", "--raw", "-f", "tree", "-")
	if r.err != nil {
		t.Fatalf("Execute() error = %v", r.err)
	}
	if !strings.HasPrefix(r.stdout, "translate [0, 0, 0]\n") {
		t.Errorf("raw tree = %q", r.stdout)
	}
	if !strings.Contains(r.stderr, `ECHO: "hi"`) {
		t.Errorf("echo should go to stderr, got %q", r.stderr)
	}
}

func TestRun_Errors(t *testing.T) {
	cfg := writeConfig(t)

	r := execute(t, cfg, "cube(1);\nx = \"open", "run", "-")
	if !errors.Is(r.err, errReported) {
		t.Fatalf("err = %v, want errReported", r.err)
	}
	for _, want := range []string{"error[SCAD_SYNTAX]", "2 | x = \"open", "^^^^^"} {
		if !strings.Contains(r.stderr, want) {
			t.Errorf("stderr = %q, missing %q", r.stderr, want)
		}
	}

	if r := execute(t, cfg, "cube();", "run", "--format", "stl", "-"); r.err == nil {
		t.Errorf("unknown format should fail")
	}
	if r := execute(t, cfg, "", "run", filepath.Join(t.TempDir(), "missing.scad")); r.err == nil {
		t.Errorf("missing file should fail")
	}
}

func TestHistory(t *testing.T) {
	cfg := writeConfig(t)

	if r := execute(t, cfg, "", "history"); r.err != nil || !strings.Contains(r.stdout, "No runs recorded.") {
		t.Fatalf("empty history = %q, %v", r.stdout, r.err)
	}

	if r := execute(t, cfg, "cube(3);", "run", "--history", "-"); r.err != nil {
		t.Fatalf("run --history error = %v", r.err)
	}
	execute(t, cfg, "cube(", "run", "--history", "-")

	r := execute(t, cfg, "", "history", "--json")
	if r.err != nil {
		t.Fatalf("history --json error = %v", r.err)
	}
	var runs []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(r.stdout), &runs); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}

	var okID string
	for _, run := range runs {
		if run.Status == "ok" {
			okID = run.ID
		}
	}
	show := execute(t, cfg, "", "history", "show", okID)
	if show.err != nil || !strings.Contains(show.stdout, "cube [3, 3, 3]") {
		t.Errorf("history show = %q, %v", show.stdout, show.err)
	}

	stats := execute(t, cfg, "", "history", "stats")
	if stats.err != nil || !strings.Contains(stats.stdout, "total_runs:") || !strings.Contains(stats.stdout, "failed_runs:") {
		t.Errorf("history stats = %q, %v", stats.stdout, stats.err)
	}

	if r := execute(t, cfg, "", "history", "show", "missing"); r.err == nil {
		t.Errorf("history show of an unknown id should fail")
	}
}

func TestTokensAndAST(t *testing.T) {
	cfg := writeConfig(t)

	r := execute(t, cfg, "a = 1;", "tokens", "-")
	if r.err != nil {
		t.Fatalf("tokens error = %v", r.err)
	}
	if !strings.Contains(r.stdout, `IDENTIFIER("a") @1:1`) || !strings.Contains(r.stdout, "EOF") {
		t.Errorf("tokens = %q", r.stdout)
	}

	r = execute(t, cfg, "cube(1);", "ast", "-")
	if r.err != nil {
		t.Fatalf("ast error = %v", r.err)
	}
	if !strings.HasPrefix(r.stdout, "program") || !strings.Contains(r.stdout, "moduleCall cube") {
		t.Errorf("ast = %q", r.stdout)
	}

	r = execute(t, cfg, "translate([1,0,0]) cube(len([1]));", "ast", "--stats", "-")
	if r.err != nil {
		t.Fatalf("ast --stats error = %v", r.err)
	}
	if want := "nodes: 13\ncalls: cube=1 len()=1 translate=1\n"; r.stdout != want {
		t.Errorf("ast --stats = %q, want %q", r.stdout, want)
	}

	r = execute(t, cfg, "a = ;", "ast", "-")
	if !errors.Is(r.err, errReported) || !strings.Contains(r.stderr, "error[SCAD_SYNTAX]") {
		t.Errorf("ast of invalid source = %v, %q", r.err, r.stderr)
	}
}

func TestVersion(t *testing.T) {
	r := execute(t, writeConfig(t), "", "version")
	if r.err != nil {
		t.Fatalf("version error = %v", r.err)
	}
	if !strings.HasPrefix(r.stdout, "openscad v") || !strings.Contains(r.stdout, "Language:") {
		t.Errorf("version = %q", r.stdout)
	}
}

func TestConfigError(t *testing.T) {
	r := execute(t, filepath.Join(t.TempDir(), "missing.toml"), "", "version")
	if r.err == nil {
		t.Errorf("missing config file should fail")
	}
}
