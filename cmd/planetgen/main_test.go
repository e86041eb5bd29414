package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerate_Tree(t *testing.T) {
	out, err := run(t, "generate", "--name", "Tree", "--seed", "42")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if !strings.HasPrefix(lines[0], "Tree  (") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "M☉") {
		t.Errorf("root line = %q, want star description", lines[1])
	}
	if !strings.Contains(out, "seed 42:") {
		t.Errorf("missing stats footer:\n%s", out)
	}
}

func TestGenerate_JSONDeterministic(t *testing.T) {
	type doc struct {
		Seed   int64             `json:"seed"`
		Bodies []json.RawMessage `json:"bodies"`
	}
	decode := func(s string) doc {
		var d doc
		if err := json.Unmarshal([]byte(s), &d); err != nil {
			t.Fatalf("json: %v", err)
		}
		return d
	}

	a, err := run(t, "generate", "--seed", "7", "--json")
	if err != nil {
		t.Fatal(err)
	}
	b, err := run(t, "generate", "--seed", "7", "--json")
	if err != nil {
		t.Fatal(err)
	}
	da, db := decode(a), decode(b)
	if da.Seed != 7 || len(da.Bodies) != len(db.Bodies) {
		t.Fatalf("seed %d, bodies %d vs %d", da.Seed, len(da.Bodies), len(db.Bodies))
	}
	for i := range da.Bodies {
		if !bytes.Equal(da.Bodies[i], db.Bodies[i]) {
			t.Errorf("body %d differs:\n%s\n%s", i, da.Bodies[i], db.Bodies[i])
		}
	}
}

func TestGenerateAndShow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	out, err := run(t, "generate", "--name", "Saved", "--seed", "3", "--db", dbPath, "--json")
	if err != nil {
		t.Fatal(err)
	}
	var gen struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(out), &gen); err != nil {
		t.Fatal(err)
	}

	list, err := run(t, "show", "--db", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(list, gen.ID) || !strings.Contains(list, "Saved") {
		t.Errorf("listing missing system:\n%s", list)
	}

	tree, err := run(t, "show", gen.ID, "--db", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(tree, "Saved  ("+gen.ID) {
		t.Errorf("show = %q", tree)
	}

	if _, err := run(t, "show", "not-an-id", "--db", dbPath); err == nil {
		t.Error("show accepted an invalid id")
	}
}

func TestCatalog(t *testing.T) {
	out, err := run(t, "catalog")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "SYMBOL") || !strings.Contains(out, "Fe") {
		t.Errorf("catalog output:\n%s", out)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("materials: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "catalog", "--catalog", bad); err == nil {
		t.Error("empty catalog accepted")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLevel(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("parseLevel(%q) = %v, %v", tt.in, got, err)
			}
		})
	}
}
