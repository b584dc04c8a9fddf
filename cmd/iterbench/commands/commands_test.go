package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/iterkit/errors"
)

const quietConfig = `name: iterbench
environment: staging
logging:
  level: disabled
  format: json
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRun_SplitAcrossEpochs(t *testing.T) {
	cfg := writeConfig(t, quietConfig)

	out, err := execute(t, "run", "--config", cfg, "--batches", "20", "--epochs", "2", "--depth", "4", "--ratios", "0.7")
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}

	for _, want := range []string{
		"split-0 [0, 14) (depth 4)",
		"split-1 [14, 20) (depth 4)",
		"source [prefetch] depth=4",
		"Totals: split-0=28, split-1=12 (all=40)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "failed") {
		t.Errorf("expected every epoch to pass:\n%s", out)
	}
}

func TestRun_NamedCountsWithAutoSeek(t *testing.T) {
	cfg := writeConfig(t, quietConfig+`dataset:
  batches: 30
split:
  counts: [10, 5]
  names: [train, test]
prefetch:
  depth: 3
  callback_every: 4
`)

	out, err := execute(t, "run", "--config", cfg, "--auto-seek")
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Totals: train=10, test=5 (all=15)") {
		t.Errorf("unexpected totals:\n%s", out)
	}
}

func TestRun_WithoutSplit(t *testing.T) {
	cfg := writeConfig(t, quietConfig)

	out, err := execute(t, "run", "--config", cfg, "--batches", "12", "--epochs", "3")
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Totals: all=36 (all=36)") {
		t.Errorf("unexpected totals:\n%s", out)
	}
}

func TestRun_EnvOverride(t *testing.T) {
	cfg := writeConfig(t, quietConfig)
	t.Setenv("ITERBENCH_DATASET_BATCHES", "7")

	out, err := execute(t, "run", "--config", cfg)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Totals: all=7 (all=7)") {
		t.Errorf("expected the env var to set the dataset size:\n%s", out)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := writeConfig(t, quietConfig)

	tests := []struct {
		name string
		args []string
	}{
		{"depth below minimum", []string{"run", "--config", cfg, "--depth", "1"}},
		{"ratios summing past one", []string{"run", "--config", cfg, "--ratios", "0.6,0.5"}},
		{"negative epochs", []string{"run", "--config", cfg, "--epochs", "-1"}},
		{"missing config file", []string{"run", "--config", filepath.Join(t.TempDir(), "absent.yml")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.args...)
			if !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "iterbench ") {
		t.Errorf("unexpected version line %q", out)
	}
}

func TestVersion_JSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var info map[string]interface{}
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("expected JSON, got %q: %v", out, err)
	}
	if _, ok := info["version"]; !ok {
		t.Errorf("expected a version key, got %v", info)
	}
}
