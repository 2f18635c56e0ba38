package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/analytics"
	"retailpulse/internal/config"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/quality"
	"retailpulse/internal/services"
	"retailpulse/internal/shared/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, config.AppName+" version "+config.AppVersion)
	assert.Contains(t, out, "(build: dev)")
}

func TestLoadConfig_Overrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "retailpulse.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server:\n  port: 9090\npaths:\n  input: from-file.csv\n"), 0644))

	tests := []struct {
		name      string
		o         overrides
		wantPort  int
		wantInput string
		wantErr   bool
	}{
		{
			name:      "file values kept",
			o:         overrides{configPath: cfgPath},
			wantPort:  9090,
			wantInput: "from-file.csv",
		},
		{
			name:      "flags win",
			o:         overrides{configPath: cfgPath, input: "flag.csv", port: 7070, outputDir: dir},
			wantPort:  7070,
			wantInput: "flag.csv",
		},
		{
			name:    "invalid port rejected",
			o:       overrides{configPath: cfgPath, port: 70000},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(tt.o)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPort, cfg.Server.Port)
			assert.Equal(t, tt.wantInput, cfg.Paths.Input)
			if tt.o.outputDir != "" {
				assert.Equal(t, tt.o.outputDir, cfg.Paths.OutputDir)
			}
		})
	}
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	fixtures := testutil.NewTransactionFixtures(filepath.Join(dir, "data"))
	input, err := fixtures.WriteCSV("transactions.csv", fixtures.SampleRows())
	require.NoError(t, err)
	outputDir := filepath.Join(dir, "output")

	out, err := execute(t, "analyze", "--input", input, "--output-dir", outputDir)
	require.NoError(t, err)

	assert.Contains(t, out, "records:  6 from 1 source(s)")
	assert.Contains(t, out, "Exports:")
	assert.FileExists(t, filepath.Join(outputDir, config.DefaultEnrichedFile))
	assert.FileExists(t, filepath.Join(outputDir, config.DefaultTopSellingFile))
}

func TestAnalyzeCommand_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "analyze", "--input", filepath.Join(dir, "absent.csv"), "--output-dir", dir)
	require.Error(t, err)
}

func TestPrintSummary(t *testing.T) {
	snap := &services.Snapshot{
		RunID:    uuid.New(),
		Trigger:  services.TriggerManual,
		Duration: 1500 * time.Millisecond,
		Stages:   []services.StageTiming{{Stage: "load", Duration: time.Second}},
		Sources:  []string{"a.csv", "b.csv"},
		Records:  12,
		Exports:  []string{"output/enriched_transactions.csv"},
		Report:   &analytics.Report{},
		Quality: &quality.Report{CheckErrors: map[string]string{
			"unit_price_outliers": "no defined values",
			"quantity_outliers":   "no defined values",
		}},
	}

	var buf bytes.Buffer
	printSummary(&buf, snap)
	out := buf.String()

	assert.Contains(t, out, snap.RunID.String())
	assert.Contains(t, out, "records:  12 from 2 source(s)")
	assert.Contains(t, out, "output/enriched_transactions.csv")
	assert.NotContains(t, out, "Unavailable views:")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("quantity_outliers")), bytes.Index(buf.Bytes(), []byte("unit_price_outliers")))
}
