package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the resolved export locations for one pipeline run.
type Paths struct {
	Input               string
	OutputDir           string
	EnrichedCSV         string
	TopSellingCSV       string
	OrderedCSV          string
	Workbook            string
	RecommendationsFile string
	LogsDir             string
}

// ResolvePaths turns the configured file names into usable paths. Absolute
// export names are kept as they are; relative ones land in OutputDir.
func (c *Config) ResolvePaths() *Paths {
	out := c.Paths.OutputDir
	p := &Paths{
		Input:               c.Paths.Input,
		OutputDir:           out,
		EnrichedCSV:         resolveIn(out, c.Paths.EnrichedFile),
		TopSellingCSV:       resolveIn(out, c.Paths.TopSellingFile),
		OrderedCSV:          resolveIn(out, c.Paths.OrderedFile),
		RecommendationsFile: c.Paths.RecommendationsFile,
	}
	if c.Paths.WorkbookFile != "" {
		p.Workbook = resolveIn(out, c.Paths.WorkbookFile)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath != "" {
		p.LogsDir = filepath.Dir(c.Logging.FilePath)
	}
	return p
}

func resolveIn(dir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// EnsureDirectories creates every directory an export will be written to.
func (p *Paths) EnsureDirectories() error {
	seen := make(map[string]bool)
	for _, file := range []string{p.EnrichedCSV, p.TopSellingCSV, p.OrderedCSV, p.Workbook} {
		if file == "" {
			continue
		}
		seen[filepath.Dir(file)] = true
	}
	if p.LogsDir != "" {
		seen[p.LogsDir] = true
	}

	logger := slog.Default()
	for dir := range seen {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// LogPathResolution logs where the run reads from and writes to
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Path resolution summary",
		slog.String("input", p.Input),
		slog.Group("exports",
			slog.String("enriched", p.EnrichedCSV),
			slog.String("top_selling", p.TopSellingCSV),
			slog.String("ordered", p.OrderedCSV),
			slog.String("workbook", p.Workbook),
		),
		slog.String("recommendations", p.RecommendationsFile),
	)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
