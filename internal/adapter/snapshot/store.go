package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/domain"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/logger"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/ports"
)

// Document filenames inside the snapshot directory.
const (
	heatmapFile   = "heatmap.json"
	categoryFile  = "category_stats.json"
	sentimentFile = "sentiment.json"
)

// FileStore reads the precomputed analytics documents from a data directory.
// A missing or malformed document degrades to an empty result with a warning,
// never an error: the dashboard renders an empty panel instead of failing.
type FileStore struct {
	dir string
	log logger.Logger
}

// NewFileStore creates a snapshot store over the given directory.
func NewFileStore(dir string, log logger.Logger) ports.SnapshotStore {
	return &FileStore{dir: dir, log: log}
}

// Heatmap returns the call-volume heatmap cells.
func (s *FileStore) Heatmap(ctx context.Context) ([]domain.HeatmapCell, error) {
	var cells []domain.HeatmapCell
	if !s.read(ctx, heatmapFile, &cells) {
		cells = nil
	}
	if cells == nil {
		cells = []domain.HeatmapCell{}
	}
	return cells, nil
}

// CategoryStats returns the per-category aggregates.
func (s *FileStore) CategoryStats(ctx context.Context) ([]domain.CategoryStat, error) {
	var stats []domain.CategoryStat
	if !s.read(ctx, categoryFile, &stats) {
		stats = nil
	}
	if stats == nil {
		stats = []domain.CategoryStat{}
	}
	return stats, nil
}

// SentimentSummary returns the sentiment comparison segments.
func (s *FileStore) SentimentSummary(ctx context.Context) ([]domain.SentimentSummary, error) {
	var summaries []domain.SentimentSummary
	if !s.read(ctx, sentimentFile, &summaries) {
		summaries = nil
	}
	if summaries == nil {
		summaries = []domain.SentimentSummary{}
	}
	return summaries, nil
}

// read decodes one document into out and reports whether the decode
// succeeded.
func (s *FileStore) read(ctx context.Context, name string, out interface{}) bool {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) && s.log != nil {
			s.log.Warn(ctx, "Failed to read snapshot document", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		if s.log != nil {
			s.log.Warn(ctx, "Malformed snapshot document, treating as empty", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
		return false
	}
	return true
}
