package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFileStoreReadsDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "heatmap.json", `[{"day":"Mon","hour":9,"count":14},{"day":"Mon","hour":10,"count":21}]`)
	writeFile(t, dir, "category_stats.json", `[{"category":"Escrow","count":40,"completed":30,"completion_rate":75,"avg_resolution_hours":6.5}]`)
	writeFile(t, dir, "sentiment.json", `[{"label":"promoter","count":12,"avg_score":0.8}]`)

	store := NewFileStore(dir, nil)
	ctx := context.Background()

	cells, err := store.Heatmap(ctx)
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, "Mon", cells[0].Day)
	assert.Equal(t, 21, cells[1].Count)

	stats, err := store.CategoryStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "Escrow", stats[0].Category)
	assert.Equal(t, 75.0, stats[0].CompletionRate)

	segments, err := store.SentimentSummary(ctx)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "promoter", segments[0].Label)
}

func TestFileStoreMissingDocumentIsEmpty(t *testing.T) {
	store := NewFileStore(t.TempDir(), nil)

	cells, err := store.Heatmap(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cells)
	assert.NotNil(t, cells, "empty, not nil, so it renders as [] on the wire")
}

func TestFileStoreMalformedDocumentIsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sentiment.json", `{"not": "an array"`)

	store := NewFileStore(dir, nil)

	segments, err := store.SentimentSummary(context.Background())
	require.NoError(t, err, "malformed documents degrade, they do not fail the request")
	assert.Empty(t, segments)
}
