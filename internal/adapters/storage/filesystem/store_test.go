package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"floodmap.app/internal/mocks"
	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	floodJSON     = `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]},"properties":{}}]}`
	footprintJSON = `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,2],[0,0]]]},"properties":{}}]}`
)

var acquired = time.Date(2024, 10, 29, 5, 46, 12, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(ports.StorageConfig{Path: dir, IndexFile: "index.csv"}, mocks.Logger{})
	require.NoError(t, err)
	return store, dir
}

func artifact(productID string) ports.Artifact {
	return ports.Artifact{
		ProductID: productID,
		AOIID:     "aoi-1",
		Timestamp: acquired,
		Flood:     []byte(floodJSON),
		Footprint: []byte(footprintJSON),
	}
}

func TestStore_PutAndGet(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	entry, err := store.Put(ctx, artifact("p1"))

	require.NoError(t, err)
	assert.Equal(t, "aoi-1/p1/flood.geojson", entry.FloodPath)
	assert.Equal(t, "aoi-1/p1/footprint.geojson", entry.FootprintPath)
	assert.FileExists(t, filepath.Join(dir, "aoi-1", "p1", "flood.geojson"))

	has, err := store.Has(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, has)

	flood, err := store.Get(ctx, "p1", ports.GeometryFlood)
	require.NoError(t, err)
	assert.JSONEq(t, floodJSON, string(flood))

	footprint, err := store.Get(ctx, "p1", ports.GeometryFootprint)
	require.NoError(t, err)
	assert.JSONEq(t, footprintJSON, string(footprint))
}

func TestStore_IndexFileLayout(t *testing.T) {
	store, dir := newTestStore(t)

	_, err := store.Put(context.Background(), artifact("p1"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "index.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"aoi_id,datetime,product,flood_geojson_path,footprint_geojson_path\n"+
			"aoi-1,2024-10-29T05:46:12Z,p1,aoi-1/p1/flood.geojson,aoi-1/p1/footprint.geojson\n",
		string(data))
}

func TestStore_PutIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Put(ctx, artifact("p1"))
	require.NoError(t, err)
	second, err := store.Put(ctx, artifact("p1"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	snapshot, err := store.IndexSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot, 1)
}

func TestStore_SnapshotSurvivesReopen(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"p1", "p2"} {
		_, err := store.Put(ctx, artifact(id))
		require.NoError(t, err)
	}

	reopened, err := NewStore(ports.StorageConfig{Path: dir, IndexFile: "index.csv"}, mocks.Logger{})
	require.NoError(t, err)
	snapshot, err := reopened.IndexSnapshot(ctx)

	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	assert.Equal(t, "p1", snapshot[0].ProductID)
	assert.Equal(t, acquired, snapshot[0].Timestamp)
	assert.Equal(t, "aoi-1", snapshot[1].AOIID)
}

func TestStore_EmptyIndex(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	snapshot, err := store.IndexSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.csv"), nil, 0o644))
	snapshot, err = store.IndexSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot)

	has, err := store.Has(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStore_GetMissingProduct(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "p9", ports.GeometryFlood)

	assert.True(t, errors.IsNotFoundError(err))
}

func TestStore_GetMissingBlobIsStorageError(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()
	_, err := store.Put(ctx, artifact("p1"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "aoi-1", "p1", "footprint.geojson")))

	_, err = store.Get(ctx, "p1", ports.GeometryFootprint)

	assert.True(t, errors.IsStorageError(err))
}

func TestStore_BlobFailureLeavesNoIndexRow(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()
	// A regular file where the AOI directory should be makes every blob write fail.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aoi-1"), []byte("x"), 0o644))

	_, err := store.Put(ctx, artifact("p1"))

	assert.True(t, errors.IsStorageError(err))
	has, err := store.Has(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStore_CorruptIndex(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.csv"),
		[]byte("aoi_id,datetime,product,flood_geojson_path,footprint_geojson_path\naoi-1,yesterday,p1,a,b\n"), 0o644))

	_, err := store.IndexSnapshot(context.Background())

	assert.True(t, errors.IsStorageError(err))
}

func TestStore_RejectsInvalidArtifacts(t *testing.T) {
	store, _ := newTestStore(t)

	tests := []struct {
		name   string
		mutate func(a *ports.Artifact)
	}{
		{"EmptyProduct", func(a *ports.Artifact) { a.ProductID = "" }},
		{"PathTraversal", func(a *ports.Artifact) { a.ProductID = "../p1" }},
		{"NestedAOI", func(a *ports.Artifact) { a.AOIID = "a/b" }},
		{"NoTimestamp", func(a *ports.Artifact) { a.Timestamp = time.Time{} }},
		{"NoFootprint", func(a *ports.Artifact) { a.Footprint = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := artifact("p1")
			tt.mutate(&a)

			_, err := store.Put(context.Background(), a)

			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestStore_ConcurrentPuts(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Put(ctx, artifact(fmt.Sprintf("p%d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	snapshot, err := store.IndexSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot, 8)
}

func TestStore_Ping(t *testing.T) {
	store, dir := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))

	require.NoError(t, os.RemoveAll(dir))
	assert.True(t, errors.IsStorageError(store.Ping(context.Background())))
}

func TestStore_InterfaceCompliance(t *testing.T) {
	var _ ports.ArtifactStore = (*Store)(nil)
}

func TestStore_SnapshotKeepsFractionalSeconds(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()
	precise := artifact("p1")
	precise.Timestamp = time.Date(2024, 1, 10, 10, 0, 0, 500_000_000, time.UTC)

	entry, err := store.Put(ctx, precise)
	require.NoError(t, err)

	reopened, err := NewStore(ports.StorageConfig{Path: dir, IndexFile: "index.csv"}, mocks.Logger{})
	require.NoError(t, err)
	snapshot, err := reopened.IndexSnapshot(ctx)

	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.True(t, entry.Timestamp.Equal(snapshot[0].Timestamp))
	assert.Equal(t, precise.Timestamp, snapshot[0].Timestamp)
}
