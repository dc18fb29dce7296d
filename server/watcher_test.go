package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"Bt1QRadio/core/player"
	"Bt1QRadio/model"
	"Bt1QRadio/store"
)

func writeStations(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestImportStations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.json")
	writeStations(t, path, `[
		{"name":"BBC","url":"http://x/1"},
		{"name":"","url":"http://x/2"},
		{"name":"Jazz","url":"http://x/3"}
	]`)

	pl := player.NewPlaylist(20, store.NewMemoryStore())
	importStations(context.Background(), path, pl)

	if pl.Count() != 2 {
		t.Fatalf("Count() = %d, want 2 (invalid entry dropped)", pl.Count())
	}
}

func TestImportStationsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.json")
	writeStations(t, path, `{"not":"an array"}`)

	pl := player.NewPlaylist(20, store.NewMemoryStore())
	pl.AddItem(model.StreamEntry{Name: "BBC", URL: "http://x/1"})
	importStations(context.Background(), path, pl)

	// A malformed file must not wipe the current playlist.
	if pl.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", pl.Count())
	}
}

func TestImportStationsMissingFile(t *testing.T) {
	pl := player.NewPlaylist(20, store.NewMemoryStore())
	importStations(context.Background(), filepath.Join(t.TempDir(), "nope.json"), pl)
	if pl.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", pl.Count())
	}
}

func TestSeedPlaylistSkipsNonEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.json")
	writeStations(t, path, `[{"name":"Seed","url":"http://x/9"}]`)

	pl := player.NewPlaylist(20, store.NewMemoryStore())
	pl.AddItem(model.StreamEntry{Name: "Kept", URL: "http://x/1"})
	seedPlaylist(context.Background(), path, pl)

	e, _ := pl.Item(0)
	if pl.Count() != 1 || e.Name != "Kept" {
		t.Fatalf("seed overwrote loaded playlist: %+v", pl.Items())
	}
}

func TestWatchStationsReimports(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stations.json")
	writeStations(t, path, `[{"name":"BBC","url":"http://x/1"}]`)

	pl := player.NewPlaylist(20, store.NewMemoryStore())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		watchStations(ctx, path, pl)
		close(done)
	}()

	// Give the watcher time to install before rewriting the file.
	time.Sleep(100 * time.Millisecond)
	writeStations(t, path, `[
		{"name":"BBC","url":"http://x/1"},
		{"name":"Jazz","url":"http://x/2"}
	]`)

	deadline := time.After(3 * time.Second)
	for pl.Count() != 2 {
		select {
		case <-deadline:
			t.Fatalf("Count() = %d, want 2 after rewrite", pl.Count())
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop on context cancel")
	}
}
