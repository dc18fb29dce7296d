package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"Bt1QRadio/core/player"
	"Bt1QRadio/logger"
	"Bt1QRadio/model"

	"github.com/fsnotify/fsnotify"
)

// seedPlaylist imports the stations file at startup when the playlist is
// still empty, so a factory-fresh box comes up with stations.
func seedPlaylist(ctx context.Context, path string, pl *player.Playlist) {
	if pl.Count() > 0 {
		return
	}
	importStations(ctx, path, pl)
}

// watchStations re-imports the stations file whenever it is rewritten.
// Editors and configuration management tend to replace the file, so the
// watch sits on the directory and filters by name.
func watchStations(ctx context.Context, path string, pl *player.Playlist) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create stations watcher", logger.ErrorField(err))
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		logger.Error("failed to watch stations directory",
			logger.String("dir", dir),
			logger.ErrorField(err))
		return
	}
	logger.Info("watching stations file", logger.String("path", path))

	// Coalesce bursts of events into one import.
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending = time.After(200 * time.Millisecond)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("stations watcher error", logger.ErrorField(err))

		case <-pending:
			pending = nil
			importStations(ctx, path, pl)
		}
	}
}

// importStations replaces the playlist with the file contents and
// persists the result. Invalid entries are dropped by the playlist.
func importStations(ctx context.Context, path string, pl *player.Playlist) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read stations file",
				logger.String("path", path),
				logger.ErrorField(err))
		}
		return
	}

	var entries []model.StreamEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn("stations file is not a JSON entry array",
			logger.String("path", path),
			logger.ErrorField(err))
		return
	}

	pl.Replace(entries)

	saveCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pl.Save(saveCtx); err != nil {
		logger.Warn("failed to persist imported playlist", logger.ErrorField(err))
	}

	logger.Info("stations imported",
		logger.String("path", path),
		logger.Int("count", pl.Count()))
}
