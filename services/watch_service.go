package services

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchService keeps a notes directory in sync with the store: files
// dropped into it are ingested through the same coordinator as API
// notes, chunk by chunk, tagged with their source path; removing a file
// removes its notes and vector entries.
type WatchService struct {
	ingest *IngestService
	logger *zap.Logger
}

func NewWatchService(ingest *IngestService, logger *zap.Logger) *WatchService {
	return &WatchService{ingest: ingest, logger: logger}
}

// ScanDirectory ingests every supported file already present in the
// directory. Files are re-ingested from scratch: previous notes for the
// same path are deleted first so edits do not accumulate duplicates.
func (s *WatchService) ScanDirectory(ctx context.Context, dirPath string) {
	s.logger.Info("scanning notes directory", zap.String("dir", dirPath))

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !IsSupportedFile(path) {
			return nil
		}
		s.reindexFile(ctx, path)
		return nil
	})
	if err != nil {
		s.logger.Error("directory scan failed", zap.String("dir", dirPath), zap.Error(err))
	}
}

// WatchDirectory blocks until ctx is cancelled, re-ingesting files as
// they are created or written and dropping their notes when they are
// removed or renamed away.
func (s *WatchService) WatchDirectory(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Error("failed to create file watcher", zap.Error(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(dirPath); err != nil {
		s.logger.Error("failed to watch directory", zap.String("dir", dirPath), zap.Error(err))
		return
	}
	s.logger.Info("watching notes directory", zap.String("dir", dirPath))

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !IsSupportedFile(event.Name) {
				continue
			}

			// Editors often save by writing a temp file and renaming,
			// so Create and Write are handled identically.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				s.reindexFile(ctx, event.Name)
			} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				s.logger.Info("file removed, dropping its notes", zap.String("path", event.Name))
				if err := s.ingest.DeleteBySource(ctx, event.Name); err != nil {
					s.logger.Error("failed to drop notes for removed file",
						zap.String("path", event.Name), zap.Error(err))
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("watcher error", zap.Error(err))

		case <-ctx.Done():
			s.logger.Info("shutting down directory watcher")
			return
		}
	}
}

func (s *WatchService) reindexFile(ctx context.Context, path string) {
	text, err := ExtractTextFromFile(path)
	if err != nil {
		s.logger.Warn("could not extract file text", zap.String("path", path), zap.Error(err))
		return
	}

	if err := s.ingest.DeleteBySource(ctx, path); err != nil {
		s.logger.Error("failed to drop stale notes before reindex",
			zap.String("path", path), zap.Error(err))
		return
	}

	result, err := s.ingest.Ingest(ctx, text, path)
	if err != nil {
		s.logger.Error("failed to ingest file", zap.String("path", path), zap.Error(err))
		return
	}
	s.logger.Info("indexed file",
		zap.String("path", path),
		zap.Int("chunks", len(result.NoteIDs)))
}
