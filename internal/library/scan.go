// Package library finds audio files on disk and queues them for playback.
package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dhowden/tag"

	"github.com/hammamikhairi/lullaby/internal/domain"
	"github.com/hammamikhairi/lullaby/internal/logger"
)

// ScanOption configures Scan.
type ScanOption func(*scanner)

// WithFilter keeps only files for which match returns true. Without a
// filter every regular file is kept.
func WithFilter(match func(path string) bool) ScanOption {
	return func(s *scanner) {
		s.match = match
	}
}

// WithoutTags skips reading tags; tracks are named after their files.
func WithoutTags() ScanOption {
	return func(s *scanner) {
		s.readTags = false
	}
}

type scanner struct {
	log      *logger.Logger
	match    func(string) bool
	readTags bool
}

// Scan walks the given files and directories, recursively, and returns
// the tracks found in walk order. Hidden directories are skipped.
func Scan(ctx context.Context, paths []string, log *logger.Logger, opts ...ScanOption) ([]domain.Track, error) {
	s := &scanner{log: log, readTags: true}
	for _, opt := range opts {
		opt(s)
	}

	var tracks []domain.Track
	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && len(d.Name()) > 1 && d.Name()[0] == '.' {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if s.match != nil && !s.match(path) {
				return nil
			}
			tracks = append(tracks, s.track(path))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", root, err)
		}
	}

	log.Info("library scan found %d tracks in %d paths", len(tracks), len(paths))
	return tracks, nil
}

func (s *scanner) track(path string) domain.Track {
	t := domain.Track{Path: path}
	if !s.readTags {
		return t
	}

	f, err := os.Open(path)
	if err != nil {
		s.log.Warn("reading tags of %s: %v", path, err)
		return t
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if !errors.Is(err, tag.ErrNoTagsFound) {
			s.log.Debug("reading tags of %s: %v", path, err)
		}
		return t
	}
	t.Title = m.Title()
	t.Artist = m.Artist()
	return t
}
