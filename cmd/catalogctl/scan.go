package main

import (
	"context"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/edirooss/museq-server/internal/domain/song"
	museqredis "github.com/edirooss/museq-server/internal/redis"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var scanExts = map[string]struct{}{
	".mp3": {}, ".flac": {}, ".ogg": {}, ".m4a": {},
}

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "scan a music directory into the catalog",
	Long: `scan walks a music directory, reads title and artist from the audio
tags, and upserts one catalog entry per file. Files without usable tags
fall back to their file name. Per-file failures are collected and
reported at the end; they do not abort the walk.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger().Named("scan")
		defer log.Sync()

		rdb := museqredis.NewClient(redisAddr, redisDB, log)
		defer rdb.Close()
		repo := museqredis.NewSongRepository(rdb, log)

		imported, err := scanDir(cmd.Context(), log, repo, args[0])
		log.Info("scan finished", zap.Int("imported", imported))
		if err != nil {
			return fmt.Errorf("%d file(s) failed: %w", len(multierr.Errors(err)), err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

// scanDir imports every taggable audio file under dir. The returned error
// aggregates per-file failures; imported counts the successes.
func scanDir(ctx context.Context, log *zap.Logger, repo *museqredis.SongRepository, dir string) (int, error) {
	var errs error
	imported := 0

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = multierr.Append(errs, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := scanExts[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}

		s, err := songFromFile(path)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
			return nil
		}

		if err := repo.Upsert(ctx, s); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
			return nil
		}

		log.Debug("imported", zap.Int64("id", s.ID), zap.String("title", s.Title))
		imported++
		return nil
	})
	if walkErr != nil {
		errs = multierr.Append(errs, walkErr)
	}

	return imported, errs
}

// songFromFile derives a catalog entry from the file's tags. The id is a
// stable hash of the path, so re-scans update rather than duplicate.
func songFromFile(path string) (*song.Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s := &song.Song{ID: pathID(path)}

	m, err := tag.ReadFrom(f)
	if err != nil {
		// untagged files keep their file name as the title
		s.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return s, nil
	}

	s.Title = m.Title()
	if s.Title == "" {
		s.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	s.Artist = m.Artist()
	return s, nil
}

// pathID folds the path into a positive int64.
func pathID(path string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path))
	return int64(h.Sum64() &^ (1 << 63))
}
