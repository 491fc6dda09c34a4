package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/edirooss/museq-server/internal/domain/song"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrSongNotFound = errors.New("song not found")

	songKeyPrefix = "museq:song:"
	songIDsKey    = "museq:songs" // SET of string IDs: {"1", "2", ...}
)

// SongRepository provides Redis-backed persistence for the song catalog.
// The queue engine never touches it; only the service layer and the
// catalog importer do.
type SongRepository struct {
	client *Client
	log    *zap.Logger
}

// NewSongRepository initializes a new SongRepository instance.
func NewSongRepository(client *Client, log *zap.Logger) *SongRepository {
	return &SongRepository{
		client: client,
		log:    log.Named("song_repo"),
	}
}

// HasID returns true if a song with the given ID exists in the catalog.
func (r *SongRepository) HasID(ctx context.Context, id int64) (bool, error) {
	ok, err := r.client.SIsMember(ctx, songIDsKey, strconv.FormatInt(id, 10)).Result()
	if err != nil {
		return false, fmt.Errorf("set is member: %w", err)
	}
	return ok, nil
}

// Upsert persists a Song and adds its ID to the catalog index set.
func (r *SongRepository) Upsert(ctx context.Context, s *song.Song) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, songKey(s.ID), payload, 0)
	pipe.SAdd(ctx, songIDsKey, strconv.FormatInt(s.ID, 10))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// GetByID fetches a song by its ID.
// Returns ErrSongNotFound if the key does not exist.
func (r *SongRepository) GetByID(ctx context.Context, id int64) (*song.Song, error) {
	value, err := r.client.Get(ctx, songKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSongNotFound
		}
		return nil, fmt.Errorf("get: %w", err)
	}

	var s song.Song
	if err := json.Unmarshal(value, &s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &s, nil
}

// GetAll returns every song in the catalog. Malformed documents are logged
// and skipped rather than failing the whole read.
func (r *SongRepository) GetAll(ctx context.Context) ([]*song.Song, error) {
	ids, err := r.client.SMembers(ctx, songIDsKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("set members: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, songKeyPrefix+id)
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget: %w", err)
	}

	songs := make([]*song.Song, 0, len(vals))
	for i, val := range vals {
		raw, ok := val.(string)
		if !ok {
			r.log.Warn("missing song document", zap.String("key", keys[i]))
			continue
		}
		var s song.Song
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			r.log.Warn("malformed song document", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		songs = append(songs, &s)
	}
	return songs, nil
}

// Delete removes a song by ID. Returns ErrSongNotFound if the key was not present.
func (r *SongRepository) Delete(ctx context.Context, id int64) error {
	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, songKey(id))
	pipe.SRem(ctx, songIDsKey, strconv.FormatInt(id, 10))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	if del.Val() == 0 {
		return ErrSongNotFound
	}
	return nil
}

// songKey constructs the Redis key for a song ID.
func songKey(id int64) string {
	return songKeyPrefix + strconv.FormatInt(id, 10)
}
