package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/edirooss/museq-server/internal/domain/song"
	museqredis "github.com/edirooss/museq-server/internal/redis"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var fetchURL string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "fetch a remote catalog listing",
	Long: `fetch pulls a JSON array of songs from a remote catalog endpoint and
upserts each entry. The endpoint is expected to return documents shaped
like {"id": 1, "title": "...", "artist": "...", "likes": 0, "play_count": 0}.

Credentials come from the environment: CATALOG_TOKEN for bearer auth, or
CATALOG_USER / CATALOG_PASS for basic auth.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger().Named("fetch")
		defer log.Sync()

		songs, err := fetchListing(fetchURL)
		if err != nil {
			return err
		}
		log.Info("listing fetched", zap.Int("songs", len(songs)))

		rdb := museqredis.NewClient(redisAddr, redisDB, log)
		defer rdb.Close()
		repo := museqredis.NewSongRepository(rdb, log)

		var errs error
		imported := 0
		for _, s := range songs {
			if err := repo.Upsert(cmd.Context(), s); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("song %d: %w", s.ID, err))
				continue
			}
			imported++
		}

		log.Info("fetch finished", zap.Int("imported", imported))
		if errs != nil {
			return fmt.Errorf("%d song(s) failed: %w", len(multierr.Errors(errs)), errs)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchURL, "url", "", "catalog listing endpoint")
	_ = fetchCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(fetchCmd)
}

// fetchListing retrieves and decodes the remote song listing.
func fetchListing(url string) ([]*song.Song, error) {
	client := resty.New()

	req := client.R()
	if token := os.Getenv("CATALOG_TOKEN"); token != "" {
		req.SetAuthToken(token)
	} else if user := os.Getenv("CATALOG_USER"); user != "" {
		req.SetBasicAuth(user, os.Getenv("CATALOG_PASS"))
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get %s: status %s", url, resp.Status())
	}

	var songs []*song.Song
	if err := json.Unmarshal(resp.Body(), &songs); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return songs, nil
}
