// Package spotify implements the track resolver over the Spotify Web API
// search endpoint.
package spotify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"jukebot/internal/core"
	"jukebot/pkg/fuzzy"
)

// MaxSearchResults limits how many candidates one query can yield.
const MaxSearchResults = 10

// Client resolves free-text queries to track candidates. It authenticates
// with the client-credentials flow; the oauth2 token source renews the
// credential in the background, so per-query logic never touches tokens.
type Client struct {
	config     *core.SpotifyConfig
	logger     *zap.Logger
	normalizer *fuzzy.Normalizer
	client     *spotify.Client
}

func NewClient(config *core.SpotifyConfig, logger *zap.Logger) *Client {
	return &Client{
		config:     config,
		logger:     logger,
		normalizer: fuzzy.NewNormalizer(),
	}
}

// Authenticate obtains an initial access token, validating the configured
// credentials. Called once at startup; a failure is fatal.
func (c *Client) Authenticate(ctx context.Context) error {
	credentials := &clientcredentials.Config{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	if _, err := credentials.Token(ctx); err != nil {
		return fmt.Errorf("spotify credential check failed: %w", err)
	}

	httpClient := oauth2.NewClient(ctx, credentials.TokenSource(ctx))
	c.client = spotify.New(httpClient)

	c.logger.Info("Authenticated with Spotify")
	return nil
}

// Resolve searches for tracks matching the query and returns candidates
// ordered by similarity score, best first. No matches is an empty result,
// not an error.
func (c *Client) Resolve(ctx context.Context, query string) ([]core.Candidate, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not authenticated")
	}

	results, err := c.client.Search(ctx, query, spotify.SearchTypeTrack,
		spotify.Limit(MaxSearchResults))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return nil, nil
	}

	candidates := make([]core.Candidate, 0, len(results.Tracks.Tracks))
	for i := range results.Tracks.Tracks {
		candidate := c.convertTrack(&results.Tracks.Tracks[i])
		candidate.Score = c.normalizer.Score(query, candidate.Title, candidate.Artist)
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	c.logger.Debug("Query resolved",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)),
		zap.String("best", candidates[0].Title),
		zap.Float64("bestScore", candidates[0].Score))

	return candidates, nil
}

func (c *Client) convertTrack(track *spotify.FullTrack) core.Candidate {
	artists := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		artists = append(artists, artist.Name)
	}

	artist := strings.Join(artists, core.ArtistSeparator)
	if artist == "" {
		artist = "Unknown"
	}

	artworkURL := core.PlaceholderArtworkURL
	if len(track.Album.Images) > 0 && track.Album.Images[0].URL != "" {
		artworkURL = track.Album.Images[0].URL
	}

	return core.Candidate{
		Title:      track.Name,
		Artist:     artist,
		ArtworkURL: artworkURL,
	}
}
