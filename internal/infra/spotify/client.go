// Package spotify implements the Web API client used to read the account
// library and mutate playlists.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultAPIBaseURL is the Web API base URL.
	DefaultAPIBaseURL = "https://api.spotify.com/v1"

	// DefaultAccountsBaseURL is the OAuth token endpoint base URL.
	DefaultAccountsBaseURL = "https://accounts.spotify.com"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 30 * time.Second

	// pageLimit is the maximum page size accepted by the listing endpoints.
	pageLimit = 50

	// tokenExpirySlack refreshes the access token slightly before the
	// server-reported expiry.
	tokenExpirySlack = 30 * time.Second
)

// Credentials holds the OAuth application and user grant.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Client talks to the Web API on behalf of one account.
type Client struct {
	http        *resty.Client
	apiURL      string
	accountsURL string
	creds       Credentials

	tokenMu     sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// Option is a functional option for configuring the client.
type Option func(*Client)

// WithBaseURL sets a custom API base URL (useful for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.apiURL = url
	}
}

// WithAccountsURL sets a custom accounts base URL (useful for testing).
func WithAccountsURL(url string) Option {
	return func(c *Client) {
		c.accountsURL = url
	}
}

// WithHTTPTimeout sets the request timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// NewClient creates a new Web API client.
func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		http:        resty.New().SetTimeout(DefaultTimeout),
		apiURL:      DefaultAPIBaseURL,
		accountsURL: DefaultAccountsBaseURL,
		creds:       creds,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// token returns a valid access token, refreshing it through the
// refresh-token grant when missing or near expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	var body tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": c.creds.RefreshToken,
		}).
		SetResult(&body).
		Post(c.accountsURL + "/api/token")
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("token request: status %d: %s", resp.StatusCode(), resp.String())
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("token request: empty access token")
	}

	c.accessToken = body.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn)*time.Second - tokenExpirySlack)

	log.Debug().Msg("Access token refreshed")
	return c.accessToken, nil
}

// CurrentUserID returns the account ID of the authenticated user.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	var user userResponse
	err := c.get(ctx, c.apiURL+"/me", nil, &user)
	if err != nil {
		return "", fmt.Errorf("fetch current user: %w", err)
	}
	return user.ID, nil
}

// AuthoredPlaylists returns every playlist on the account, following the
// pagination cursor to the end. Callers filter by owner.
func (c *Client) AuthoredPlaylists(ctx context.Context) ([]Playlist, error) {
	var playlists []Playlist

	url := c.apiURL + "/me/playlists"
	params := map[string]string{"limit": fmt.Sprintf("%d", pageLimit)}
	for url != "" {
		var page playlistPage
		if err := c.get(ctx, url, params, &page); err != nil {
			return nil, fmt.Errorf("list playlists: %w", err)
		}
		for _, item := range page.Items {
			playlists = append(playlists, Playlist{
				ID:         item.ID,
				Name:       item.Name,
				OwnerID:    item.Owner.ID,
				SnapshotID: item.SnapshotID,
			})
		}
		// The next cursor already carries the query parameters.
		url = page.Next
		params = nil
	}

	log.Debug().Int("count", len(playlists)).Msg("Fetched playlist listing")
	return playlists, nil
}

// PlaylistTracks returns the tracks of a playlist. Local files and items
// without a track ID (removed or unavailable) are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	var tracks []Track

	url := fmt.Sprintf("%s/playlists/%s/tracks", c.apiURL, playlistID)
	params := map[string]string{
		"limit":  "100",
		"fields": "next,items(is_local,track(id,uri,name,artists(id)))",
	}
	for url != "" {
		var page trackPage
		if err := c.get(ctx, url, params, &page); err != nil {
			return nil, fmt.Errorf("fetch playlist tracks: %w", err)
		}
		for _, item := range page.Items {
			if item.IsLocal || item.Track.ID == "" {
				continue
			}
			track := Track{
				URI:  item.Track.URI,
				ID:   item.Track.ID,
				Name: item.Track.Name,
			}
			for _, artist := range item.Track.Artists {
				if artist.ID != "" {
					track.ArtistIDs = append(track.ArtistIDs, artist.ID)
				}
			}
			tracks = append(tracks, track)
		}
		url = page.Next
		params = nil
	}

	return tracks, nil
}

// AddItems appends track URIs to a playlist. Callers are responsible for
// keeping the batch within the API's per-request ceiling.
func (c *Client) AddItems(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}
	url := fmt.Sprintf("%s/playlists/%s/tracks", c.apiURL, playlistID)
	if err := c.send(ctx, http.MethodPost, url, addItemsRequest{URIs: uris}, nil); err != nil {
		return fmt.Errorf("add playlist items: %w", err)
	}
	return nil
}

// RemoveAllOccurrences removes every occurrence of the given track URIs
// from a playlist.
func (c *Client) RemoveAllOccurrences(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}
	body := removeItemsRequest{Tracks: make([]removeItem, 0, len(uris))}
	for _, uri := range uris {
		body.Tracks = append(body.Tracks, removeItem{URI: uri})
	}
	url := fmt.Sprintf("%s/playlists/%s/tracks", c.apiURL, playlistID)
	if err := c.send(ctx, http.MethodDelete, url, body, nil); err != nil {
		return fmt.Errorf("remove playlist items: %w", err)
	}
	return nil
}

// CreatePlaylist creates a private playlist on the account and returns
// its metadata.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string) (Playlist, error) {
	userID, err := c.CurrentUserID(ctx)
	if err != nil {
		return Playlist{}, err
	}

	var created createPlaylistResponse
	url := fmt.Sprintf("%s/users/%s/playlists", c.apiURL, userID)
	body := createPlaylistRequest{Name: name, Public: false, Description: description}
	err = c.send(ctx, http.MethodPost, url, body, &created)
	if err != nil {
		return Playlist{}, fmt.Errorf("create playlist: %w", err)
	}

	log.Info().Str("playlist", created.ID).Str("name", name).Msg("Created playlist")
	return Playlist{
		ID:         created.ID,
		Name:       created.Name,
		OwnerID:    userID,
		SnapshotID: created.SnapshotID,
	}, nil
}

// get performs an authenticated GET with retry, decoding the JSON body
// into out.
func (c *Client) get(ctx context.Context, url string, params map[string]string, out any) error {
	return c.doWithRetry(ctx, func(token string) (*resty.Response, error) {
		req := c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetResult(out)
		if len(params) > 0 {
			req.SetQueryParams(params)
		}
		return req.Get(url)
	})
}

// send performs an authenticated mutation with retry. out may be nil.
func (c *Client) send(ctx context.Context, method, url string, body any, out any) error {
	return c.doWithRetry(ctx, func(token string) (*resty.Response, error) {
		req := c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetHeader("Content-Type", "application/json").
			SetBody(body)
		if out != nil {
			req.SetResult(out)
		}
		return req.Execute(method, url)
	})
}
