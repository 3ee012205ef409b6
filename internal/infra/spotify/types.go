package spotify

// Playlist is the playlist metadata returned by the Web API listing
// endpoints, before track payloads are fetched.
type Playlist struct {
	ID         string
	Name       string
	OwnerID    string
	SnapshotID string
}

// Track is one playable track with its artist credits.
type Track struct {
	URI       string
	ID        string
	Name      string
	ArtistIDs []string
}

// Wire types below mirror the Web API JSON shapes.

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type userResponse struct {
	ID string `json:"id"`
}

type playlistPage struct {
	Items []playlistItem `json:"items"`
	Next  string         `json:"next"`
}

type playlistItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SnapshotID string `json:"snapshot_id"`
	Owner      struct {
		ID string `json:"id"`
	} `json:"owner"`
}

type trackPage struct {
	Items []trackPageItem `json:"items"`
	Next  string          `json:"next"`
}

type trackPageItem struct {
	IsLocal bool      `json:"is_local"`
	Track   trackItem `json:"track"`
}

type trackItem struct {
	ID      string `json:"id"`
	URI     string `json:"uri"`
	Name    string `json:"name"`
	Artists []struct {
		ID string `json:"id"`
	} `json:"artists"`
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Public      bool   `json:"public"`
	Description string `json:"description,omitempty"`
}

type createPlaylistResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SnapshotID string `json:"snapshot_id"`
}

type addItemsRequest struct {
	URIs []string `json:"uris"`
}

type removeItemsRequest struct {
	Tracks []removeItem `json:"tracks"`
}

type removeItem struct {
	URI string `json:"uri"`
}
