package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/types"
)

const (
	defaultBaseURL             = "https://maps.googleapis.com/maps/api"
	responseBodyReadLimit int64 = 1 << 20
)

var errAPIKeyRequired = errors.New("maps api key is required")

// Client wraps the geocoding API used to attach coordinates to addresses a
// shopper types during checkout. Marker rendering stays fully external; the
// backend only ships coordinates.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the maps client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves a free-form address to coordinates. A query with no
// results is a dependency error; callers decide whether that is fatal.
func (c *Client) Geocode(ctx context.Context, address string) (types.GeoPoint, error) {
	if c == nil {
		return types.GeoPoint{}, pkgerrors.New(pkgerrors.CodeDependency, "maps client unavailable")
	}
	query := strings.TrimSpace(address)
	if query == "" {
		return types.GeoPoint{}, pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}

	endpoint := fmt.Sprintf("%s/geocode/json?%s", c.baseURL, url.Values{
		"address": {query},
		"key":     {c.apiKey},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return types.GeoPoint{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build geocode request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.GeoPoint{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call geocode api")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return types.GeoPoint{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read geocode response")
	}
	if resp.StatusCode != http.StatusOK {
		return types.GeoPoint{}, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("geocode api returned %d", resp.StatusCode))
	}

	var decoded geocodeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return types.GeoPoint{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode geocode response")
	}
	if decoded.Status != "OK" || len(decoded.Results) == 0 {
		return types.GeoPoint{}, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("geocode status %q", decoded.Status))
	}

	loc := decoded.Results[0].Geometry.Location
	return types.GeoPoint{Lat: loc.Lat, Lng: loc.Lng}, nil
}
