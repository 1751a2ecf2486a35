// Package basemap fetches background raster tiles from an upstream tile
// server. The fetch is best-effort: the poster renders without a basemap
// when the upstream is unreachable.
package basemap

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // tile decoders
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const userAgent = "healthmap/1.0"

// Client fetches slippy-map tiles from a single upstream layer with a
// bounded timeout, an LRU cache, and upstream-polite rate limiting.
type Client struct {
	baseURL string
	client  *http.Client
	cache   *TileCache
	limiter *rate.Limiter
}

// NewClient creates a tile client for the given upstream base URL
// (e.g. "https://basemaps.cartocdn.com/light_all").
func NewClient(baseURL string, timeout time.Duration, tilesPerSecond float64) *Client {
	if tilesPerSecond <= 0 {
		tilesPerSecond = 8
	}
	// A fractional rate truncates to burst 0, which would reject every Wait.
	burst := int(tilesPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		cache:   NewTileCache(512, time.Hour),
		limiter: rate.NewLimiter(rate.Limit(tilesPerSecond), burst),
	}
}

// Fetch retrieves one tile as PNG/JPEG bytes, from cache when possible.
func (c *Client) Fetch(ctx context.Context, z, x, y int) ([]byte, error) {
	if cached := c.cache.Get(z, x, y); cached != nil {
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "basemap: rate limit wait")
	}

	url := fmt.Sprintf("%s/%d/%d/%d.png", c.baseURL, z, x, y)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "basemap: create tile request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "basemap: fetch tile")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("basemap: upstream returned %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "basemap: read tile body")
	}

	c.cache.Put(z, x, y, data)
	zap.L().Debug("fetched basemap tile", zap.String("url", url), zap.Int("bytes", len(data)))
	return data, nil
}

// FetchImage retrieves and decodes one tile.
func (c *Client) FetchImage(ctx context.Context, z, x, y int) (image.Image, error) {
	data, err := c.Fetch(ctx, z, x, y)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrap(err, "basemap: decode tile")
	}
	return img, nil
}

// ServeHTTP proxies tiles for the artifact server.
// Expected path format: /{z}/{x}/{y}.png
func (c *Client) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var z, x, y int
	var ext string
	if _, err := fmt.Sscanf(r.URL.Path, "/%d/%d/%d.%s", &z, &x, &y, &ext); err != nil {
		http.Error(w, "invalid tile path", http.StatusBadRequest)
		return
	}

	data, err := c.Fetch(r.Context(), z, x, y)
	if err != nil {
		zap.L().Error("basemap tile fetch failed", zap.Error(err))
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}
