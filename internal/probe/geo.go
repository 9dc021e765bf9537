package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// GeoInfo is the best-effort IP/geolocation result. A zero value means both
// lookup tiers failed.
type GeoInfo struct {
	IP          string
	Country     string
	CountryCode string
	Region      string
	City        string
	Postal      string
	Latitude    *float64
	Longitude   *float64
	ISP         string
}

// GeoLookup is the single probe with a two-tier fallback: IP/geo is the
// highest-value field but the only one depending on third-party
// reachability, so it degrades to IP-only before giving up entirely.
type GeoLookup struct {
	client          *http.Client
	primaryURL      string
	fallbackURL     string
	primaryTimeout  time.Duration
	fallbackTimeout time.Duration
}

// Defaults for the two lookup tiers.
const (
	DefaultGeoPrimaryURL      = "https://ipinfo.io/json"
	DefaultGeoFallbackURL     = "https://api.ipify.org?format=json"
	DefaultGeoPrimaryTimeout  = 5 * time.Second
	DefaultGeoFallbackTimeout = 3 * time.Second
)

func NewGeoLookup(primaryURL, fallbackURL string, primaryTimeout, fallbackTimeout time.Duration) *GeoLookup {
	return &GeoLookup{
		client:          &http.Client{},
		primaryURL:      primaryURL,
		fallbackURL:     fallbackURL,
		primaryTimeout:  primaryTimeout,
		fallbackTimeout: fallbackTimeout,
	}
}

// Lookup resolves the visitor's public IP and coarse geolocation. A timeout
// is treated like any other failure: fall through to the next tier, then to
// an empty result. Never returns an error.
func (g *GeoLookup) Lookup(ctx context.Context) GeoInfo {
	if info, err := g.primary(ctx); err == nil {
		return info
	}
	if info, err := g.fallback(ctx); err == nil {
		return info
	}
	return GeoInfo{}
}

// primaryResponse is the ipinfo-shaped payload; Loc is "lat,lng".
type primaryResponse struct {
	IP      string `json:"ip"`
	Country string `json:"country"`
	Region  string `json:"region"`
	City    string `json:"city"`
	Postal  string `json:"postal"`
	Loc     string `json:"loc"`
	Org     string `json:"org"`
}

func (g *GeoLookup) primary(ctx context.Context) (GeoInfo, error) {
	var resp primaryResponse
	if err := g.fetch(ctx, g.primaryURL, g.primaryTimeout, &resp); err != nil {
		return GeoInfo{}, err
	}

	info := GeoInfo{
		IP:          resp.IP,
		Country:     resp.Country,
		CountryCode: resp.Country,
		Region:      resp.Region,
		City:        resp.City,
		Postal:      resp.Postal,
		ISP:         resp.Org,
	}
	info.Latitude, info.Longitude = parseLoc(resp.Loc)
	return info, nil
}

func (g *GeoLookup) fallback(ctx context.Context) (GeoInfo, error) {
	var resp struct {
		IP string `json:"ip"`
	}
	if err := g.fetch(ctx, g.fallbackURL, g.fallbackTimeout, &resp); err != nil {
		return GeoInfo{}, err
	}
	return GeoInfo{IP: resp.IP}, nil
}

func (g *GeoLookup) fetch(ctx context.Context, url string, timeout time.Duration, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build geo request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("geo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("geo service returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode geo response: %w", err)
	}
	return nil
}

// parseLoc splits an ipinfo "lat,lng" pair. Either half failing to parse
// leaves both coordinates absent.
func parseLoc(loc string) (*float64, *float64) {
	parts := strings.SplitN(loc, ",", 2)
	if len(parts) != 2 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, nil
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, nil
	}
	return &lat, &lng
}
