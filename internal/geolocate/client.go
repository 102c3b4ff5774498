// Package geolocate resolves a human-readable place name for the server's
// egress address by chaining an ipstack coordinate lookup with an opencage
// reverse geocode. Failures degrade to placeholder strings instead of errors
// so a check-in never fails on a flaky geo API.
package geolocate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// NotAvailable is returned when the reverse geocode yields zero results.
const NotAvailable = "Location not available"

// Cache is the optional result cache. store.Redis satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) string
	Set(ctx context.Context, key, val string, ttl time.Duration)
}

// Client calls the two geolocation APIs.
type Client struct {
	IPStackBaseURL  string
	IPStackAPIKey   string
	LookupIP        string
	OpenCageBaseURL string
	OpenCageAPIKey  string
	HTTP            *http.Client

	// Cache holds successfully resolved places keyed by the lookup IP. The
	// lookup targets the server's stable egress address, so short-TTL reuse
	// is safe. Nil disables caching.
	Cache    Cache
	CacheTTL time.Duration
}

// New creates a client.
func New(ipstackBase, ipstackKey, lookupIP, opencageBase, opencageKey string) *Client {
	return &Client{
		IPStackBaseURL:  ipstackBase,
		IPStackAPIKey:   ipstackKey,
		LookupIP:        lookupIP,
		OpenCageBaseURL: opencageBase,
		OpenCageAPIKey:  opencageKey,
		HTTP:            &http.Client{Timeout: 30 * time.Second},
	}
}

// Resolve returns the formatted place for the server's egress address, the
// NotAvailable placeholder when the geocoder finds nothing, or the transport
// error's message when the geocode call itself fails. A failed coordinate
// lookup does not abort resolution; the zero coordinates are fed forward and
// the reverse-geocode outcome governs.
func (c *Client) Resolve(ctx context.Context) string {
	cacheKey := "geolocate:" + c.LookupIP
	if c.Cache != nil {
		if cached := c.Cache.Get(ctx, cacheKey); cached != "" {
			return cached
		}
	}

	lat, lng, err := c.coordinates(ctx)
	if err != nil {
		log.Printf("geolocate: coordinate lookup failed: %v", err)
	}

	place, resolved := c.reverseGeocode(ctx, lat, lng)
	if resolved && c.Cache != nil {
		c.Cache.Set(ctx, cacheKey, place, c.CacheTTL)
	}
	return place
}

// coordinates asks ipstack for the latitude/longitude of the lookup IP.
func (c *Client) coordinates(ctx context.Context) (float64, float64, error) {
	url := fmt.Sprintf("%s/%s?access_key=%s&format=1", c.IPStackBaseURL, c.LookupIP, c.IPStackAPIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("ipstack request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, 0, fmt.Errorf("ipstack error %s", resp.Status)
	}
	var out struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, 0, fmt.Errorf("ipstack decode failed: %w", err)
	}
	return out.Latitude, out.Longitude, nil
}

// reverseGeocode turns coordinates into a formatted address. The second
// return reports whether a real result came back (and may be cached).
func (c *Client) reverseGeocode(ctx context.Context, lat, lng float64) (string, bool) {
	url := fmt.Sprintf("%s/geocode/v1/json?key=%s&q=%v,%v", c.OpenCageBaseURL, c.OpenCageAPIKey, lat, lng)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err.Error(), false
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err.Error(), false
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Sprintf("opencage error %s", resp.Status), false
	}
	var out struct {
		Results []struct {
			Formatted string `json:"formatted"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err.Error(), false
	}
	if len(out.Results) == 0 {
		return NotAvailable, false
	}
	return out.Results[0].Formatted, true
}
