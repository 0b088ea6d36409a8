// Package geocode resolves street addresses to coordinates through the
// Naver geocoding API. Absence of coordinates is a normal outcome for
// callers: any failure here must not block the operation that wanted them.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const endpoint = "https://naveropenapi.apigw.ntruss.com/map-geocode/v2/geocode"

var ErrNoResult = errors.New("geocode: no result for address")

// Coordinates is a geocoded point.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Geocoder is implemented by anything that can turn an address into
// coordinates.
type Geocoder interface {
	Lookup(ctx context.Context, address string) (*Coordinates, error)
}

// Client calls the Naver geocoding endpoint, authenticated by the two
// header-borne API keys.
type Client struct {
	keyID      string
	key        string
	baseURL    string
	httpClient *http.Client
}

func NewClient(keyID, key string) *Client {
	return &Client{
		keyID:      keyID,
		key:        key,
		baseURL:    endpoint,
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
}

type geocodeResponse struct {
	Status string `json:"status"`
	Meta   struct {
		TotalCount int `json:"totalCount"`
	} `json:"meta"`
	Addresses []struct {
		RoadAddress  string `json:"roadAddress"`
		JibunAddress string `json:"jibunAddress"`
		X            string `json:"x"` // longitude
		Y            string `json:"y"` // latitude
	} `json:"addresses"`
	ErrorMessage string `json:"errorMessage"`
}

func (c *Client) Lookup(ctx context.Context, address string) (*Coordinates, error) {
	if c.keyID == "" || c.key == "" {
		return nil, errors.New("geocode: API credentials are not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"?query="+url.QueryEscape(address), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-NCP-APIGW-API-KEY-ID", c.keyID)
	req.Header.Set("X-NCP-APIGW-API-KEY", c.key)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: unexpected status %d", res.StatusCode)
	}

	var out geocodeResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}

	if out.Status != "OK" || len(out.Addresses) == 0 {
		return nil, ErrNoResult
	}

	first := out.Addresses[0]
	lat, err := strconv.ParseFloat(first.Y, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: bad latitude %q: %w", first.Y, err)
	}
	lng, err := strconv.ParseFloat(first.X, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: bad longitude %q: %w", first.X, err)
	}

	return &Coordinates{Latitude: lat, Longitude: lng}, nil
}
