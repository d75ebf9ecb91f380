package permission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultGeolocationURL is the ip-api.com JSON endpoint.
const DefaultGeolocationURL = "http://ip-api.com/json"

var errCountryCodeMissing = errors.New("geolocation response has no country code")

// GeolocationClient resolves a network address to an ISO country code.
type GeolocationClient struct {
	baseURL string
	client  *http.Client
}

func NewGeolocationClient(baseURL string, client *http.Client) *GeolocationClient {
	if baseURL == "" {
		baseURL = DefaultGeolocationURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GeolocationClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type geolocationResponse struct {
	CountryCode string `json:"countryCode"`
}

// LocateCountry issues one GET {baseURL}/{address}?fields=countryCode.
func (c *GeolocationClient) LocateCountry(ctx context.Context, address string) (string, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(address) + "?fields=countryCode"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build geolocation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("geolocation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("geolocation request: unexpected status %d", resp.StatusCode)
	}

	var body geolocationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode geolocation response: %w", err)
	}
	if body.CountryCode == "" {
		return "", errCountryCodeMissing
	}
	return body.CountryCode, nil
}
