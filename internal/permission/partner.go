package permission

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/adrian-inthe/events7/internal/domain"
)

// DefaultPartnerURL is the ad partner permission endpoint.
const DefaultPartnerURL = "https://us-central1-o7tools.cloudfunctions.net/fun7-ad-partner"

// Literal values of the partner's "ads" field. Anything else is indeterminate.
const (
	adsGranted = "sure, why not!"
	adsDenied  = "you shall not pass!"
)

// PartnerClient asks the ad partner whether ads may be managed for a country.
type PartnerClient struct {
	endpoint  string
	apiKey    string
	apiSecret string
	client    *http.Client
}

func NewPartnerClient(endpoint, apiKey, apiSecret string, client *http.Client) *PartnerClient {
	if endpoint == "" {
		endpoint = DefaultPartnerURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &PartnerClient{
		endpoint:  endpoint,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		client:    client,
	}
}

type partnerResponse struct {
	Ads string `json:"ads"`
}

// AdsPermission returns DecisionIndeterminate together with an error on any failure.
func (c *PartnerClient) AdsPermission(ctx context.Context, countryCode string) (domain.Decision, error) {
	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return domain.DecisionIndeterminate, fmt.Errorf("parse partner endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("countryCode", countryCode)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return domain.DecisionIndeterminate, fmt.Errorf("build partner request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.DecisionIndeterminate, fmt.Errorf("partner request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.DecisionIndeterminate, fmt.Errorf("partner request: unexpected status %d", resp.StatusCode)
	}

	var body partnerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.DecisionIndeterminate, fmt.Errorf("decode partner response: %w", err)
	}

	decision := ParseAdsDecision(body.Ads)
	if decision == domain.DecisionIndeterminate {
		return decision, fmt.Errorf("unrecognized partner response %q", body.Ads)
	}
	return decision, nil
}

// ParseAdsDecision matches the partner's free-text field exactly.
func ParseAdsDecision(text string) domain.Decision {
	switch text {
	case adsGranted:
		return domain.DecisionGranted
	case adsDenied:
		return domain.DecisionDenied
	default:
		return domain.DecisionIndeterminate
	}
}
