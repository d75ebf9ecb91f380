package permission

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adrian-inthe/events7/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testCallerAddress = "113.29.77.255"
	testAPIKey        = "key"
	testAPISecret     = "secret"
)

type fakeGeolocation struct {
	server *httptest.Server
	hits   atomic.Int32
	path   atomic.Value
}

func newFakeGeolocation(t *testing.T, handler func(w http.ResponseWriter)) *fakeGeolocation {
	t.Helper()
	f := &fakeGeolocation{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		f.path.Store(r.URL.Path + "?" + r.URL.RawQuery)
		handler(w)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func respondCountry(code string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"countryCode": code})
	}
}

type fakePartner struct {
	server      *httptest.Server
	hits        atomic.Int32
	countryCode atomic.Value
	authOK      atomic.Bool
}

func newFakePartner(t *testing.T, status int, body string) *fakePartner {
	t.Helper()
	f := &fakePartner{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		f.countryCode.Store(r.URL.Query().Get("countryCode"))
		user, pass, ok := r.BasicAuth()
		f.authOK.Store(ok && user == testAPIKey && pass == testAPISecret)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func adsBody(value string) string {
	b, _ := json.Marshal(map[string]string{"ads": value})
	return string(b)
}

func newTestResolver(geoURL, partnerURL string, opts ...ResolverOption) *Resolver {
	return NewResolver(
		NewGeolocationClient(geoURL, nil),
		NewPartnerClient(partnerURL, testAPIKey, testAPISecret, nil),
		opts...,
	)
}

func TestResolver_Granted(t *testing.T) {
	geo := newFakeGeolocation(t, respondCountry("SI"))
	partner := newFakePartner(t, http.StatusOK, adsBody("sure, why not!"))

	r := newTestResolver(geo.server.URL, partner.server.URL)

	assert.True(t, r.PermissionToManipulateAds(context.Background(), testCallerAddress))
	assert.Equal(t, "/"+testCallerAddress+"?fields=countryCode", geo.path.Load())
	assert.Equal(t, "SI", partner.countryCode.Load())
	assert.True(t, partner.authOK.Load(), "expected basic auth credentials")
}

func TestResolver_Denied(t *testing.T) {
	geo := newFakeGeolocation(t, respondCountry("SI"))
	partner := newFakePartner(t, http.StatusOK, adsBody("you shall not pass!"))

	r := newTestResolver(geo.server.URL, partner.server.URL)

	assert.False(t, r.PermissionToManipulateAds(context.Background(), testCallerAddress))
	assert.Equal(t, int32(1), partner.hits.Load())
}

func TestResolver_GeolocationNetworkError(t *testing.T) {
	geo := httptest.NewServer(http.NotFoundHandler())
	geoURL := geo.URL
	geo.Close()
	partner := newFakePartner(t, http.StatusOK, adsBody("sure, why not!"))

	r := newTestResolver(geoURL, partner.server.URL)

	assert.False(t, r.PermissionToManipulateAds(context.Background(), testCallerAddress))
	assert.Equal(t, int32(0), partner.hits.Load())
}

func TestResolver_MissingCallerAddress(t *testing.T) {
	geo := newFakeGeolocation(t, respondCountry("SI"))
	partner := newFakePartner(t, http.StatusOK, adsBody("sure, why not!"))

	r := newTestResolver(geo.server.URL, partner.server.URL)

	for i := 0; i < 3; i++ {
		assert.False(t, r.PermissionToManipulateAds(context.Background(), ""))
	}
	assert.Equal(t, int32(0), geo.hits.Load())
	assert.Equal(t, int32(0), partner.hits.Load())
}

func TestResolver_EmptyCountryCode(t *testing.T) {
	geo := newFakeGeolocation(t, respondCountry(""))
	partner := newFakePartner(t, http.StatusOK, adsBody("sure, why not!"))

	r := newTestResolver(geo.server.URL, partner.server.URL)

	assert.False(t, r.PermissionToManipulateAds(context.Background(), testCallerAddress))
	assert.Equal(t, int32(0), partner.hits.Load())
}

func TestResolver_UnrecognizedPartnerResponse(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	geo := newFakeGeolocation(t, respondCountry("SI"))
	partner := newFakePartner(t, http.StatusOK, adsBody("unexpected text"))

	r := newTestResolver(geo.server.URL, partner.server.URL, WithLogger(zap.New(core)))

	assert.False(t, r.PermissionToManipulateAds(context.Background(), testCallerAddress))
	assert.Equal(t, 1, logs.FilterMessage("permission not found, permission denied").Len())
}

func TestResolver_PartnerFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: adsBody("sure, why not!")},
		{name: "missing field", status: http.StatusOK, body: `{"other":"value"}`},
		{name: "malformed json", status: http.StatusOK, body: `{"ads":`},
		{name: "wrong case", status: http.StatusOK, body: adsBody("Sure, why not!")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			geo := newFakeGeolocation(t, respondCountry("SI"))
			partner := newFakePartner(t, tt.status, tt.body)

			r := newTestResolver(geo.server.URL, partner.server.URL)

			assert.Equal(t, domain.DecisionIndeterminate, r.ResolvePermission(context.Background(), "SI"))
			assert.False(t, r.PermissionToManipulateAds(context.Background(), testCallerAddress))
		})
	}
}

func TestResolver_LookupTimeout(t *testing.T) {
	release := make(chan struct{})
	geo := newFakeGeolocation(t, func(w http.ResponseWriter) {
		<-release
		respondCountry("SI")(w)
	})
	defer close(release)
	partner := newFakePartner(t, http.StatusOK, adsBody("sure, why not!"))

	r := newTestResolver(geo.server.URL, partner.server.URL, WithLookupTimeout(50*time.Millisecond))

	start := time.Now()
	assert.False(t, r.PermissionToManipulateAds(context.Background(), testCallerAddress))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, int32(0), partner.hits.Load())
}

func TestResolver_CountsOutcomes(t *testing.T) {
	geo := newFakeGeolocation(t, respondCountry("SI"))
	partner := newFakePartner(t, http.StatusOK, adsBody("sure, why not!"))
	metrics := NewMetrics(prometheus.NewRegistry())

	r := newTestResolver(geo.server.URL, partner.server.URL, WithMetrics(metrics))

	require.True(t, r.PermissionToManipulateAds(context.Background(), testCallerAddress))
	require.False(t, r.PermissionToManipulateAds(context.Background(), ""))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.decisions.WithLabelValues("granted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.decisions.WithLabelValues(outcomeNoCountry)))
}

func TestParseAdsDecision(t *testing.T) {
	assert.Equal(t, domain.DecisionGranted, ParseAdsDecision("sure, why not!"))
	assert.Equal(t, domain.DecisionDenied, ParseAdsDecision("you shall not pass!"))
	assert.Equal(t, domain.DecisionIndeterminate, ParseAdsDecision(""))
	assert.Equal(t, domain.DecisionIndeterminate, ParseAdsDecision("sure, why not! "))
}
