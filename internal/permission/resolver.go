package permission

import (
	"context"
	"time"

	"github.com/adrian-inthe/events7/internal/domain"
	"go.uber.org/zap"
)

// CountryLocator is the first lookup stage: address to country code.
type CountryLocator interface {
	LocateCountry(ctx context.Context, address string) (string, error)
}

// PermissionSource is the second lookup stage: country code to decision.
type PermissionSource interface {
	AdsPermission(ctx context.Context, countryCode string) (domain.Decision, error)
}

const defaultLookupTimeout = 5 * time.Second

// Resolver decides whether a caller may manipulate ads events.
// Every failure resolves to a denial; nothing is cached or retried.
type Resolver struct {
	locator CountryLocator
	source  PermissionSource
	timeout time.Duration
	logger  *zap.Logger
	metrics *Metrics
}

type ResolverOption func(*Resolver)

// WithLookupTimeout bounds each stage. A timeout counts as a transport failure.
func WithLookupTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) ResolverOption {
	return func(r *Resolver) {
		if m != nil {
			r.metrics = m
		}
	}
}

func NewResolver(locator CountryLocator, source PermissionSource, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		locator: locator,
		source:  source,
		timeout: defaultLookupTimeout,
		logger:  zap.NewNop(),
		metrics: NewMetrics(nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveCountryCode returns false when the address is empty or the lookup fails.
func (r *Resolver) ResolveCountryCode(ctx context.Context, callerAddress string) (string, bool) {
	if callerAddress == "" {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	code, err := r.locator.LocateCountry(ctx, callerAddress)
	if err != nil {
		r.logger.Warn("couldn't fetch country code",
			zap.String("caller_address", callerAddress),
			zap.Error(err),
		)
		return "", false
	}
	return code, true
}

// ResolvePermission returns DecisionIndeterminate on any failure.
func (r *Resolver) ResolvePermission(ctx context.Context, countryCode string) domain.Decision {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	decision, err := r.source.AdsPermission(ctx, countryCode)
	if err != nil {
		r.logger.Warn("couldn't fetch permission",
			zap.String("country_code", countryCode),
			zap.Error(err),
		)
		return domain.DecisionIndeterminate
	}
	return decision
}

// PermissionToManipulateAds runs both stages in order for the given caller.
func (r *Resolver) PermissionToManipulateAds(ctx context.Context, callerAddress string) bool {
	countryCode, ok := r.ResolveCountryCode(ctx, callerAddress)
	if !ok {
		r.logger.Warn("no country code found, permission denied",
			zap.String("caller_address", callerAddress),
		)
		r.metrics.observe(outcomeNoCountry)
		return false
	}

	decision := r.ResolvePermission(ctx, countryCode)
	if decision == domain.DecisionIndeterminate {
		r.logger.Warn("permission not found, permission denied",
			zap.String("caller_address", callerAddress),
			zap.String("country_code", countryCode),
		)
	}
	r.metrics.observe(decision.String())
	return decision.Allows()
}
