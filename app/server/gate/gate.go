// Package gate decides, per request, whether a page route may be served or
// must redirect, based on the session cookie and a short-lived result cache.
package gate

import (
	"context"
	"go.uber.org/zap"
	"math/rand"
	"membership-dashboard/app/server/metrics"
	"time"
)

type Action int

const (
	Allow Action = iota
	RedirectLogin
	RedirectDashboard
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectDashboard:
		return "redirect_dashboard"
	default:
		return "unknown"
	}
}

// Validator checks a session token against the session store.
type Validator interface {
	Validate(ctx context.Context, token string) (bool, error)
}

type Options struct {
	Routes        Routes
	DashboardPath string

	CacheTTL     time.Duration
	CacheSize    int
	SweepRate    float64 // probability that a checked request sweeps the cache
	KeyPrefixLen int

	Now  func() time.Time
	Rand func() float64 // uniform in [0, 1)
}

type Gate struct {
	l         *zap.Logger
	validator Validator
	routes    Routes
	dashboard string
	cache     *Cache
	sweepRate float64
	prefixLen int
	rand      func() float64
}

func New(l *zap.Logger, validator Validator, opts Options) *Gate {
	if l == nil {
		l = zap.NewNop()
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	if opts.KeyPrefixLen <= 0 {
		opts.KeyPrefixLen = 32
	}
	return &Gate{
		l:         l,
		validator: validator,
		routes:    opts.Routes,
		dashboard: opts.DashboardPath,
		cache:     NewCache(opts.CacheTTL, opts.CacheSize, opts.Now),
		sweepRate: opts.SweepRate,
		prefixLen: opts.KeyPrefixLen,
		rand:      opts.Rand,
	}
}

// Location is the redirect target of an action, empty for Allow.
func (g *Gate) Location(a Action) string {
	switch a {
	case RedirectLogin:
		return g.routes.LoginPath
	case RedirectDashboard:
		return g.dashboard
	default:
		return ""
	}
}

// Decide classifies path and, unless it is public, resolves whether token
// belongs to a live session. Store failures count as "no session".
func (g *Gate) Decide(ctx context.Context, path string, token string) Action {
	class := g.routes.classify(path)
	if class == routePublic {
		return g.record(Allow)
	}

	if g.rand() < g.sweepRate {
		if removed := g.cache.Sweep(); removed > 0 {
			g.l.Debug("gate cache swept", zap.Int("removed", removed))
		}
	}

	return g.record(apply(class, g.authenticated(ctx, token)))
}

// Forget drops the cached result for token, used on logout.
func (g *Gate) Forget(token string) {
	if token == "" {
		return
	}
	g.cache.Forget(g.key(token))
}

// Sweep evicts expired cache entries.
func (g *Gate) Sweep() int {
	return g.cache.Sweep()
}

func (g *Gate) authenticated(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	key := g.key(token)
	if authenticated, ok := g.cache.Get(key); ok {
		metrics.GateCacheLookupsTotal.WithLabelValues("hit").Inc()
		return authenticated
	}
	metrics.GateCacheLookupsTotal.WithLabelValues("miss").Inc()

	authenticated, err := g.validator.Validate(ctx, token)
	if err != nil {
		// not cached, so the next request retries the store
		metrics.SessionValidationErrorsTotal.Inc()
		g.l.Error("failed to validate session", zap.Error(err))
		return false
	}

	g.cache.Put(key, authenticated)
	return authenticated
}

func (g *Gate) key(token string) string {
	if len(token) > g.prefixLen {
		return token[:g.prefixLen]
	}
	return token
}

func (g *Gate) record(a Action) Action {
	metrics.GateDecisionsTotal.WithLabelValues(a.String()).Inc()
	return a
}

func apply(class routeClass, authenticated bool) Action {
	switch {
	case !authenticated && class == routeProtected:
		return RedirectLogin
	case authenticated && class == routeLogin:
		return RedirectDashboard
	default:
		return Allow
	}
}
