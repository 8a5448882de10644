package config

import "time"

type Config struct {
	System struct {
		IsProd                bool   // production mode: json logs, no api docs
		Listen                string // listen address
		PublicURL             string // optional, advertised as the server of the api docs
		DBConnectionString    string // Postgres connection string
		RedisConnectionString string // Redis URL, e.g. redis://:pass@host:6379/0
	}
	Security struct {
		SignatureSecretKey string // signs password recovery tokens; rotating it invalidates pending ones
		BootstrapAdmin     BootstrapAdmin
	}
	Session struct {
		TTL          time.Duration // lifetime of a session issued at login
		CookieSecure bool          // Secure flag on the session cookie
	}
	Gate struct {
		CacheTTL      time.Duration // how long a validation result is reused
		CacheSize     int           // max cached validation results
		SweepRate     float64       // fraction of requests that trigger an expiry sweep
		KeyPrefixLen  int           // cookie prefix length used as cache key
		LoginPath     string
		DashboardPath string
	}
}

type BootstrapAdmin struct {
	Email    string // optional, seeded as admin when no profile exists
	Password string
}
