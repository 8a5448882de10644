package inits

import (
	"fmt"
	"membership-dashboard/app/server/config"
	"os"
	"strconv"
	"strings"
	"time"
)

func Config() (*config.Config, error) {
	var cfg config.Config

	// system
	{
		mode, exist := os.LookupEnv("MODE")
		cfg.System.IsProd = exist && strings.HasPrefix(strings.ToLower(mode), "p")
	}

	if listen, exist := os.LookupEnv("LISTEN"); !exist {
		cfg.System.Listen = ":1323" // default listen address
	} else {
		cfg.System.Listen = listen
	}

	if publicURL, exist := os.LookupEnv("PUBLIC_URL"); exist {
		cfg.System.PublicURL = strings.TrimSuffix(publicURL, "/")
	}

	if dbconn, exist := os.LookupEnv("DB_CONN"); !exist {
		return nil, fmt.Errorf("DB_CONN environment variable not set")
	} else {
		cfg.System.DBConnectionString = dbconn
	}

	if redisconn, exist := os.LookupEnv("REDIS_CONN"); !exist {
		return nil, fmt.Errorf("REDIS_CONN environment variable not set")
	} else {
		cfg.System.RedisConnectionString = redisconn
	}

	// security
	if sigsk, exist := os.LookupEnv("SIGNATURE_SECRET_KEY"); !exist {
		return nil, fmt.Errorf("SIGNATURE_SECRET_KEY environment variable not set")
	} else {
		cfg.Security.SignatureSecretKey = sigsk
	}

	adminEmail, hasEmail := os.LookupEnv("BOOTSTRAP_ADMIN_EMAIL")
	adminPassword, hasPassword := os.LookupEnv("BOOTSTRAP_ADMIN_PASSWORD")
	if hasEmail != hasPassword {
		return nil, fmt.Errorf("BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD must be set together")
	}
	cfg.Security.BootstrapAdmin.Email = adminEmail
	cfg.Security.BootstrapAdmin.Password = adminPassword

	// session
	if ttl, err := durationEnv("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	} else {
		cfg.Session.TTL = ttl
	}

	if secureStr, exist := os.LookupEnv("COOKIE_SECURE"); !exist {
		cfg.Session.CookieSecure = true
	} else if secure, err := strconv.ParseBool(secureStr); err != nil {
		return nil, fmt.Errorf("COOKIE_SECURE should be a boolean")
	} else {
		cfg.Session.CookieSecure = secure
	}

	// gate
	if ttl, err := durationEnv("GATE_CACHE_TTL", 5*time.Second); err != nil {
		return nil, err
	} else {
		cfg.Gate.CacheTTL = ttl
	}

	if size, err := intEnv("GATE_CACHE_SIZE", 10000); err != nil {
		return nil, err
	} else {
		cfg.Gate.CacheSize = size
	}

	if prefixLen, err := intEnv("GATE_KEY_PREFIX", 32); err != nil {
		return nil, err
	} else {
		cfg.Gate.KeyPrefixLen = prefixLen
	}

	if rateStr, exist := os.LookupEnv("GATE_SWEEP_RATE"); !exist {
		cfg.Gate.SweepRate = 0.01
	} else if rate, err := strconv.ParseFloat(rateStr, 64); err != nil || rate < 0 || rate > 1 {
		return nil, fmt.Errorf("GATE_SWEEP_RATE should be a number between 0 and 1")
	} else {
		cfg.Gate.SweepRate = rate
	}

	if loginPath, exist := os.LookupEnv("LOGIN_PATH"); !exist {
		cfg.Gate.LoginPath = "/login"
	} else {
		cfg.Gate.LoginPath = loginPath
	}

	if dashboardPath, exist := os.LookupEnv("DASHBOARD_PATH"); !exist {
		cfg.Gate.DashboardPath = "/dashboard"
	} else {
		cfg.Gate.DashboardPath = dashboardPath
	}

	return &cfg, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	str, exist := os.LookupEnv(name)
	if !exist {
		return def, nil
	}
	d, err := time.ParseDuration(str)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s should be a positive duration", name)
	}
	return d, nil
}

func intEnv(name string, def int) (int, error) {
	str, exist := os.LookupEnv(name)
	if !exist {
		return def, nil
	}
	n, err := strconv.Atoi(str)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s should be a positive integer", name)
	}
	return n, nil
}
