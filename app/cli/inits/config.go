package inits

import (
	"fmt"
	"membership-dashboard/app/cli/config"
	"os"
	"strings"
)

func Config() (*config.Config, error) {
	var cfg config.Config
	{
		mode, exist := os.LookupEnv("MODE")
		cfg.IsProd = exist && strings.HasPrefix(strings.ToLower(mode), "p")
	}

	if dbConn, exist := os.LookupEnv("DB_CONN"); !exist || dbConn == "" {
		return nil, fmt.Errorf("DB_CONN environment variable not set")
	} else {
		cfg.DBConnectionString = dbConn
	}

	if redisConn, exist := os.LookupEnv("REDIS_CONN"); !exist || redisConn == "" {
		return nil, fmt.Errorf("REDIS_CONN environment variable not set")
	} else {
		cfg.RedisConnectionString = redisConn
	}

	return &cfg, nil
}
