package constants

import "time"

const (
	CacheKeySession = "dashboard:session:%s"
	CacheKeyProfile = "dashboard:profile:%s"
)

const (
	CacheExpireProfile = 10 * time.Minute
)
