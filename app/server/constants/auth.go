package constants

import "time"

const (
	RecoveryTokenDuration = 30 * time.Minute
	PasswordMinLength     = 8
)
