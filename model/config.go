package model

import "time"

// Config holds the application's settings.
type Config struct {
	BotToken                 string
	DatabasePath             string
	LogLevel                 string
	LogFormat                string
	DeveloperUserIDs         []string
	DisableCommandUnregister bool

	GatewayTimeout      time.Duration
	ExpirySweepInterval time.Duration
	ReconcileInterval   time.Duration
	BanPruneDays        int
}

// IsDeveloper reports whether userID bypasses claim checks.
func (c *Config) IsDeveloper(userID string) bool {
	for _, id := range c.DeveloperUserIDs {
		if id != "" && id == userID {
			return true
		}
	}
	return false
}
