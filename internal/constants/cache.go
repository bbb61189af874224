package constants

import "time"

// Cache key prefixes. CacheBuilder.WithHash adds the colon.
const (
	UserCachePrefix         = "user"
	UserSettingsCachePrefix = "user_settings"
	SessionCachePrefix      = "session"
	UserSessionsCachePrefix = "user_sessions"
	HabitListCachePrefix    = "habits"
	HabitLogsCachePrefix    = "habit_logs"
)

const (
	UserCacheExpiry     = 24 * time.Hour
	SettingsCacheExpiry = 24 * time.Hour
	HabitCacheExpiry    = time.Hour
	HabitLogsExpiry     = 30 * time.Minute
)
