package constants

const (
	SessionCookieName = "cronify_session"
	UserLocalsKey     = "user"
	ClaimsLocalsKey   = "claims"
)
