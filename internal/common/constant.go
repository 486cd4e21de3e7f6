// Package common contains constants and helpers shared by the e-library
// client and its test server.
package common

// HTTP header names and values.
const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
	RequestIDHeader     = "X-Request-ID"
)

// Storage keys. The names match those used by the web front end so a
// migrated profile keeps working.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
	LoggedInKey     = "loggedIn"
	RoleKey         = "role"
	StudentKey      = "loggedInStudent"
)
