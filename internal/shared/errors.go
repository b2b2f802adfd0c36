package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and playback errors
	ErrAPIRequest        = fmt.Errorf("API request failed")
	ErrPlaylistNotFound  = fmt.Errorf("playlist not found")
	ErrNoActiveDevice    = fmt.Errorf("no active playback device")
	ErrEmptyCollection   = fmt.Errorf("collection has no playable tracks")
	ErrShuffleInProgress = fmt.Errorf("a shuffle run is already in progress")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
