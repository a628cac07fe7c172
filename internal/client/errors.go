package client

import "errors"

// Typed failures the stores surface to callers. The API layer maps
// envelope failure messages onto these so callers never string-match.
var (
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateName      = errors.New("display name already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrRemoteFetchFailed  = errors.New("remote fetch failed")
	ErrRemoteWriteFailed  = errors.New("remote write failed")
)
