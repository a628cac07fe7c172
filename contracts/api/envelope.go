package api

import "encoding/json"

// Envelope is the wrapper shape every REST endpoint speaks:
// {success, data, message}. Failures carry a user-visible message and
// no data.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Failure messages shared between server handlers and the client so
// the client can map envelope failures back to typed errors.
const (
	MsgEmailTaken         = "email already exists"
	MsgNameTaken          = "display name already exists"
	MsgInvalidCredentials = "invalid email or password"
	MsgNotAuthenticated   = "not authenticated"
	MsgForbidden          = "insufficient permissions"
)
