// Package idgen generates identifiers used across the engine: session ids
// handed to internal/history, PlayerMessage correlation ids, and plugin
// handshake ids for internal/pluginhost.
package idgen

import (
	"github.com/google/uuid"
)

// NewSessionID returns a new random session identifier for internal/history.
func NewSessionID() string {
	return uuid.New().String()
}

// NewMessageID returns a new random identifier for a PlayerMessage, so the
// HTTP/WS layer can correlate a delivery event back to the request that
// scheduled it.
func NewMessageID() string {
	return uuid.New().String()
}

// NewHandshakeID returns a new random identifier for an internal/pluginhost
// plugin handshake, so concurrent plugin loads don't cross-attribute logs.
func NewHandshakeID() string {
	return uuid.New().String()
}

// IsValid reports whether s parses as a UUID in any standard form.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// NamespaceSessions is the namespace used to derive deterministic session
// ids from an external id (e.g. a resumed session token), the way viewra
// derives stable media-entity ids from external identifiers.
var NamespaceSessions = uuid.MustParse("6ba7b815-9dad-11d1-80b4-00c04fd430c8")

// DeterministicSessionID derives a stable session id from externalID, so
// resuming the same external session always maps to the same row in
// internal/history.
func DeterministicSessionID(externalID string) string {
	return uuid.NewSHA1(NamespaceSessions, []byte(externalID)).String()
}
