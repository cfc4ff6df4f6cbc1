package domain

import "github.com/google/uuid"

// ClientID identifies an authenticated observer (a browser extension
// install) talking to the agent. It wraps uuid.UUID for type safety.
type ClientID uuid.UUID

// String returns the canonical UUID form.
func (c ClientID) String() string { return uuid.UUID(c).String() }
