// Package core defines the domain model shared by every stage of the chat
// orchestration pipeline: messages, sessions, the typed context-variable bag,
// collaborator store interfaces and the error taxonomy.
package core

import "github.com/google/uuid"

// NewID generates a new unique identifier for messages, sessions and plans.
func NewID() string { return uuid.NewString() }
