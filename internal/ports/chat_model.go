package ports

import (
	"context"
)

// Role identifies the author of a conversation turn
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message of a conversation history
type Turn struct {
	Role Role
	Text string
}

// ChatModel sends a prompt to an upstream language model after replaying history
type ChatModel interface {
	// Chat returns the raw text of the model's reply
	Chat(ctx context.Context, history []Turn, prompt string) (string, error)

	// Name returns the upstream model identifier
	Name() string
}
