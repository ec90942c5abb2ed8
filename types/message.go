// Package types provides the core types shared across policyswarm.
// This package has ZERO dependencies on other policyswarm packages to avoid circular imports.
package types

import "time"

// Role represents the role of a message participant.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one record of the conversation. Order is conversation order.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content,omitempty"`
	Author    string    `json:"author,omitempty"` // persona that produced it, empty for the seed
	Turn      int       `json:"turn,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// NewMessage creates a new message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return NewMessage(RoleAssistant, content)
}

// WithAuthor tags the message with the persona that produced it.
func (m Message) WithAuthor(author string) Message {
	m.Author = author
	return m
}

// WithTurn records the external turn the message belongs to.
func (m Message) WithTurn(turn int) Message {
	m.Turn = turn
	return m
}
