package models

// Role tags who authored a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one chat turn as it is kept in a transcript. Content is always the literal text.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
