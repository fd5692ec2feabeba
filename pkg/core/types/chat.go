// Package types defines the shared data model: chat messages, sessions,
// attached files, grounding sources, and user accounts.
package types

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// FileData is an attachment carried inline with a message.
type FileData struct {
	Base64   string `json:"base64"`
	MIMEType string `json:"mimeType"`
}

// Source is a web citation returned by grounded generation.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ChatMessage is a single entry in a conversation.
type ChatMessage struct {
	Role    Role      `json:"role"`
	Text    string    `json:"text"`
	File    *FileData `json:"file,omitempty"`
	Image   string    `json:"image,omitempty"`
	Sources []Source  `json:"sources,omitempty"`
}

// ChatSession is a stored conversation with a generated title.
type ChatSession struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"createdAt"`
}

// UserProfile holds the user-editable parts of an account.
type UserProfile struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// UserActivity tracks account timestamps.
type UserActivity struct {
	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin"`
}

// User is an account keyed by normalized email address.
type User struct {
	Email    string       `json:"email"`
	Profile  UserProfile  `json:"profile"`
	Activity UserActivity `json:"activity"`
}
