// Package notify pushes project risk digests to chat platforms.
package notify

import "context"

// Notifier delivers a formatted message to one chat platform.
type Notifier interface {
	// Name identifies the platform in logs, e.g. "slack".
	Name() string
	// Send delivers msg. Implementations retry on platform rate limits.
	Send(ctx context.Context, msg Message) error
}

// Message is a platform-neutral chat message.
type Message struct {
	ChannelID string    // empty uses the notifier's default channel
	Text      string    // plain summary, also the notification fallback
	Sections  []Section // rendered as attachments or embeds
}

// Section is one titled block of a message.
type Section struct {
	Title  string
	Body   string
	Color  string // hex sidebar colour, e.g. "#e53935"
	Fields []Field
}

// Field is a key-value pair displayed in a section.
type Field struct {
	Name  string
	Value string
	Short bool // hint: render side-by-side with another field
}

// Sidebar colours.
const (
	ColorOK      = "#36a64f"
	ColorInfo    = "#2196f3"
	ColorWarning = "#ff9800"
	ColorDanger  = "#e53935"
)
