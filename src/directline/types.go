package directline

import "encoding/json"

// ChannelAccount identifies a participant on the Direct Line channel.
type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Attachment is an activity attachment. The client passes attachment
// content through untouched.
type Attachment struct {
	ContentType string          `json:"contentType,omitempty"`
	ContentURL  string          `json:"contentUrl,omitempty"`
	Content     json.RawMessage `json:"content,omitempty"`
}

// Activity is one unit of conversation exchange (message, event, ...).
type Activity struct {
	ID          string         `json:"id,omitempty"`
	Type        string         `json:"type"`
	From        ChannelAccount `json:"from"`
	Text        string         `json:"text,omitempty"`
	Locale      string         `json:"locale,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
	ChannelID   string         `json:"channelId,omitempty"`
	Attachments []Attachment   `json:"attachments,omitempty"`
}

// ActivitySet is the body returned by the activities GET endpoint: the
// visible slice of the conversation plus the server's new watermark.
type ActivitySet struct {
	Activities []Activity `json:"activities"`
	Watermark  string     `json:"watermark,omitempty"`
}

// TokenResponse is the body returned by the token generation endpoint.
// ExpiresIn may be absent; callers fall back to a default lifetime.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in,omitempty"`
}

// ConversationResponse is the body returned when a conversation is
// opened. Only ConversationID is load-bearing for this client; the
// conversation-scoped token and stream URL are carried for callers
// that want them.
type ConversationResponse struct {
	ConversationID string `json:"conversationId"`
	Token          string `json:"token,omitempty"`
	ExpiresIn      int64  `json:"expires_in,omitempty"`
	StreamURL      string `json:"streamUrl,omitempty"`
}
