package directline

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// tokenSafetyMargin is subtracted from the token expiry when
	// deciding whether a cached token is still usable.
	tokenSafetyMargin = 300 * time.Second

	// defaultExpiresIn is assumed when the token response carries no
	// expires_in field.
	defaultExpiresIn = 3600
)

// Session owns the conversation lifecycle state: the cached token and
// its expiry, the current conversation ID, and the activity watermark.
// State is mutated in lifecycle order (token, then conversation, then
// watermark); fetching a new token invalidates the conversation and
// the watermark, and a new conversation resets the watermark.
//
// A Session is not safe for concurrent use.
type Session struct {
	client *Client
	logger *slog.Logger

	token          string
	tokenExpiresAt time.Time
	conversationID string
	watermark      string

	// Overridable in tests to avoid wall-clock dependence.
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewSession creates a session on top of the given client.
func NewSession(client *Client) *Session {
	logger := client.config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		client: client,
		logger: logger.With("component", "directline_session"),
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// ConversationResult is the outcome of a successful StartConversation.
type ConversationResult struct {
	ConversationID string
	Response       *ConversationResponse
}

// SendResult is the outcome of a successful SendMessage.
type SendResult struct {
	StatusCode     int
	Response       json.RawMessage
	ConversationID string
	Activity       *Activity
}

// ActivityResult is the outcome of a successful GetActivities.
type ActivityResult struct {
	Activities   []Activity
	Watermark    string
	BotResponses []string
	Total        int
}

// ExchangeResult is the outcome of a successful SendAndGetResponse.
type ExchangeResult struct {
	MessageSent  string
	BotResponses []string
	Attempts     int
	Send         *SendResult
	Get          *ActivityResult
}

// SessionStatus is a point-in-time snapshot of the session state.
type SessionStatus struct {
	HasToken       bool
	TokenRemaining time.Duration
	ConversationID string
	Watermark      string
}

// EnsureToken reuses the cached token while more than the safety
// margin remains before expiry, and refreshes it otherwise. A refresh
// discards the current conversation ID and watermark, since they are
// scoped to the token that created them.
func (s *Session) EnsureToken(ctx context.Context) error {
	if s.token != "" && s.now().Before(s.tokenExpiresAt.Add(-tokenSafetyMargin)) {
		s.logger.Debug("reusing cached token",
			"remaining", s.tokenExpiresAt.Sub(s.now()).Round(time.Second))
		return nil
	}

	s.logger.Info("fetching new token")
	s.conversationID = ""
	s.watermark = ""

	result, err := s.client.GenerateToken(ctx)
	if err != nil {
		return err
	}

	expiresIn := result.ExpiresIn
	if expiresIn == 0 {
		expiresIn = defaultExpiresIn
	}
	s.token = result.Token
	s.tokenExpiresAt = s.now().Add(time.Duration(expiresIn) * time.Second)

	s.logger.Info("token refreshed", "expires_in", expiresIn)
	return nil
}

// StartConversation opens a new conversation, refreshing the token
// first if needed. The watermark is reset: a new conversation has a
// fresh activity stream.
func (s *Session) StartConversation(ctx context.Context) (*ConversationResult, error) {
	if err := s.EnsureToken(ctx); err != nil {
		return nil, err
	}

	resp, err := s.client.StartConversation(ctx, s.token)
	if err != nil {
		return nil, err
	}

	s.conversationID = resp.ConversationID
	s.watermark = ""

	return &ConversationResult{
		ConversationID: resp.ConversationID,
		Response:       resp,
	}, nil
}

// SendMessage posts a message activity to the current conversation,
// establishing the session lazily: the token is ensured and, when no
// conversation exists yet, one is started first.
func (s *Session) SendMessage(ctx context.Context, text string) (*SendResult, error) {
	if err := s.EnsureToken(ctx); err != nil {
		return nil, err
	}

	if s.conversationID == "" {
		if _, err := s.StartConversation(ctx); err != nil {
			return nil, err
		}
	}

	activity := s.newMessageActivity(text)
	status, body, err := s.client.PostActivity(ctx, s.token, s.conversationID, activity)
	if err != nil {
		return nil, err
	}

	s.logger.Info("message sent", "conversation_id", s.conversationID, "status_code", status)
	return &SendResult{
		StatusCode:     status,
		Response:       body,
		ConversationID: s.conversationID,
		Activity:       activity,
	}, nil
}

// GetActivities fetches the visible activities of the current
// conversation. When watermarkOverride is non-empty it is used instead
// of the stored watermark; otherwise the stored watermark, if any, is
// sent. A new watermark in the response replaces the stored one.
//
// Every activity whose sender is not the session's user identity
// contributes its text to BotResponses, in stream order; activities
// without text are skipped.
func (s *Session) GetActivities(ctx context.Context, watermarkOverride string) (*ActivityResult, error) {
	if err := s.EnsureToken(ctx); err != nil {
		return nil, err
	}
	if s.conversationID == "" {
		return nil, ErrNoConversation
	}

	watermark := watermarkOverride
	if watermark == "" {
		watermark = s.watermark
	}

	set, err := s.client.Activities(ctx, s.token, s.conversationID, watermark)
	if err != nil {
		return nil, err
	}

	if set.Watermark != "" {
		s.watermark = set.Watermark
	}

	var botResponses []string
	for _, a := range set.Activities {
		if a.Text == "" || a.From.ID == s.client.config.UserID {
			continue
		}
		botResponses = append(botResponses, a.Text)
	}

	s.logger.Debug("activities received",
		"total", len(set.Activities),
		"bot_responses", len(botResponses),
		"watermark", set.Watermark)

	return &ActivityResult{
		Activities:   set.Activities,
		Watermark:    set.Watermark,
		BotResponses: botResponses,
		Total:        len(set.Activities),
	}, nil
}

// SendAndGetResponse sends a message and polls for bot replies with a
// fixed delay between attempts. The first poll that yields any bot
// response wins; polls that fail or come back empty are retried until
// maxRetries is used up, at which point an *ExhaustedError carrying
// the send result is returned. A send failure is returned immediately
// with no polling.
func (s *Session) SendAndGetResponse(ctx context.Context, text string, wait time.Duration, maxRetries int) (*ExchangeResult, error) {
	sendResult, err := s.SendMessage(ctx, text)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := s.sleep(ctx, wait); err != nil {
			return nil, err
		}

		s.logger.Debug("polling for bot response", "attempt", attempt, "max_retries", maxRetries)

		getResult, err := s.GetActivities(ctx, "")
		if err != nil {
			// Poll failures burn an attempt but do not abort the loop.
			s.logger.Warn("poll failed", "attempt", attempt, "error", err)
			continue
		}

		if len(getResult.BotResponses) > 0 {
			s.logger.Info("bot response received",
				"attempt", attempt,
				"responses", len(getResult.BotResponses))
			return &ExchangeResult{
				MessageSent:  text,
				BotResponses: getResult.BotResponses,
				Attempts:     attempt,
				Send:         sendResult,
				Get:          getResult,
			}, nil
		}
	}

	s.logger.Warn("no bot response", "attempts", maxRetries)
	return nil, &ExhaustedError{
		MessageSent: text,
		Attempts:    maxRetries,
		Send:        sendResult,
	}
}

// Status returns a snapshot of the session state.
func (s *Session) Status() SessionStatus {
	status := SessionStatus{
		HasToken:       s.token != "",
		ConversationID: s.conversationID,
		Watermark:      s.watermark,
	}
	if status.HasToken {
		if remaining := s.tokenExpiresAt.Sub(s.now()); remaining > 0 {
			status.TokenRemaining = remaining
		}
	}
	return status
}

func (s *Session) newMessageActivity(text string) *Activity {
	return &Activity{
		ID:   uuid.NewString(),
		Type: "message",
		From: ChannelAccount{
			ID:   s.client.config.UserID,
			Name: s.client.config.UserName,
		},
		Text:      text,
		Locale:    s.client.config.Locale,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		ChannelID: "directline",
	}
}

// sleepContext blocks for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
