package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"supportchat/internal/models"
	"supportchat/internal/transcript"
)

// ErrorReplyPrefix starts the assistant entry recorded when the relay fails.
const ErrorReplyPrefix = "I apologize, but I encountered an error: "

// Relay forwards one user message to the flow and returns its reply text.
type Relay interface {
	Send(ctx context.Context, message string) (string, error)
}

// Service runs chat turns against a session's transcript.
type Service struct {
	relay  Relay
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(relay Relay, logger zerolog.Logger) *Service {
	return &Service{
		relay:  relay,
		logger: logger.With().Str("component", "chat").Logger(),
		now:    time.Now,
	}
}

// Submit records text as a user turn, relays it and records the assistant turn. A failed relay
// call is recorded as an apology and is not returned as an error; only transcript failures are.
func (s *Service) Submit(ctx context.Context, store transcript.Store, text string) (models.Message, error) {
	userMsg := models.Message{Role: models.RoleUser, Content: text}
	if err := store.Append(ctx, userMsg); err != nil {
		return models.Message{}, fmt.Errorf("record user message: %w", err)
	}

	start := s.now()
	reply, err := s.relay.Send(ctx, text)
	elapsed := s.now().Sub(start)
	if err != nil {
		s.logger.Warn().Err(err).Dur("elapsed", elapsed).Msg("relay failed")
		reply = ErrorReply(err)
	} else {
		s.logger.Info().Dur("elapsed", elapsed).Int("reply_len", len(reply)).Msg("relay answered")
	}

	// The reply is recorded even when ctx ended during the relay call.
	aiMsg := models.Message{Role: models.RoleAssistant, Content: reply}
	if err := store.Append(context.WithoutCancel(ctx), aiMsg); err != nil {
		return models.Message{}, fmt.Errorf("record assistant message: %w", err)
	}
	return aiMsg, nil
}

// History returns the transcript in order.
func (s *Service) History(ctx context.Context, store transcript.Store) ([]models.Message, error) {
	return store.All(ctx)
}

// Clear empties the transcript.
func (s *Service) Clear(ctx context.Context, store transcript.Store) error {
	if err := store.Clear(ctx); err != nil {
		return err
	}
	s.logger.Debug().Msg("transcript cleared")
	return nil
}

// ErrorReply is the assistant text recorded for a failed relay call.
func ErrorReply(err error) string {
	return ErrorReplyPrefix + err.Error()
}
