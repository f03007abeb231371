// Package chat composes assistant replies from the retrieved context.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mindrecall/internal/domain"
	"github.com/kailas-cloud/mindrecall/internal/metrics"
)

const (
	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 20 * time.Second

	// FallbackReply is returned whenever generation fails or produces nothing.
	FallbackReply = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."
)

const promptTemplate = "You are a mental health assistant. Use the following context to respond helpfully:\n" +
	"---\n%s\n---\nUser: %s\nAssistant:"

// Retriever returns the context passages for a user's message.
type Retriever interface {
	RetrieveContext(ctx context.Context, userID, query string) []string
}

// Completer generates text for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service answers chat messages.
type Service struct {
	retriever Retriever
	completer Completer
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a chat service. completer may be nil; every reply is then the fallback.
func New(retriever Retriever, completer Completer, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		retriever: retriever,
		completer: completer,
		timeout:   timeout,
		logger:    logger.With(zap.String("component", "chat")),
	}
}

// Reply answers message using the user's retrieved context.
func (s *Service) Reply(ctx context.Context, userID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	passages := s.retriever.RetrieveContext(ctx, userID, message)
	prompt := BuildPrompt(passages, message)

	if s.completer == nil {
		return s.fallback(userID, domain.ErrCompletionProviderError), nil
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.completer.Complete(cctx, prompt)
	if err != nil {
		return s.fallback(userID, err), nil
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return s.fallback(userID, fmt.Errorf("%w: empty answer", domain.ErrCompletionProviderError)), nil
	}

	metrics.ChatRepliesTotal.WithLabelValues("generated").Inc()
	return answer, nil
}

// BuildPrompt renders the assistant prompt; passages are joined one per line.
func BuildPrompt(passages []string, message string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(passages, "\n"), message)
}

func (s *Service) fallback(userID string, reason error) string {
	metrics.ChatRepliesTotal.WithLabelValues("fallback").Inc()
	s.logger.Warn("Chat reply fell back", zap.String("user_id", userID), zap.Error(reason))
	return FallbackReply
}
