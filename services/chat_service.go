package services

import (
	"context"
	"fmt"
	"strings"

	"docchat-backend/internal/ai"
	"docchat-backend/internal/logger"
	"docchat-backend/internal/telemetry"
	"docchat-backend/utils"
)

const systemPromptPrefix = "You are a helpful assistant. Use the following excerpts from the user's uploaded documents as background information when answering:\n"

// ChatOptions carries the retrieval and provider tuning for chat requests.
type ChatOptions struct {
	TopK                   int
	MinSimilarity          float64
	MaxContextLength       int
	ProviderTimeoutSeconds int
}

// StreamEvent is one tick of a streaming chat. Response carries the full
// accumulated assistant text so far; Done marks successful termination,
// Err failed termination. The two are never set together.
type StreamEvent struct {
	Response string
	Done     bool
	Err      error
}

// ChatService turns conversation memory, optional document context and the
// new user message into provider calls, and keeps memory up to date.
type ChatService struct {
	sessions *SessionManager
	chat     ai.ChatProvider
	embedder ai.Embedder
	opts     ChatOptions
	metrics  *telemetry.Metrics
}

func NewChatService(sessions *SessionManager, chat ai.ChatProvider, embedder ai.Embedder, opts ChatOptions, metrics *telemetry.Metrics) *ChatService {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.MinSimilarity == 0 {
		opts.MinSimilarity = 0.3
	}
	if opts.MaxContextLength <= 0 {
		opts.MaxContextLength = 3000
	}
	return &ChatService{
		sessions: sessions,
		chat:     chat,
		embedder: embedder,
		opts:     opts,
		metrics:  metrics,
	}
}

// Chat runs one blocking exchange. Memory is updated only after the
// provider returns successfully.
func (s *ChatService) Chat(ctx context.Context, userID, message string, useDocuments bool) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	messages := s.buildMessages(ctx, userID, message, useDocuments)

	pctx, cancel := utils.WithProviderTimeout(ctx, s.opts.ProviderTimeoutSeconds)
	defer cancel()

	reply, err := s.chat.Complete(pctx, messages)
	if err != nil {
		logger.Error("chat provider call failed", "user_id", userID, "operation", "chat", "error", err)
		return "", fmt.Errorf("provider call failed: %w", err)
	}

	s.sessions.AppendExchange(userID, message, reply)
	return reply, nil
}

// ChatStream runs one streaming exchange. Validation errors are returned
// synchronously; afterwards all outcomes arrive on the returned channel,
// which is closed after the terminal event. Consumers cancel by cancelling
// ctx; the provider stream stops with them.
func (s *ChatService) ChatStream(ctx context.Context, userID, message string, useDocuments bool) (<-chan StreamEvent, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	events := make(chan StreamEvent, 8)
	go func() {
		defer close(events)

		emit := func(ev StreamEvent) error {
			select {
			case events <- ev:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		messages := s.buildMessages(ctx, userID, message, useDocuments)

		pctx, cancel := utils.WithProviderTimeout(ctx, s.opts.ProviderTimeoutSeconds)
		defer cancel()

		var accumulated strings.Builder
		reply, err := s.chat.StreamComplete(pctx, messages, func(delta string) error {
			accumulated.WriteString(delta)
			// Each tick re-sends the full text accumulated so far, not
			// just the newest delta; clients render the growing string.
			return emit(StreamEvent{Response: accumulated.String()})
		})
		if err != nil {
			logger.Error("chat provider stream failed", "user_id", userID, "operation", "chat_stream", "error", err)
			_ = emit(StreamEvent{Err: err})
			return
		}

		s.sessions.AppendExchange(userID, message, reply)
		_ = emit(StreamEvent{Done: true})
	}()
	return events, nil
}

// BuildQueryContext runs the context strategy chain for an explicit search
// query. An empty result means no relevant content; lookup failures degrade
// to empty rather than erroring.
func (s *ChatService) BuildQueryContext(ctx context.Context, userID, query string) string {
	return s.lookupContext(ctx, userID, query)
}

// buildMessages assembles [system context?] + memory turns + the new user
// turn. Context lookup failures never fail the chat; they degrade to no
// context.
func (s *ChatService) buildMessages(ctx context.Context, userID, message string, useDocuments bool) []ai.Message {
	var messages []ai.Message
	if useDocuments {
		if contextBlock := s.lookupContext(ctx, userID, message); contextBlock != "" {
			messages = append(messages, ai.Message{
				Role:    ai.RoleSystem,
				Content: systemPromptPrefix + contextBlock,
			})
		}
	}
	for _, turn := range s.sessions.History(userID) {
		messages = append(messages, ai.Message{Role: turn.Role, Content: turn.Content})
	}
	return append(messages, ai.Message{Role: ai.RoleUser, Content: message})
}

// lookupContext tries each context strategy in priority order until one
// yields content: semantic retrieval first, whole documents second, none
// last.
func (s *ChatService) lookupContext(ctx context.Context, userID, query string) string {
	strategies := []struct {
		name string
		fn   func(context.Context, string, string) (string, error)
	}{
		{"semantic", s.semanticContext},
		{"documents", s.documentContext},
	}

	for _, strategy := range strategies {
		text, err := strategy.fn(ctx, userID, query)
		if err != nil {
			logger.Warn("context lookup failed, trying next strategy",
				"user_id", userID, "strategy", strategy.name, "error", err)
			continue
		}
		if text != "" {
			if s.metrics != nil {
				s.metrics.RecordContextLookup(strategy.name)
			}
			return text
		}
	}
	if s.metrics != nil {
		s.metrics.RecordContextLookup("none")
	}
	return ""
}

func (s *ChatService) semanticContext(ctx context.Context, userID, query string) (string, error) {
	chunks := s.sessions.AllChunks(userID)
	if len(chunks) == 0 {
		return "", nil
	}

	pctx, cancel := utils.WithProviderTimeout(ctx, s.opts.ProviderTimeoutSeconds)
	defer cancel()

	vectors, err := s.embedder.EmbedTexts(pctx, []string{query}, ai.EmbedQuery)
	if err != nil {
		return "", fmt.Errorf("query embedding failed: %w", err)
	}

	ranked := RankChunks(vectors[0], chunks, s.opts.TopK, s.opts.MinSimilarity)
	return BuildSemanticContext(ranked, s.opts.MaxContextLength), nil
}

func (s *ChatService) documentContext(_ context.Context, userID, _ string) (string, error) {
	return BuildDocumentContext(s.sessions.Documents(userID), s.opts.MaxContextLength), nil
}
