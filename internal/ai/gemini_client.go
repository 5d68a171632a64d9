package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docchat-backend/internal/logger"
	"docchat-backend/internal/telemetry"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

// GeminiClient implements ChatProvider and Embedder on the Google
// Generative AI API, behind a circuit breaker and a client-side rate limiter.
type GeminiClient struct {
	client         *genai.Client
	model          string
	embeddingModel string
	breaker        *gobreaker.CircuitBreaker
	rateLimiter    *rate.Limiter
	metrics        *telemetry.Metrics
}

type RateLimits struct {
	RPM int // Requests per minute
}

func NewGeminiClient(ctx context.Context, apiKey, model, embeddingModel, tier string, metrics *telemetry.Metrics) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	limits := getRateLimits(tier)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			if metrics != nil {
				metrics.RecordCircuitBreakerState(name, to.String())
			}
		},
	})

	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(limits.RPM)*0.9/60.0), maxInt(limits.RPM/10, 1))

	return &GeminiClient{
		client:         client,
		model:          model,
		embeddingModel: embeddingModel,
		breaker:        breaker,
		rateLimiter:    rateLimiter,
		metrics:        metrics,
	}, nil
}

func getRateLimits(tier string) RateLimits {
	switch tier {
	case "free":
		return RateLimits{RPM: 10}
	case "tier1":
		return RateLimits{RPM: 1000}
	case "tier2":
		return RateLimits{RPM: 2000}
	default:
		return RateLimits{RPM: 10}
	}
}

// Close releases the underlying API client.
func (gc *GeminiClient) Close() error {
	return gc.client.Close()
}

// Complete sends the conversation and blocks for the full reply.
func (gc *GeminiClient) Complete(ctx context.Context, messages []Message) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("gemini.model", gc.model),
		attribute.Int("gemini.messages", len(messages)),
	)

	session, last, err := gc.buildChat(messages)
	if err != nil {
		return "", err
	}

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", err
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		resp, err := session.SendMessage(ctx, genai.Text(last))
		if err != nil {
			return nil, err
		}
		gc.recordUsage(resp)
		return responseText(resp), nil
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := result.(string)
	if text == "" {
		return "", errors.New("empty response from gemini")
	}
	return text, nil
}

// StreamComplete consumes the response incrementally, invoking onDelta per
// piece. An onDelta error (client gone) stops consumption without counting
// as a provider failure on the breaker.
func (gc *GeminiClient) StreamComplete(ctx context.Context, messages []Message, onDelta func(delta string) error) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.stream_complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("gemini.model", gc.model),
		attribute.Int("gemini.messages", len(messages)),
	)

	session, last, err := gc.buildChat(messages)
	if err != nil {
		return "", err
	}

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", err
	}

	var deltaErr error
	result, err := gc.breaker.Execute(func() (interface{}, error) {
		iter := session.SendMessageStream(ctx, genai.Text(last))
		var full strings.Builder
		for {
			resp, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, err
			}
			gc.recordUsage(resp)
			delta := responseText(resp)
			if delta == "" {
				continue
			}
			full.WriteString(delta)
			if cbErr := onDelta(delta); cbErr != nil {
				deltaErr = cbErr
				break
			}
		}
		return full.String(), nil
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return "", fmt.Errorf("gemini stream failed: %w", err)
	}
	if deltaErr != nil {
		span.SetAttributes(attribute.Bool("gemini.client_disconnected", true))
		return result.(string), deltaErr
	}
	return result.(string), nil
}

// buildChat maps the role-tagged conversation onto a genai chat session:
// a leading system message becomes the system instruction, prior turns
// become history, and the final user message is returned for sending.
func (gc *GeminiClient) buildChat(messages []Message) (*genai.ChatSession, string, error) {
	if len(messages) == 0 {
		return nil, "", errors.New("no messages to send")
	}

	model := gc.client.GenerativeModel(gc.model)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(2048)

	rest := messages
	if rest[0].Role == RoleSystem {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(rest[0].Content)},
		}
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return nil, "", errors.New("no user message to send")
	}

	last := rest[len(rest)-1]
	if last.Role != RoleUser {
		return nil, "", fmt.Errorf("conversation must end with a user message, got %q", last.Role)
	}

	session := model.StartChat()
	for _, m := range rest[:len(rest)-1] {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		session.History = append(session.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return session, last.Content, nil
}

func (gc *GeminiClient) recordUsage(resp *genai.GenerateContentResponse) {
	if gc.metrics == nil || resp == nil || resp.UsageMetadata == nil {
		return
	}
	gc.metrics.RecordTokensUsed(int64(resp.UsageMetadata.TotalTokenCount), gc.model)
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
