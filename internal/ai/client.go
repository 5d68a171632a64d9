package ai

import "context"

// Message roles as they appear in provider-bound conversations.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in a provider-bound conversation.
type Message struct {
	Role    string
	Content string
}

// ChatProvider is the hosted LLM chat contract. StreamComplete invokes
// onDelta for every incremental piece of text and returns the full reply;
// an error returned by onDelta stops consumption.
type ChatProvider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	StreamComplete(ctx context.Context, messages []Message, onDelta func(delta string) error) (string, error)
}

// EmbeddingPurpose distinguishes indexing-time from query-time embeddings.
// Providers may produce different vectors for the two.
type EmbeddingPurpose string

const (
	EmbedDocument EmbeddingPurpose = "document"
	EmbedQuery    EmbeddingPurpose = "query"
)

// Embedder returns one fixed-dimension vector per input string.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string, purpose EmbeddingPurpose) ([][]float32, error)
}
