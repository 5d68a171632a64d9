package models

// Turn roles. Appends always come in user/assistant pairs.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one message in a user's bounded conversation window.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	UserID       string `json:"user_id"`
	Message      string `json:"message"`
	UseDocuments bool   `json:"use_documents"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type SearchRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
}

type SearchResponse struct {
	Query         string `json:"query"`
	ContextLength int    `json:"context_length"`
	Context       string `json:"context"`
	HasResults    bool   `json:"has_results"`
}

type DeleteDocumentRequest struct {
	UserID     string `json:"user_id"`
	DocumentID string `json:"document_id"`
}

// UserState is the introspection snapshot served by /debug/user-state.
type UserState struct {
	UserID        string             `json:"user_id"`
	Conversation  []ConversationTurn `json:"conversation"`
	DocumentCount int                `json:"document_count"`
	ChunkCount    int                `json:"chunk_count"`
	Documents     []DocumentSummary  `json:"documents"`
}
