package services

import (
	"strings"
	"sync"

	"docchat-backend/models"
)

const previewLength = 200

// SessionManager owns all per-user state: the bounded conversation window
// and the documents with their embedded chunks. Everything lives in process;
// mutation of a user's state is serialized on that user's lock so concurrent
// requests for the same user cannot lose updates.
type SessionManager struct {
	mu       sync.Mutex
	maxTurns int
	users    map[string]*userSession
}

type userSession struct {
	mu       sync.Mutex
	turns    []models.ConversationTurn
	docs     map[string]*storedDocument
	docOrder []string
}

type storedDocument struct {
	doc    models.Document
	chunks []models.Chunk
}

func NewSessionManager(maxTurns int) *SessionManager {
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &SessionManager{
		maxTurns: maxTurns,
		users:    make(map[string]*userSession),
	}
}

func (sm *SessionManager) session(userID string) *userSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.users[userID]
	if !ok {
		s = &userSession{docs: make(map[string]*storedDocument)}
		sm.users[userID] = s
	}
	return s
}

// History returns a copy of the user's conversation window, oldest first.
func (sm *SessionManager) History(userID string) []models.ConversationTurn {
	s := sm.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ConversationTurn, len(s.turns))
	copy(out, s.turns)
	return out
}

// AppendExchange records one user/assistant pair and trims the window to the
// configured cap, oldest turns first.
func (sm *SessionManager) AppendExchange(userID, userMessage, assistantReply string) {
	s := sm.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns,
		models.ConversationTurn{Role: models.RoleUser, Content: userMessage},
		models.ConversationTurn{Role: models.RoleAssistant, Content: assistantReply},
	)
	if len(s.turns) > sm.maxTurns {
		s.turns = append([]models.ConversationTurn(nil), s.turns[len(s.turns)-sm.maxTurns:]...)
	}
}

// StoreDocument stores a document and its chunks as one unit. Last write
// wins on a duplicate document id.
func (sm *SessionManager) StoreDocument(userID string, doc models.Document, chunks []models.Chunk) {
	s := sm.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[doc.ID]; !exists {
		s.docOrder = append(s.docOrder, doc.ID)
	}
	s.docs[doc.ID] = &storedDocument{doc: doc, chunks: chunks}
}

// DeleteDocument removes the document and all its chunks. A reader holding
// the user lock sees the document fully present or fully absent.
func (sm *SessionManager) DeleteDocument(userID, documentID string) error {
	s := sm.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[documentID]; !ok {
		return ErrDocumentNotFound
	}
	delete(s.docs, documentID)
	for i, id := range s.docOrder {
		if id == documentID {
			s.docOrder = append(s.docOrder[:i], s.docOrder[i+1:]...)
			break
		}
	}
	return nil
}

// Documents returns the user's documents in upload order.
func (sm *SessionManager) Documents(userID string) []models.Document {
	s := sm.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Document, 0, len(s.docOrder))
	for _, id := range s.docOrder {
		out = append(out, s.docs[id].doc)
	}
	return out
}

// DocumentSummaries returns the client-facing document list in upload order.
func (sm *SessionManager) DocumentSummaries(userID string) []models.DocumentSummary {
	s := sm.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DocumentSummary, 0, len(s.docOrder))
	for _, id := range s.docOrder {
		out = append(out, summarize(s.docs[id]))
	}
	return out
}

// AllChunks returns every embedded chunk the user has, in upload order then
// chunk order, annotated with document metadata for ranking.
func (sm *SessionManager) AllChunks(userID string) []ChunkRef {
	s := sm.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ChunkRef
	for _, id := range s.docOrder {
		stored := s.docs[id]
		for _, c := range stored.chunks {
			out = append(out, ChunkRef{
				DocumentID: stored.doc.ID,
				Filename:   stored.doc.Filename,
				Index:      c.Index,
				Text:       c.Text,
				Vector:     c.Embedding,
			})
		}
	}
	return out
}

// UserState assembles the introspection snapshot for debugging.
func (sm *SessionManager) UserState(userID string) models.UserState {
	s := sm.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := make([]models.ConversationTurn, len(s.turns))
	copy(turns, s.turns)

	chunkCount := 0
	docs := make([]models.DocumentSummary, 0, len(s.docOrder))
	for _, id := range s.docOrder {
		stored := s.docs[id]
		chunkCount += len(stored.chunks)
		docs = append(docs, summarize(stored))
	}

	return models.UserState{
		UserID:        userID,
		Conversation:  turns,
		DocumentCount: len(docs),
		ChunkCount:    chunkCount,
		Documents:     docs,
	}
}

func summarize(stored *storedDocument) models.DocumentSummary {
	preview := stored.doc.Text
	if len(preview) > previewLength {
		preview = strings.TrimSpace(preview[:previewLength]) + "..."
	}
	return models.DocumentSummary{
		ID:            stored.doc.ID,
		Filename:      stored.doc.Filename,
		UploadedAt:    stored.doc.UploadedAt,
		ContentLength: stored.doc.ContentLength,
		ChunkCount:    len(stored.chunks),
		Preview:       preview,
	}
}
