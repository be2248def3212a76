package domain

import (
	"io"
	"time"
)

// Role identifies who produced an exchange.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// SourceMetadata carries provenance fields for a retrieved passage. The
// backend may attach arbitrary extra fields, so the map is kept open.
type SourceMetadata map[string]any

// SourceName returns the originating document name, or "" when absent.
func (m SourceMetadata) SourceName() string {
	v, _ := m["source"].(string)
	return v
}

// Page returns the page number when the backend reported one.
func (m SourceMetadata) Page() (int, bool) {
	// JSON numbers decode as float64
	v, ok := m["page"].(float64)
	return int(v), ok
}

// SourceRef is a retrieved passage with its relevance score and provenance.
// RelevanceScore is a similarity measure in [0,1], not a probability.
type SourceRef struct {
	ID             int            `json:"id"`
	Content        string         `json:"content"`
	Metadata       SourceMetadata `json:"metadata"`
	RelevanceScore float64        `json:"relevance_score"`
}

// Exchange is a single conversation turn. Assistant exchanges may carry the
// sources that justified the answer, in backend relevance order. Exchanges
// are never mutated after creation.
type Exchange struct {
	ID        string
	Role      Role
	Text      string
	Sources   []SourceRef
	CreatedAt time.Time
}

// QueryResult is the backend's answer to a question.
type QueryResult struct {
	Answer  string      `json:"answer"`
	Sources []SourceRef `json:"sources"`
	Success bool        `json:"success"`
}

// UploadResult reports the outcome of indexing one document. Success may be
// false with an explanatory Message; that is a backend refusal, not a
// transport failure.
type UploadResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
}

// CollectionStats is a read-only projection of backend collection state.
type CollectionStats struct {
	TotalDocuments int    `json:"total_documents"`
	CollectionName string `json:"collection_name"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
}

// ClearResult reports the outcome of clearing the backend collection.
type ClearResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Health is the backend's diagnostic self-report.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Gateway is the typed boundary to the remote RAG service. Implementations
// perform a single request/response cycle per call with no retries and no
// caching of response content.
type Gateway interface {
	Query(question string, topK int) (*QueryResult, error)
	Upload(filename string, file io.Reader) (*UploadResult, error)
	Stats() (*CollectionStats, error)
	ClearCollection() (*ClearResult, error)
	Health() (*Health, error)
}
