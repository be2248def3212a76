package session

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ragchat/internal/domain"
)

// FallbackAnswer is appended verbatim when a query fails, so every user turn
// still gets an assistant turn.
const FallbackAnswer = "Sorry, there was an error processing your request. Please make sure the backend is running and try again."

var (
	// ErrBusy rejects a submission while a query is already in flight.
	ErrBusy = errors.New("a query is already in flight")
	// ErrEmptyQuestion rejects a submission whose text is blank once trimmed.
	ErrEmptyQuestion = errors.New("question is empty")
)

// Conversation is an append-only log of exchanges with a single-flight
// pending flag. It is a two-state machine: idle (pending=false) and
// awaiting-response (pending=true). Exchanges are appended in the order
// their operations were issued and resolved; with at most one request in
// flight, log order equals temporal order.
type Conversation struct {
	exchanges []domain.Exchange
	pending   bool
	log       *zap.Logger
}

func NewConversation(log *zap.Logger) *Conversation {
	if log == nil {
		log = zap.NewNop()
	}
	return &Conversation{log: log}
}

// Submit appends the user exchange and marks the session pending. The text
// is stored as submitted; trimming happens only for the emptiness check.
// The caller issues the Gateway query after a successful Submit and feeds
// the outcome back through ResolveAnswer or ResolveFailure.
func (c *Conversation) Submit(text string) (domain.Exchange, error) {
	if c.pending {
		return domain.Exchange{}, ErrBusy
	}
	if strings.TrimSpace(text) == "" {
		return domain.Exchange{}, ErrEmptyQuestion
	}
	ex := domain.Exchange{
		ID:        uuid.NewString(),
		Role:      domain.RoleUser,
		Text:      text,
		CreatedAt: time.Now(),
	}
	c.exchanges = append(c.exchanges, ex)
	c.pending = true
	return ex, nil
}

// ResolveAnswer appends the assistant exchange for the in-flight query and
// returns the session to idle. Sources keep the backend's relevance order;
// an empty list is stored as absent.
func (c *Conversation) ResolveAnswer(answer string, sources []domain.SourceRef) domain.Exchange {
	if len(sources) == 0 {
		sources = nil
	}
	ex := domain.Exchange{
		ID:        uuid.NewString(),
		Role:      domain.RoleAssistant,
		Text:      answer,
		Sources:   sources,
		CreatedAt: time.Now(),
	}
	c.exchanges = append(c.exchanges, ex)
	c.pending = false
	return ex
}

// ResolveFailure appends a synthetic assistant exchange with the fixed
// fallback text and returns the session to idle. The error is logged for
// diagnostics and swallowed here; it never propagates past this boundary.
func (c *Conversation) ResolveFailure(err error) domain.Exchange {
	c.log.Warn("query failed", zap.Error(err))
	return c.ResolveAnswer(FallbackAnswer, nil)
}

// Pending reports whether a query is in flight.
func (c *Conversation) Pending() bool { return c.pending }

// Exchanges returns the log in append order.
func (c *Conversation) Exchanges() []domain.Exchange { return c.exchanges }

func (c *Conversation) Len() int { return len(c.exchanges) }
