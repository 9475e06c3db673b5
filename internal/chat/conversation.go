// Package chat drives one conversation with the assistant: it shapes
// the outgoing payload for the active mode, keeps the ordered
// transcript, and turns every failure into an error entry instead of a
// fault.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ggokuldas06/LegalAI/internal/api"
)

// ErrNoDocument is the local precondition failure for modes that need a
// selected document. It never reaches the network.
var ErrNoDocument = errors.New("Please select a document first")

// Role tags a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// Message is one transcript entry. Assistant entries carry the server's
// auxiliary fields verbatim.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	Processed json.RawMessage `json:"processed,omitempty"`
	Citations json.RawMessage `json:"citations,omitempty"`
	TokensIn  int             `json:"tokens_in,omitempty"`
	TokensOut int             `json:"tokens_out,omitempty"`
	LatencyMS int             `json:"latency_ms,omitempty"`
	ChatLogID int64           `json:"chat_log_id,omitempty"`
}

// DocumentRef identifies the selected document.
type DocumentRef struct {
	ID    int64
	Title string
}

// Filters scope mode C retrieval.
type Filters struct {
	Jurisdiction string   `json:"jurisdiction"`
	YearFrom     *int     `json:"year_from"`
	YearTo       *int     `json:"year_to"`
	Include      []string `json:"include"`
	Exclude      []string `json:"exclude"`
}

// FilterPatch is a partial filter update; nil fields are left alone.
type FilterPatch struct {
	Jurisdiction *string
	YearFrom     *int
	YearTo       *int
	Include      []string
	Exclude      []string
}

// Exchange is one prompt/response pair handed to the archive.
type Exchange struct {
	Mode      Mode
	Prompt    string
	Response  string
	TokensIn  int
	TokensOut int
	LatencyMS int
	ChatLogID int64
	CreatedAt time.Time
}

// Recorder archives completed exchanges. Recording failures never fail
// the conversation.
type Recorder interface {
	Record(Exchange) error
}

// Conversation is the driver for one chat. The transcript is guarded by
// a mutex so overlapping sends append atomically, but sends themselves
// are not serialized against each other; the busy flag exists for
// collaborators to disable duplicate submission, not as a lock.
type Conversation struct {
	api     *api.Client
	log     *zap.Logger
	archive Recorder

	busy atomic.Bool

	mu       sync.Mutex
	mode     Mode
	doc      *DocumentRef
	filters  Filters
	messages []Message
	lastErr  string
}

// New creates a conversation in Summarizer mode. archive may be nil.
func New(client *api.Client, archive Recorder, log *zap.Logger) *Conversation {
	if log == nil {
		log = zap.NewNop()
	}
	return &Conversation{
		api:     client,
		log:     log,
		archive: archive,
		mode:    ModeSummarizer,
		// Empty slices, not nil, so mode C payloads carry [] the way
		// the backend expects.
		filters: Filters{Include: []string{}, Exclude: []string{}},
	}
}

// Mode returns the active mode.
func (c *Conversation) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches the task type and starts a fresh conversation: the
// transcript and last error are cleared before any network activity.
func (c *Conversation) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
	c.messages = nil
	c.lastErr = ""
}

// Document returns the selected document, or nil.
func (c *Conversation) Document() *DocumentRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc
}

// SetDocument selects (or with nil, deselects) the working document.
// Only the next call's payload is affected.
func (c *Conversation) SetDocument(doc *DocumentRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc = doc
}

// Filters returns a copy of the current filter set.
func (c *Conversation) Filters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// SetFilters merges the patch into the current filters. Fields the
// patch leaves nil keep their value; it is never a full replace.
func (c *Conversation) SetFilters(patch FilterPatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if patch.Jurisdiction != nil {
		c.filters.Jurisdiction = *patch.Jurisdiction
	}
	if patch.YearFrom != nil {
		c.filters.YearFrom = patch.YearFrom
	}
	if patch.YearTo != nil {
		c.filters.YearTo = patch.YearTo
	}
	if patch.Include != nil {
		c.filters.Include = patch.Include
	}
	if patch.Exclude != nil {
		c.filters.Exclude = patch.Exclude
	}
}

// Messages returns a snapshot of the transcript in creation order.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// LastError returns the most recent send failure's user-facing text.
func (c *Conversation) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Busy reports whether a send is in flight.
func (c *Conversation) Busy() bool { return c.busy.Load() }

// ClearMessages wipes the transcript and last error.
func (c *Conversation) ClearMessages() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.lastErr = ""
}

// RemoveMessage deletes the entry at index i. Out-of-range indexes are
// ignored.
func (c *Conversation) RemoveMessage(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.messages) {
		return
	}
	c.messages = append(c.messages[:i], c.messages[i+1:]...)
}

// payload is the POST /chat request body.
type payload struct {
	Mode     Mode           `json:"mode"`
	Message  string         `json:"message"`
	Settings map[string]any `json:"settings"`
	DocID    int64          `json:"doc_id,omitempty"`
	Filters  *Filters       `json:"filters,omitempty"`
}

// chatData is the POST /chat response body.
type chatData struct {
	Response  string          `json:"response"`
	Processed json.RawMessage `json:"processed"`
	Citations json.RawMessage `json:"citations"`
	TokensIn  int             `json:"tokens_in"`
	TokensOut int             `json:"tokens_out"`
	LatencyMS int             `json:"latency_ms"`
	ChatLogID int64           `json:"chat_log_id"`
}

// SendMessage sends one user message. The user entry is appended before
// the network call so it stays visible even when the call fails. On
// success the assistant entry carries the server's auxiliary fields; on
// any failure an error entry is appended and the same text is kept as
// LastError. The returned error's message is always user-facing.
func (c *Conversation) SendMessage(ctx context.Context, text string, settings map[string]any) (*Message, error) {
	c.busy.Store(true)
	defer c.busy.Store(false)

	if settings == nil {
		settings = map[string]any{}
	}

	c.mu.Lock()
	c.lastErr = ""
	c.messages = append(c.messages, Message{
		Role:      RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})

	mode := c.mode
	body := payload{Mode: mode, Message: text, Settings: settings}
	switch {
	case mode.RequiresDocument():
		if c.doc == nil {
			c.failLocked(ErrNoDocument.Error())
			c.mu.Unlock()
			return nil, ErrNoDocument
		}
		body.DocID = c.doc.ID
	case mode == ModeCaseLaw:
		f := c.filters
		body.Filters = &f
	}
	c.mu.Unlock()

	var data chatData
	if err := c.api.Do(ctx, http.MethodPost, "/chat", body, &data); err != nil {
		msg := userFacing(err)
		c.mu.Lock()
		c.failLocked(msg)
		c.mu.Unlock()
		c.log.Warn("chat request failed", zap.String("mode", string(mode)), zap.Error(err))
		return nil, err
	}

	assistant := Message{
		Role:      RoleAssistant,
		Content:   data.Response,
		Timestamp: time.Now(),
		Processed: data.Processed,
		Citations: data.Citations,
		TokensIn:  data.TokensIn,
		TokensOut: data.TokensOut,
		LatencyMS: data.LatencyMS,
		ChatLogID: data.ChatLogID,
	}
	c.mu.Lock()
	c.messages = append(c.messages, assistant)
	c.mu.Unlock()

	if c.archive != nil {
		ex := Exchange{
			Mode:      mode,
			Prompt:    text,
			Response:  data.Response,
			TokensIn:  data.TokensIn,
			TokensOut: data.TokensOut,
			LatencyMS: data.LatencyMS,
			ChatLogID: data.ChatLogID,
			CreatedAt: assistant.Timestamp,
		}
		if err := c.archive.Record(ex); err != nil {
			c.log.Warn("archiving exchange failed", zap.Error(err))
		}
	}
	return &assistant, nil
}

// failLocked records a failed send: error entry + last error. Callers
// hold c.mu.
func (c *Conversation) failLocked(msg string) {
	c.lastErr = msg
	c.messages = append(c.messages, Message{
		Role:      RoleError,
		Content:   msg,
		Timestamp: time.Now(),
	})
}

// userFacing extracts the displayable text from a pipeline error.
func userFacing(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, api.ErrSessionExpired) {
		return "Your session has expired. Please log in again."
	}
	return err.Error()
}
