package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // occurred_at >= From
	To     time.Time // occurred_at <= To
}

// LearnerRecord is the durable per-learner document, stored as
// independently writable fields.
type LearnerRecord struct {
	ID        string
	Fields    map[string]json.RawMessage
	UpdatedAt time.Time
}

// Decode unmarshals one field into v. Returns false when the field is absent.
func (r *LearnerRecord) Decode(field string, v any) (bool, error) {
	raw, ok := r.Fields[field]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, err
	}
	return true, nil
}

// LearnerPatch maps field names to values. Each value is JSON-encoded
// and written independently; fields not named are left untouched.
type LearnerPatch map[string]any

// LearnerRepo is the durable learner record store.
type LearnerRepo interface {
	// Get returns the learner's record. A learner with no stored fields
	// yields an empty record, not an error.
	Get(ctx context.Context, learnerID string) (*LearnerRecord, error)

	// Put merges patch into the learner's record.
	Put(ctx context.Context, learnerID string, patch LearnerPatch) error
}

// AnswerEventData captures one answered question.
type AnswerEventData struct {
	LearnerID     string
	MissionID     string
	QuestionID    string
	AtomID        string
	Correct       bool
	Misconception string
	MasteryBefore float64
	MasteryAfter  float64
}

// AnswerEventRecord is a stored answer event.
type AnswerEventRecord struct {
	AnswerEventData
	Sequence   int64
	OccurredAt time.Time
}

// BadgeEventData captures a badge award.
type BadgeEventData struct {
	LearnerID string
	BadgeType string
	Reason    string
}

// BadgeEventRecord is a stored badge event.
type BadgeEventRecord struct {
	BadgeEventData
	Sequence   int64
	OccurredAt time.Time
}

// MissionEventData captures a mission status change.
type MissionEventData struct {
	LearnerID string
	MissionID string
	Phase     string
	Action    string // "started", "completed", "failed", "expired"
	Score     float64
	Points    int
}

// MissionEventRecord is a stored mission event.
type MissionEventRecord struct {
	MissionEventData
	Sequence   int64
	OccurredAt time.Time
}

// LLMRequestEventData captures a single LLM request.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	AtomID       string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	LLMRequestEventData
	Sequence   int64
	OccurredAt time.Time
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendBadgeEvent(ctx context.Context, data BadgeEventData) error
	AppendMissionEvent(ctx context.Context, data MissionEventData) error
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	QueryAnswerEvents(ctx context.Context, learnerID string, opts QueryOpts) ([]AnswerEventRecord, error)
	QueryBadgeEvents(ctx context.Context, learnerID string, opts QueryOpts) ([]BadgeEventRecord, error)
	QueryMissionEvents(ctx context.Context, learnerID string, opts QueryOpts) ([]MissionEventRecord, error)
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)
}
