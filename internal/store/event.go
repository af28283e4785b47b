package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter manages the global monotonic sequence number shared across
// all event tables. Per-table keys can't order events across types, so every
// event takes its primary key from this one counter:
//
//   - Cross-type ordering (did the badge come before or after the answer?)
//   - Append-only guarantees (events are never reordered)
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val BIGINT NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT INTO global_sequence (id, next_val) VALUES (1, 1) ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo with the SQL builder.
type eventRepo struct {
	db  *sql.DB
	b   *entsql.DialectBuilder
	seq *sequenceCounter
}

// appendRow inserts one event row keyed by the next global sequence.
func (r *eventRepo) appendRow(ctx context.Context, table string, columns []string, values ...any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	cols := append([]string{"sequence", "occurred_at"}, columns...)
	vals := append([]any{seqNum, time.Now().UnixMilli()}, values...)
	query, args := r.b.Insert(table).Columns(cols...).Values(vals...).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	return r.appendRow(ctx, "answer_events",
		[]string{"learner_id", "mission_id", "question_id", "atom_id", "correct", "misconception", "mastery_before", "mastery_after"},
		data.LearnerID, data.MissionID, data.QuestionID, data.AtomID, data.Correct, data.Misconception, data.MasteryBefore, data.MasteryAfter,
	)
}

func (r *eventRepo) AppendBadgeEvent(ctx context.Context, data BadgeEventData) error {
	return r.appendRow(ctx, "badge_events",
		[]string{"learner_id", "badge_type", "reason"},
		data.LearnerID, data.BadgeType, data.Reason,
	)
}

func (r *eventRepo) AppendMissionEvent(ctx context.Context, data MissionEventData) error {
	return r.appendRow(ctx, "mission_events",
		[]string{"learner_id", "mission_id", "phase", "action", "score", "points"},
		data.LearnerID, data.MissionID, data.Phase, data.Action, data.Score, data.Points,
	)
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	return r.appendRow(ctx, "llm_request_events",
		[]string{"provider", "model", "purpose", "atom_id", "input_tokens", "output_tokens", "latency_ms", "success", "error_message"},
		data.Provider, data.Model, data.Purpose, data.AtomID, data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage,
	)
}

// selectEvents builds a newest-first query over one event table. An empty
// learnerID selects every row.
func (r *eventRepo) selectEvents(table, learnerID string, opts QueryOpts, columns ...string) (string, []any) {
	preds := []*entsql.Predicate{}
	if learnerID != "" {
		preds = append(preds, entsql.EQ("learner_id", learnerID))
	}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("occurred_at", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("occurred_at", opts.To.UnixMilli()))
	}

	sel := r.b.Select(append([]string{"sequence", "occurred_at"}, columns...)...).
		From(r.b.Table(table)).
		OrderBy(entsql.Desc("sequence"))
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	return sel.Query()
}

func (r *eventRepo) QueryAnswerEvents(ctx context.Context, learnerID string, opts QueryOpts) ([]AnswerEventRecord, error) {
	query, args := r.selectEvents("answer_events", learnerID, opts,
		"mission_id", "question_id", "atom_id", "correct", "misconception", "mastery_before", "mastery_after")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	defer rows.Close()

	var records []AnswerEventRecord
	for rows.Next() {
		rec := AnswerEventRecord{AnswerEventData: AnswerEventData{LearnerID: learnerID}}
		var at int64
		if err := rows.Scan(&rec.Sequence, &at, &rec.MissionID, &rec.QuestionID, &rec.AtomID,
			&rec.Correct, &rec.Misconception, &rec.MasteryBefore, &rec.MasteryAfter); err != nil {
			return nil, fmt.Errorf("scan answer event: %w", err)
		}
		rec.OccurredAt = time.UnixMilli(at).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *eventRepo) QueryBadgeEvents(ctx context.Context, learnerID string, opts QueryOpts) ([]BadgeEventRecord, error) {
	query, args := r.selectEvents("badge_events", learnerID, opts, "badge_type", "reason")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query badge events: %w", err)
	}
	defer rows.Close()

	var records []BadgeEventRecord
	for rows.Next() {
		rec := BadgeEventRecord{BadgeEventData: BadgeEventData{LearnerID: learnerID}}
		var at int64
		if err := rows.Scan(&rec.Sequence, &at, &rec.BadgeType, &rec.Reason); err != nil {
			return nil, fmt.Errorf("scan badge event: %w", err)
		}
		rec.OccurredAt = time.UnixMilli(at).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *eventRepo) QueryMissionEvents(ctx context.Context, learnerID string, opts QueryOpts) ([]MissionEventRecord, error) {
	query, args := r.selectEvents("mission_events", learnerID, opts, "mission_id", "phase", "action", "score", "points")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mission events: %w", err)
	}
	defer rows.Close()

	var records []MissionEventRecord
	for rows.Next() {
		rec := MissionEventRecord{MissionEventData: MissionEventData{LearnerID: learnerID}}
		var at int64
		if err := rows.Scan(&rec.Sequence, &at, &rec.MissionID, &rec.Phase, &rec.Action, &rec.Score, &rec.Points); err != nil {
			return nil, fmt.Errorf("scan mission event: %w", err)
		}
		rec.OccurredAt = time.UnixMilli(at).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error) {
	query, args := r.selectEvents("llm_request_events", "", opts,
		"provider", "model", "purpose", "atom_id", "input_tokens", "output_tokens", "latency_ms", "success", "error_message")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	defer rows.Close()

	var records []LLMRequestEventRecord
	for rows.Next() {
		var rec LLMRequestEventRecord
		var at int64
		if err := rows.Scan(&rec.Sequence, &at, &rec.Provider, &rec.Model, &rec.Purpose, &rec.AtomID,
			&rec.InputTokens, &rec.OutputTokens, &rec.LatencyMs, &rec.Success, &rec.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan llm event: %w", err)
		}
		rec.OccurredAt = time.UnixMilli(at).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}
