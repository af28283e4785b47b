package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// learnerRepo stores learner records one row per field so that a patch
// never overwrites sibling fields.
type learnerRepo struct {
	db *sql.DB
	b  *entsql.DialectBuilder
}

func (r *learnerRepo) Get(ctx context.Context, learnerID string) (*LearnerRecord, error) {
	query, args := r.b.Select("field", "value", "updated_at").
		From(r.b.Table("learner_fields")).
		Where(entsql.EQ("learner_id", learnerID)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query learner %s: %w", learnerID, err)
	}
	defer rows.Close()

	rec := &LearnerRecord{ID: learnerID, Fields: make(map[string]json.RawMessage)}
	var latest int64
	for rows.Next() {
		var field, value string
		var updated int64
		if err := rows.Scan(&field, &value, &updated); err != nil {
			return nil, fmt.Errorf("scan learner field: %w", err)
		}
		rec.Fields[field] = json.RawMessage(value)
		if updated > latest {
			latest = updated
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate learner fields: %w", err)
	}
	if latest > 0 {
		rec.UpdatedAt = time.UnixMilli(latest).UTC()
	}
	return rec, nil
}

func (r *learnerRepo) Put(ctx context.Context, learnerID string, patch LearnerPatch) error {
	if len(patch) == 0 {
		return nil
	}

	now := time.Now().UnixMilli()
	insert := r.b.Insert("learner_fields").Columns("learner_id", "field", "value", "updated_at")
	for field, v := range patch {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal field %s: %w", field, err)
		}
		insert = insert.Values(learnerID, field, string(b), now)
	}
	query, args := insert.OnConflict(
		entsql.ConflictColumns("learner_id", "field"),
		entsql.ResolveWithNewValues(),
	).Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put learner %s: %w", learnerID, err)
	}
	return nil
}
