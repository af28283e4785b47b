package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/saideep-g/blue-ninja/internal/content"
)

// ContentRepo is a content.Source over the content_bundles and
// content_items tables. Items are stored as their JSON encoding.
type ContentRepo struct {
	db *sql.DB
	b  *entsql.DialectBuilder
}

var _ content.Source = (*ContentRepo)(nil)

// ImportBundle replaces a bundle and its items in one transaction.
func (r *ContentRepo) ImportBundle(ctx context.Context, bf *content.BundleFile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	b := bf.Bundle
	query, args := r.b.Insert("content_bundles").
		Columns("id", "subject", "grade", "title").
		Values(b.ID, b.Subject, b.Grade, b.Title).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert bundle %s: %w", b.ID, err)
	}

	query, args = r.b.Delete("content_items").Where(entsql.EQ("bundle_id", b.ID)).Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear bundle %s: %w", b.ID, err)
	}

	if len(bf.Items) > 0 {
		ins := r.b.Insert("content_items").
			Columns("id", "bundle_id", "position", "atom_id", "template", "subject", "grade", "body").
			OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
		for i, it := range bf.Items {
			it.BundleID = b.ID
			body, err := json.Marshal(it)
			if err != nil {
				return fmt.Errorf("encode item %s: %w", it.ID, err)
			}
			ins.Values(it.ID, b.ID, i, it.AtomID, string(it.Template), it.Subject, it.Grade, string(body))
		}
		query, args = ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert items of %s: %w", b.ID, err)
		}
	}

	return tx.Commit()
}

func (r *ContentRepo) ListBundles(ctx context.Context, subject string, grade int) ([]content.Bundle, error) {
	t := r.b.Table("content_bundles")
	pred := entsql.EQ(t.C("subject"), subject)
	if grade != 0 {
		pred = entsql.And(pred, entsql.EQ(t.C("grade"), grade))
	}
	query, args := r.b.Select(t.C("id"), t.C("subject"), t.C("grade"), t.C("title")).
		From(t).
		Where(pred).
		OrderBy(t.C("id")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	defer rows.Close()

	var out []content.Bundle
	for rows.Next() {
		var b content.Bundle
		if err := rows.Scan(&b.ID, &b.Subject, &b.Grade, &b.Title); err != nil {
			return nil, fmt.Errorf("scan bundle: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		n, err := r.countItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].ItemCount = n
	}
	return out, nil
}

func (r *ContentRepo) countItems(ctx context.Context, bundleID string) (int, error) {
	query, args := r.b.Select(entsql.Count("*")).
		From(r.b.Table("content_items")).
		Where(entsql.EQ("bundle_id", bundleID)).
		Query()
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items of %s: %w", bundleID, err)
	}
	return n, nil
}

func (r *ContentRepo) BundleDetail(ctx context.Context, bundleID string) ([]content.Item, error) {
	query, args := r.b.Select("id").
		From(r.b.Table("content_bundles")).
		Where(entsql.EQ("id", bundleID)).
		Query()
	var id string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", bundleID, content.ErrBundleNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("bundle %s: %w", bundleID, err)
	}

	return r.queryItems(ctx, entsql.EQ("bundle_id", bundleID))
}

func (r *ContentRepo) QueryBySubjectAndGrade(ctx context.Context, subject string, grade int) ([]content.Item, error) {
	pred := entsql.EQ("subject", subject)
	if grade != 0 {
		pred = entsql.And(pred, entsql.EQ("grade", grade))
	}
	return r.queryItems(ctx, pred)
}

func (r *ContentRepo) queryItems(ctx context.Context, pred *entsql.Predicate) ([]content.Item, error) {
	query, args := r.b.Select("body").
		From(r.b.Table("content_items")).
		Where(pred).
		OrderBy("bundle_id", "position").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var out []content.Item
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		var it content.Item
		if err := json.Unmarshal([]byte(body), &it); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
