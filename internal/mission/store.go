package mission

import (
	"context"
	"fmt"
	"time"

	"github.com/saideep-g/blue-ninja/internal/cache"
)

const (
	// BatchSchemaVersion is bumped whenever DailyBatch changes shape.
	BatchSchemaVersion = 1

	// BatchTTL keeps yesterday's batch around for expiry sweeps.
	BatchTTL = 72 * time.Hour

	batchPrefix   = "batch:"
	missionPrefix = "mission:"
)

// BatchKey is the cache key of a learner's batch for a date.
func BatchKey(learnerID string, date time.Time) string {
	return batchPrefix + learnerID + ":" + dateOnly(date).Format(dateLayout)
}

func missionKey(id string) string { return missionPrefix + id }

type missionRef struct {
	LearnerID string `json:"learner_id"`
	Date      string `json:"date"`
}

// KVStore keeps batches in a cache.KV, plus an index from mission id to
// the batch holding it.
type KVStore struct {
	kv cache.KV
}

var _ BatchStore = (*KVStore)(nil)

func NewKVStore(kv cache.KV) *KVStore {
	return &KVStore{kv: kv}
}

func (s *KVStore) LoadBatch(ctx context.Context, learnerID string, date time.Time) (*DailyBatch, error) {
	var b DailyBatch
	if err := cache.Load(ctx, s.kv, BatchKey(learnerID, date), BatchSchemaVersion, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *KVStore) SaveBatch(ctx context.Context, b *DailyBatch) error {
	if err := cache.Save(ctx, s.kv, BatchKey(b.LearnerID, b.Date), BatchSchemaVersion, b, BatchTTL); err != nil {
		return err
	}
	ref := missionRef{LearnerID: b.LearnerID, Date: dateOnly(b.Date).Format(dateLayout)}
	for _, m := range b.Missions {
		if err := cache.Save(ctx, s.kv, missionKey(m.ID), BatchSchemaVersion, ref, BatchTTL); err != nil {
			return fmt.Errorf("index mission %s: %w", m.ID, err)
		}
	}
	return nil
}

// FindByMission returns the batch that contains missionID.
func (s *KVStore) FindByMission(ctx context.Context, missionID string) (*DailyBatch, error) {
	var ref missionRef
	if err := cache.Load(ctx, s.kv, missionKey(missionID), BatchSchemaVersion, &ref); err != nil {
		return nil, fmt.Errorf("mission %s: %w", missionID, err)
	}
	date, err := time.ParseInLocation(dateLayout, ref.Date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("mission %s: bad date %q: %w", missionID, ref.Date, err)
	}
	b, err := s.LoadBatch(ctx, ref.LearnerID, date)
	if err != nil {
		return nil, fmt.Errorf("batch for mission %s: %w", missionID, err)
	}
	return b, nil
}

// Batches loads every live batch. Stale entries are skipped.
func (s *KVStore) Batches(ctx context.Context) ([]*DailyBatch, error) {
	keys, err := s.kv.Keys(ctx, batchPrefix)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	var out []*DailyBatch
	for _, key := range keys {
		var b DailyBatch
		err := cache.Load(ctx, s.kv, key, BatchSchemaVersion, &b)
		if cache.IsMiss(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
		out = append(out, &b)
	}
	return out, nil
}

// Delete removes a learner's batch for a date.
func (s *KVStore) Delete(ctx context.Context, learnerID string, date time.Time) error {
	b, err := s.LoadBatch(ctx, learnerID, date)
	if err != nil && !cache.IsMiss(err) {
		return err
	}
	if b != nil {
		for _, m := range b.Missions {
			if err := s.kv.Delete(ctx, missionKey(m.ID)); err != nil {
				return err
			}
		}
	}
	return s.kv.Delete(ctx, BatchKey(learnerID, date))
}
