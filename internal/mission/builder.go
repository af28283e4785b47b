package mission

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saideep-g/blue-ninja/internal/cache"
	"github.com/saideep-g/blue-ninja/internal/content"
	"github.com/saideep-g/blue-ninja/internal/curriculum"
	"github.com/saideep-g/blue-ninja/internal/mastery"
	"github.com/saideep-g/blue-ninja/internal/phase"
)

// BatchStore persists daily batches. LoadBatch returns an error satisfying
// cache.IsMiss when no usable batch exists.
type BatchStore interface {
	LoadBatch(ctx context.Context, learnerID string, date time.Time) (*DailyBatch, error)
	SaveBatch(ctx context.Context, batch *DailyBatch) error
}

// PoolFunc supplies the content pool. It is called only when a batch is
// actually built.
type PoolFunc func(ctx context.Context) []content.Item

// Request describes one daily batch.
type Request struct {
	LearnerID  string
	Date       time.Time
	Curriculum *curriculum.Graph
	Mastery    mastery.Record
	Pool       PoolFunc

	// Served is updated with every item placed in the batch.
	Served *content.ServedSet

	// Templates, when set, replaces every phase's template pool.
	Templates []content.Template

	// Regenerate rebuilds even when a batch for the date exists.
	Regenerate bool

	Now time.Time
}

// PhasePlan is the planned items for one phase.
type PhasePlan struct {
	Phase phase.Phase
	Items []PlannedItem
}

// Builder assembles daily batches.
type Builder struct {
	store    BatchStore
	hydrator *content.Hydrator
	logger   *zap.Logger
	rng      *rand.Rand
	newID    func() string
	expiry   func(date time.Time) time.Time
}

// NewBuilder creates a Builder. A nil store disables idempotency and a
// nil logger discards output.
func NewBuilder(store BatchStore, hydrator *content.Hydrator, logger *zap.Logger) *Builder {
	if hydrator == nil {
		hydrator = content.NewHydrator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{store: store, hydrator: hydrator, logger: logger, newID: uuid.NewString, expiry: ExpiryFor}
}

// WithExpiry sets how a batch date maps to its missions' deadline.
func (b *Builder) WithExpiry(fn func(date time.Time) time.Time) *Builder {
	b.expiry = fn
	return b
}

// WithRand fixes the source used to shuffle transfer candidates.
func (b *Builder) WithRand(rng *rand.Rand) *Builder {
	b.rng = rng
	return b
}

// Plan runs each phase's selector and lays out its slots. Templates are
// assigned round-robin from the phase's pool and atoms cycle when a phase
// has fewer candidates than slots. Slot numbers run from 1 across the
// whole day. Phases with no candidates are omitted.
func (b *Builder) Plan(g *curriculum.Graph, rec mastery.Record, now time.Time, templates []content.Template) []PhasePlan {
	in := phase.Input{Atoms: g.Atoms(), Mastery: rec, Now: now, Rand: b.rng}

	var plans []PhasePlan
	slot := 0
	for _, p := range phase.All() {
		pool := p.Templates
		if len(templates) > 0 {
			pool = templates
		}
		candidates := phase.SelectCandidates(p, in)
		if len(candidates) == 0 || len(pool) == 0 {
			continue
		}

		items := make([]PlannedItem, 0, p.Slots)
		for i := 0; i < p.Slots; i++ {
			slot++
			atom := candidates[i%len(candidates)]
			score := rec.Score(atom.ID)
			items = append(items, PlannedItem{
				AtomID:        atom.ID,
				Template:      pool[i%len(pool)],
				Phase:         string(p.Name),
				Slot:          slot,
				Tier:          mastery.DifficultyTier(score),
				MasteryBefore: score,
			})
		}
		plans = append(plans, PhasePlan{Phase: p, Items: items})
	}
	return plans
}

// BuildDailyBatch returns the learner's batch for req.Date, building and
// saving it only when none exists or Regenerate is set. created reports
// whether a new batch was built. Missions whose every slot went unfilled
// are left out.
func (b *Builder) BuildDailyBatch(ctx context.Context, req Request) (batch *DailyBatch, created bool, err error) {
	date := dateOnly(req.Date)
	log := b.logger.With(zap.String("learner", req.LearnerID), zap.String("date", date.Format(dateLayout)))

	if b.store != nil && !req.Regenerate {
		existing, err := b.store.LoadBatch(ctx, req.LearnerID, date)
		if err == nil {
			return existing, false, nil
		}
		if !cache.IsMiss(err) {
			return nil, false, fmt.Errorf("load batch: %w", err)
		}
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	g := req.Curriculum
	if g == nil {
		g = curriculum.Empty()
	}

	batch = &DailyBatch{
		ID:          b.newID(),
		LearnerID:   req.LearnerID,
		Date:        date,
		GeneratedAt: now,
	}

	plans := b.Plan(g, req.Mastery, now, req.Templates)
	if len(plans) > 0 {
		var pool []content.Item
		if req.Pool != nil {
			pool = req.Pool(ctx)
		}
		if len(pool) == 0 {
			log.Warn("content pool is empty")
		}

		var skeletons []PlannedItem
		for _, pp := range plans {
			skeletons = append(skeletons, pp.Items...)
		}
		hydrated := b.hydrator.Hydrate(skeletons, pool, req.Served)

		byPhase := make(map[string][]content.HydratedQuestion)
		for _, q := range hydrated {
			byPhase[q.Phase] = append(byPhase[q.Phase], q)
		}

		for _, pp := range plans {
			questions := byPhase[string(pp.Phase.Name)]
			if len(questions) == 0 {
				log.Warn("no content for phase, mission skipped", zap.String("phase", string(pp.Phase.Name)))
				continue
			}
			if len(questions) < len(pp.Items) {
				log.Info("mission truncated",
					zap.String("phase", string(pp.Phase.Name)),
					zap.Int("planned", len(pp.Items)),
					zap.Int("hydrated", len(questions)))
			}
			batch.Missions = append(batch.Missions, Mission{
				ID:          b.newID(),
				Phase:       pp.Phase.Name,
				Strategy:    pp.Phase.Strategy,
				Questions:   questions,
				Status:      StatusAvailable,
				Points:      pp.Phase.Points,
				TargetScore: TargetScore,
				ExpiresAt:   b.expiry(date),
			})
		}
	}

	if b.store != nil {
		if err := b.store.SaveBatch(ctx, batch); err != nil {
			return nil, false, fmt.Errorf("save batch: %w", err)
		}
	}
	log.Info("daily batch generated",
		zap.Int("missions", len(batch.Missions)),
		zap.Int("questions", batch.QuestionCount()),
		zap.Bool("regenerated", req.Regenerate))
	return batch, true, nil
}

const dateLayout = "2006-01-02"

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
