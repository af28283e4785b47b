package progress

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/saideep-g/blue-ninja/internal/store"
)

// Service applies mission outcomes to a learner's streak and records
// badge awards as events.
type Service struct {
	eventRepo store.EventRepo
	logger    *zap.Logger
	calendar  Calendar
}

// NewService creates a progress service. A nil logger is replaced by a no-op.
func NewService(eventRepo store.EventRepo, logger *zap.Logger, calendar Calendar) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{eventRepo: eventRepo, logger: logger, calendar: calendar}
}

// PracticeDate returns the practice date of at under this service's calendar.
func (s *Service) PracticeDate(at time.Time) time.Time {
	return s.calendar.Date(at)
}

// RecordMissionCompletion counts a completed mission toward the learner's
// totals and advances the streak. The streak itself changes at most once
// per practice day.
func (s *Service) RecordMissionCompletion(ctx context.Context, learnerID string, st *Streak, at time.Time, points int) []Badge {
	st.Totals.MissionsCompleted++
	st.Totals.Points += points

	earned := st.Advance(s.PracticeDate(at), at)
	for _, b := range earned {
		s.persist(ctx, learnerID, b, st.Current)
	}
	return earned
}

// RecordPerfectDay awards PERFECT_DAY when every mission of the day has
// just been completed.
func (s *Service) RecordPerfectDay(ctx context.Context, learnerID string, st *Streak, at time.Time) []Badge {
	st.Totals.PerfectDays++
	b, ok := st.Award(BadgePerfectDay, at)
	if !ok {
		return nil
	}
	s.persist(ctx, learnerID, b, st.Current)
	return []Badge{b}
}

func (s *Service) persist(ctx context.Context, learnerID string, b Badge, streakLen int) {
	s.logger.Info("badge awarded",
		zap.String("learner", learnerID),
		zap.String("badge", string(b.Type)),
		zap.Int("streak", streakLen))

	if s.eventRepo == nil {
		return
	}
	err := s.eventRepo.AppendBadgeEvent(ctx, store.BadgeEventData{
		LearnerID: learnerID,
		BadgeType: string(b.Type),
		Reason:    fmt.Sprintf("%s on a %d-day streak", b.Type.DisplayName(), streakLen),
	})
	if err != nil {
		s.logger.Warn("failed to record badge event", zap.String("learner", learnerID), zap.Error(err))
	}
}
