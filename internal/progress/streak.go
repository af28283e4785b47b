package progress

import "time"

const (
	WeekStreakLength  = 7
	MonthStreakLength = 30
)

// Totals are cumulative lifetime counters.
type Totals struct {
	MissionsCompleted int `json:"missions_completed"`
	PerfectDays       int `json:"perfect_days"`
	Points            int `json:"points"`
}

// Streak tracks consecutive practice days and earned badges for a learner.
type Streak struct {
	Current         int       `json:"current"`
	Longest         int       `json:"longest"`
	StartDate       time.Time `json:"start_date"`
	LastMissionDate time.Time `json:"last_mission_date"`
	Badges          []Badge   `json:"badges,omitempty"`
	Totals          Totals    `json:"totals"`
}

// Started reports whether the learner has ever completed a mission.
func (s *Streak) Started() bool {
	return !s.LastMissionDate.IsZero()
}

// HasBadge reports whether a badge type is already earned.
func (s *Streak) HasBadge(t BadgeType) bool {
	for _, b := range s.Badges {
		if b.Type == t {
			return true
		}
	}
	return false
}

// Award adds a badge unless one of that type is already present.
// Returns the badge and true when it was newly added.
func (s *Streak) Award(t BadgeType, at time.Time) (Badge, bool) {
	if s.HasBadge(t) {
		return Badge{}, false
	}
	b := Badge{Type: t, EarnedAt: at}
	s.Badges = append(s.Badges, b)
	return b, true
}

// Advance applies one mission completion on practice date day to the
// streak state machine and returns any badges newly earned.
//
//	first ever completion → current 1, longest 1, FIRST_MISSION
//	same day              → unchanged
//	next day              → current+1, WEEK_STREAK at 7, MONTH_STREAK at 30
//	gap of 2+ days        → longest = max(longest, current), current 1
func (s *Streak) Advance(day, at time.Time) []Badge {
	var earned []Badge
	award := func(t BadgeType) {
		if b, ok := s.Award(t, at); ok {
			earned = append(earned, b)
		}
	}

	if !s.Started() {
		s.Current = 1
		s.Longest = max(s.Longest, 1)
		s.StartDate = day
		s.LastMissionDate = day
		award(BadgeFirstMission)
		return earned
	}

	switch diff := DayDiff(s.LastMissionDate, day); {
	case diff <= 0:
		return nil
	case diff == 1:
		s.Current++
		s.Longest = max(s.Longest, s.Current)
		if s.Current == WeekStreakLength {
			award(BadgeWeekStreak)
		}
		if s.Current == MonthStreakLength {
			award(BadgeMonthStreak)
		}
	default:
		s.Longest = max(s.Longest, s.Current)
		s.Current = 1
		s.StartDate = day
	}
	s.LastMissionDate = day
	return earned
}
