package progress

import "time"

// BadgeType identifies an achievement milestone.
type BadgeType string

const (
	BadgeFirstMission BadgeType = "FIRST_MISSION"
	BadgeWeekStreak   BadgeType = "WEEK_STREAK"
	BadgeMonthStreak  BadgeType = "MONTH_STREAK"
	BadgePerfectDay   BadgeType = "PERFECT_DAY"
)

// AllBadgeTypes returns all badge types in display order.
func AllBadgeTypes() []BadgeType {
	return []BadgeType{BadgeFirstMission, BadgeWeekStreak, BadgeMonthStreak, BadgePerfectDay}
}

// DisplayName returns a human-readable label for the badge type.
func (t BadgeType) DisplayName() string {
	switch t {
	case BadgeFirstMission:
		return "First Mission"
	case BadgeWeekStreak:
		return "Week Streak"
	case BadgeMonthStreak:
		return "Month Streak"
	case BadgePerfectDay:
		return "Perfect Day"
	default:
		return string(t)
	}
}

// Icon returns the display icon for the badge type.
func (t BadgeType) Icon() string {
	switch t {
	case BadgeFirstMission:
		return "🥷"
	case BadgeWeekStreak:
		return "🔥"
	case BadgeMonthStreak:
		return "🏯"
	case BadgePerfectDay:
		return "⭐"
	default:
		return "✦"
	}
}

// Badge is an immutable achievement record.
type Badge struct {
	Type     BadgeType `json:"type"`
	EarnedAt time.Time `json:"earned_at"`
}
