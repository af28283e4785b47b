package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saideep-g/blue-ninja/internal/store"
)

// mockEventRepo implements store.EventRepo for progress tests.
type mockEventRepo struct {
	badgeEvents []store.BadgeEventData
	err         error
}

func (m *mockEventRepo) AppendAnswerEvent(_ context.Context, _ store.AnswerEventData) error {
	return nil
}
func (m *mockEventRepo) AppendBadgeEvent(_ context.Context, data store.BadgeEventData) error {
	if m.err != nil {
		return m.err
	}
	m.badgeEvents = append(m.badgeEvents, data)
	return nil
}
func (m *mockEventRepo) AppendMissionEvent(_ context.Context, _ store.MissionEventData) error {
	return nil
}
func (m *mockEventRepo) AppendLLMRequest(_ context.Context, _ store.LLMRequestEventData) error {
	return nil
}
func (m *mockEventRepo) QueryAnswerEvents(_ context.Context, _ string, _ store.QueryOpts) ([]store.AnswerEventRecord, error) {
	return nil, nil
}
func (m *mockEventRepo) QueryBadgeEvents(_ context.Context, _ string, _ store.QueryOpts) ([]store.BadgeEventRecord, error) {
	return nil, nil
}
func (m *mockEventRepo) QueryMissionEvents(_ context.Context, _ string, _ store.QueryOpts) ([]store.MissionEventRecord, error) {
	return nil, nil
}
func (m *mockEventRepo) QueryLLMEvents(_ context.Context, _ store.QueryOpts) ([]store.LLMRequestEventRecord, error) {
	return nil, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPracticeDate(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name string
		ts   time.Time
		hour int
		loc  *time.Location
		want time.Time
	}{
		{"afternoon", time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), 4, nil, date(2026, 3, 10)},
		{"before cutover", time.Date(2026, 3, 10, 3, 59, 0, 0, time.UTC), 4, time.UTC, date(2026, 3, 9)},
		{"at cutover", time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC), 4, time.UTC, date(2026, 3, 10)},
		{"midnight cutover", time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC), 0, time.UTC, date(2026, 3, 10)},
		{"year boundary", time.Date(2026, 1, 1, 2, 0, 0, 0, time.UTC), 4, time.UTC, date(2025, 12, 31)},
		// 23:00 UTC is 04:30 the next morning in India.
		{"zone shifts day", time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC), 4, ist, date(2026, 3, 11)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PracticeDate(tt.ts, tt.hour, tt.loc)
			if !got.Equal(tt.want) {
				t.Errorf("PracticeDate = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDayDiff(t *testing.T) {
	tests := []struct {
		a, b time.Time
		want int
	}{
		{date(2026, 3, 10), date(2026, 3, 10), 0},
		{date(2026, 3, 10), date(2026, 3, 11), 1},
		{date(2026, 2, 28), date(2026, 3, 2), 2},
		{date(2026, 3, 11), date(2026, 3, 10), -1},
		{time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC), time.Date(2026, 3, 11, 0, 1, 0, 0, time.UTC), 1},
	}
	for _, tt := range tests {
		if got := DayDiff(tt.a, tt.b); got != tt.want {
			t.Errorf("DayDiff(%s, %s) = %d, want %d", DateKey(tt.a), DateKey(tt.b), got, tt.want)
		}
	}
}

func TestNextDayStart(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name string
		cal  Calendar
		date time.Time
		want time.Time
	}{
		{"default", DefaultCalendar(), date(2026, 3, 10), time.Date(2026, 3, 11, 4, 0, 0, 0, time.UTC)},
		{"nil location", Calendar{CutoverHour: 4}, date(2026, 3, 10), time.Date(2026, 3, 11, 4, 0, 0, 0, time.UTC)},
		{"month end", DefaultCalendar(), date(2026, 3, 31), time.Date(2026, 4, 1, 4, 0, 0, 0, time.UTC)},
		{"los angeles", Calendar{CutoverHour: 4, Location: la}, date(2026, 3, 10), time.Date(2026, 3, 11, 4, 0, 0, 0, la)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cal.NextDayStart(tt.date)
			if !got.Equal(tt.want) {
				t.Errorf("NextDayStart = %s, want %s", got, tt.want)
			}
			// The last instant before the boundary still belongs to date.
			if d := tt.cal.Date(got.Add(-time.Second)); !d.Equal(tt.date) {
				t.Errorf("Date(boundary-1s) = %s, want %s", DateKey(d), DateKey(tt.date))
			}
			if d := tt.cal.Date(got); !d.Equal(tt.date.AddDate(0, 0, 1)) {
				t.Errorf("Date(boundary) = %s", DateKey(d))
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-10")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if !d.Equal(date(2026, 3, 10)) || DateKey(d) != "2026-03-10" {
		t.Errorf("ParseDate = %s", d)
	}
	if _, err := ParseDate("10/03/2026"); err == nil {
		t.Error("expected error for bad layout")
	}
}

func TestAdvanceFirstMission(t *testing.T) {
	var s Streak
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	earned := s.Advance(date(2026, 3, 10), at)

	if s.Current != 1 || s.Longest != 1 {
		t.Errorf("got current=%d longest=%d, want 1/1", s.Current, s.Longest)
	}
	if !s.StartDate.Equal(date(2026, 3, 10)) {
		t.Errorf("StartDate = %s", s.StartDate)
	}
	if len(earned) != 1 || earned[0].Type != BadgeFirstMission {
		t.Errorf("earned = %v, want FIRST_MISSION", earned)
	}
}

func TestAdvanceStateMachine(t *testing.T) {
	tests := []struct {
		name        string
		start       Streak
		day         time.Time
		wantCurrent int
		wantLongest int
		wantStart   time.Time
	}{
		{
			name:        "same day is a no-op",
			start:       Streak{Current: 3, Longest: 5, StartDate: date(2026, 3, 8), LastMissionDate: date(2026, 3, 10)},
			day:         date(2026, 3, 10),
			wantCurrent: 3, wantLongest: 5, wantStart: date(2026, 3, 8),
		},
		{
			name:        "next day increments",
			start:       Streak{Current: 3, Longest: 5, StartDate: date(2026, 3, 8), LastMissionDate: date(2026, 3, 10)},
			day:         date(2026, 3, 11),
			wantCurrent: 4, wantLongest: 5, wantStart: date(2026, 3, 8),
		},
		{
			name:        "next day raises longest",
			start:       Streak{Current: 5, Longest: 5, StartDate: date(2026, 3, 6), LastMissionDate: date(2026, 3, 10)},
			day:         date(2026, 3, 11),
			wantCurrent: 6, wantLongest: 6, wantStart: date(2026, 3, 6),
		},
		{
			name:        "gap resets",
			start:       Streak{Current: 8, Longest: 5, StartDate: date(2026, 3, 3), LastMissionDate: date(2026, 3, 10)},
			day:         date(2026, 3, 13),
			wantCurrent: 1, wantLongest: 8, wantStart: date(2026, 3, 13),
		},
		{
			name:        "earlier day is ignored",
			start:       Streak{Current: 2, Longest: 2, StartDate: date(2026, 3, 9), LastMissionDate: date(2026, 3, 10)},
			day:         date(2026, 3, 1),
			wantCurrent: 2, wantLongest: 2, wantStart: date(2026, 3, 9),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.start
			s.Advance(tt.day, tt.day.Add(10*time.Hour))
			if s.Current != tt.wantCurrent || s.Longest != tt.wantLongest {
				t.Errorf("got current=%d longest=%d, want %d/%d", s.Current, s.Longest, tt.wantCurrent, tt.wantLongest)
			}
			if !s.StartDate.Equal(tt.wantStart) {
				t.Errorf("StartDate = %s, want %s", DateKey(s.StartDate), DateKey(tt.wantStart))
			}
		})
	}
}

func TestAdvanceStreakBadges(t *testing.T) {
	var s Streak
	day := date(2026, 1, 1)
	earnedAt := map[BadgeType]int{}
	for i := 1; i <= 31; i++ {
		for _, b := range s.Advance(day, day) {
			earnedAt[b.Type] = i
		}
		// A second completion on the same day earns nothing.
		if extra := s.Advance(day, day); len(extra) != 0 {
			t.Fatalf("day %d: repeat completion earned %v", i, extra)
		}
		day = day.AddDate(0, 0, 1)
	}

	want := map[BadgeType]int{BadgeFirstMission: 1, BadgeWeekStreak: 7, BadgeMonthStreak: 30}
	for bt, d := range want {
		if earnedAt[bt] != d {
			t.Errorf("%s earned on day %d, want %d", bt, earnedAt[bt], d)
		}
	}
	if s.Current != 31 || s.Longest != 31 {
		t.Errorf("got current=%d longest=%d, want 31/31", s.Current, s.Longest)
	}
}

func TestBadgesAreIdempotent(t *testing.T) {
	s := Streak{Current: 6, Longest: 30, LastMissionDate: date(2026, 3, 10),
		Badges: []Badge{{Type: BadgeWeekStreak, EarnedAt: date(2026, 1, 7)}}}

	earned := s.Advance(date(2026, 3, 11), date(2026, 3, 11))
	if len(earned) != 0 {
		t.Errorf("week streak awarded twice: %v", earned)
	}
	if len(s.Badges) != 1 {
		t.Errorf("got %d badges, want 1", len(s.Badges))
	}

	if _, ok := s.Award(BadgePerfectDay, date(2026, 3, 11)); !ok {
		t.Error("first PERFECT_DAY should be awarded")
	}
	if _, ok := s.Award(BadgePerfectDay, date(2026, 3, 12)); ok {
		t.Error("second PERFECT_DAY should not be awarded")
	}
}

func TestServiceRecordsBadgeEvents(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewService(repo, nil, DefaultCalendar())
	ctx := context.Background()
	var s Streak

	// 02:00 belongs to the previous practice day.
	earned := svc.RecordMissionCompletion(ctx, "ana", &s, time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC), 10)
	if len(earned) != 1 || earned[0].Type != BadgeFirstMission {
		t.Fatalf("earned = %v", earned)
	}
	if !s.LastMissionDate.Equal(date(2026, 3, 10)) {
		t.Errorf("LastMissionDate = %s, want 2026-03-10", DateKey(s.LastMissionDate))
	}

	svc.RecordMissionCompletion(ctx, "ana", &s, time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC), 20)
	if s.Totals.MissionsCompleted != 2 || s.Totals.Points != 30 || s.Current != 1 {
		t.Errorf("totals=%+v current=%d", s.Totals, s.Current)
	}

	perfect := svc.RecordPerfectDay(ctx, "ana", &s, time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC))
	if len(perfect) != 1 {
		t.Fatalf("perfect = %v", perfect)
	}
	if again := svc.RecordPerfectDay(ctx, "ana", &s, time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)); len(again) != 0 {
		t.Errorf("PERFECT_DAY awarded twice")
	}
	if s.Totals.PerfectDays != 2 {
		t.Errorf("PerfectDays = %d, want 2", s.Totals.PerfectDays)
	}

	if len(repo.badgeEvents) != 2 {
		t.Fatalf("got %d badge events, want 2", len(repo.badgeEvents))
	}
	if repo.badgeEvents[0].BadgeType != string(BadgeFirstMission) || repo.badgeEvents[0].LearnerID != "ana" {
		t.Errorf("event = %+v", repo.badgeEvents[0])
	}
}

func TestServiceSurvivesEventFailure(t *testing.T) {
	svc := NewService(&mockEventRepo{err: errors.New("disk full")}, nil, DefaultCalendar())
	var s Streak
	earned := svc.RecordMissionCompletion(context.Background(), "ana", &s, time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), 10)
	if len(earned) != 1 || s.Current != 1 {
		t.Errorf("streak should advance even when the event log fails")
	}
}
