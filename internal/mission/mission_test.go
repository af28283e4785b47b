package mission

import (
	"errors"
	"testing"
	"time"

	"github.com/saideep-g/blue-ninja/internal/content"
)

func testMission(n int) *Mission {
	m := &Mission{ID: "m1", Status: StatusAvailable, TargetScore: TargetScore,
		ExpiresAt: ExpiryFor(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))}
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		m.Questions = append(m.Questions, content.HydratedQuestion{Item: content.Item{ID: id}})
	}
	return m
}

func TestRecordAnswerTransitions(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		correct []bool
		want    Status
	}{
		{"all correct", []bool{true, true, true}, StatusCompleted},
		{"two of three misses target", []bool{true, true, false}, StatusFailed},
		{"none correct", []bool{false, false, false}, StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMission(3)
			for i, c := range tt.correct {
				finished, err := m.RecordAnswer(m.Questions[i].ID(), c, at)
				if err != nil {
					t.Fatalf("answer %d: %v", i, err)
				}
				if i == 0 && m.Status != StatusInProgress && len(tt.correct) > 1 {
					t.Errorf("after first answer status = %s, want IN_PROGRESS", m.Status)
				}
				if finished != (i == len(tt.correct)-1) {
					t.Errorf("answer %d: finished = %v", i, finished)
				}
			}
			if m.Status != tt.want {
				t.Errorf("status = %s, want %s", m.Status, tt.want)
			}
			if !m.FinishedAt.Equal(at) || !m.StartedAt.Equal(at) {
				t.Errorf("timestamps not stamped: started=%s finished=%s", m.StartedAt, m.FinishedAt)
			}
		})
	}
}

func TestTargetScoreBoundary(t *testing.T) {
	m := testMission(10)
	for i := 0; i < 10; i++ {
		if _, err := m.RecordAnswer(m.Questions[i].ID(), i < 7, time.Now()); err != nil {
			t.Fatal(err)
		}
	}
	if m.Status != StatusCompleted {
		t.Errorf("7/10 should meet the 0.70 target, got %s", m.Status)
	}
}

func TestRecordAnswerErrors(t *testing.T) {
	m := testMission(2)
	if _, err := m.RecordAnswer("zz", true, time.Now()); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("unknown question: got %v", err)
	}
	if _, err := m.RecordAnswer("a", true, time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := m.RecordAnswer("a", true, time.Now()); !errors.Is(err, ErrAlreadyAnswered) {
		t.Errorf("repeat answer: got %v", err)
	}
	if len(m.CompletedIDs) != 1 {
		t.Errorf("CompletedIDs = %v", m.CompletedIDs)
	}

	m.Status = StatusExpired
	if _, err := m.RecordAnswer("b", true, time.Now()); !errors.Is(err, ErrMissionClosed) {
		t.Errorf("expired mission: got %v", err)
	}
}

func TestExpire(t *testing.T) {
	expiry := ExpiryFor(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	if want := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC); !expiry.Equal(want) {
		t.Fatalf("ExpiryFor = %s, want %s", expiry, want)
	}

	tests := []struct {
		status Status
		now    time.Time
		want   Status
	}{
		{StatusAvailable, expiry, StatusAvailable},
		{StatusAvailable, expiry.Add(time.Second), StatusExpired},
		{StatusInProgress, expiry.Add(time.Hour), StatusExpired},
		{StatusCompleted, expiry.Add(time.Hour), StatusCompleted},
		{StatusFailed, expiry.Add(time.Hour), StatusFailed},
	}
	for _, tt := range tests {
		m := testMission(1)
		m.Status = tt.status
		m.Expire(tt.now)
		if m.Status != tt.want {
			t.Errorf("%s at %s: got %s, want %s", tt.status, tt.now, m.Status, tt.want)
		}
	}
}

func TestBatchAllCompleted(t *testing.T) {
	b := &DailyBatch{}
	if b.AllCompleted() {
		t.Error("empty batch reported complete")
	}
	b.Missions = []Mission{{ID: "a", Status: StatusCompleted}, {ID: "b", Status: StatusInProgress}}
	if b.AllCompleted() {
		t.Error("batch with open mission reported complete")
	}
	m, ok := b.Mission("b")
	if !ok {
		t.Fatal("mission b not found")
	}
	m.Status = StatusCompleted
	if !b.AllCompleted() {
		t.Error("update through Mission pointer not visible")
	}
}
