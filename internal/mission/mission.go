// Package mission plans a learner's day as one mission per phase and
// tracks each mission's progress.
package mission

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/saideep-g/blue-ninja/internal/content"
	"github.com/saideep-g/blue-ninja/internal/phase"
)

// TargetScore is the fraction of correct answers that completes a mission.
const TargetScore = 0.70

var (
	ErrMissionClosed    = errors.New("mission is closed")
	ErrQuestionNotFound = errors.New("question not in mission")
	ErrAlreadyAnswered  = errors.New("question already answered")
)

// Status is a mission's lifecycle state.
type Status string

const (
	StatusAvailable  Status = "AVAILABLE"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusExpired    Status = "EXPIRED"
)

// Open reports whether a mission in this state still accepts answers.
func (s Status) Open() bool {
	return s == StatusAvailable || s == StatusInProgress
}

// DisplayName returns a human-readable label for the status.
func (s Status) DisplayName() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	case StatusExpired:
		return "Expired"
	default:
		return string(s)
	}
}

// PlannedItem is one slot of the plan before content is attached.
type PlannedItem = content.Skeleton

// Mission is one phase's questions for a day.
type Mission struct {
	ID          string                     `json:"id"`
	Phase       phase.Name                 `json:"phase"`
	Strategy    phase.Strategy             `json:"strategy"`
	Questions   []content.HydratedQuestion `json:"questions"`
	Status      Status                     `json:"status"`
	Points      int                        `json:"points"`
	TargetScore float64                    `json:"target_score"`
	ExpiresAt   time.Time                  `json:"expires_at"`

	// CompletedIDs only grows.
	CompletedIDs []string  `json:"completed_ids"`
	Correct      int       `json:"correct"`
	StartedAt    time.Time `json:"started_at,omitzero"`
	FinishedAt   time.Time `json:"finished_at,omitzero"`
}

// Question looks up a question by its item id.
func (m *Mission) Question(id string) (content.HydratedQuestion, bool) {
	for _, q := range m.Questions {
		if q.ID() == id {
			return q, true
		}
	}
	return content.HydratedQuestion{}, false
}

// Answered reports whether a question has been answered.
func (m *Mission) Answered(id string) bool {
	return slices.Contains(m.CompletedIDs, id)
}

// Score is the fraction of the mission's questions answered correctly.
func (m *Mission) Score() float64 {
	if len(m.Questions) == 0 {
		return 0
	}
	return float64(m.Correct) / float64(len(m.Questions))
}

// Start moves an available mission to IN_PROGRESS.
func (m *Mission) Start(at time.Time) {
	if m.Status == StatusAvailable {
		m.Status = StatusInProgress
		m.StartedAt = at
	}
}

// RecordAnswer marks a question answered. When the last question is
// answered the mission finishes as COMPLETED or FAILED against its target
// score; finished reports that transition.
func (m *Mission) RecordAnswer(questionID string, correct bool, at time.Time) (finished bool, err error) {
	if !m.Status.Open() {
		return false, fmt.Errorf("%s is %s: %w", m.ID, m.Status, ErrMissionClosed)
	}
	if _, ok := m.Question(questionID); !ok {
		return false, fmt.Errorf("%s in %s: %w", questionID, m.ID, ErrQuestionNotFound)
	}
	if m.Answered(questionID) {
		return false, fmt.Errorf("%s in %s: %w", questionID, m.ID, ErrAlreadyAnswered)
	}

	m.Start(at)
	m.CompletedIDs = append(m.CompletedIDs, questionID)
	if correct {
		m.Correct++
	}

	if len(m.CompletedIDs) < len(m.Questions) {
		return false, nil
	}
	if m.Score() >= m.TargetScore {
		m.Status = StatusCompleted
	} else {
		m.Status = StatusFailed
	}
	m.FinishedAt = at
	return true, nil
}

// Expire moves an open mission to EXPIRED once now is past its expiry.
func (m *Mission) Expire(now time.Time) bool {
	if !m.Status.Open() || !now.After(m.ExpiresAt) {
		return false
	}
	m.Status = StatusExpired
	return true
}

// DailyBatch is a learner's missions for one practice date.
type DailyBatch struct {
	ID          string    `json:"id"`
	LearnerID   string    `json:"learner_id"`
	Date        time.Time `json:"date"`
	Missions    []Mission `json:"missions"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Mission returns a pointer into the batch for in-place updates.
func (b *DailyBatch) Mission(id string) (*Mission, bool) {
	for i := range b.Missions {
		if b.Missions[i].ID == id {
			return &b.Missions[i], true
		}
	}
	return nil, false
}

// AllCompleted reports whether the batch has missions and every one is COMPLETED.
func (b *DailyBatch) AllCompleted() bool {
	if len(b.Missions) == 0 {
		return false
	}
	for _, m := range b.Missions {
		if m.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// Expire expires every overdue mission and returns the ones it changed.
func (b *DailyBatch) Expire(now time.Time) []*Mission {
	var changed []*Mission
	for i := range b.Missions {
		if b.Missions[i].Expire(now) {
			changed = append(changed, &b.Missions[i])
		}
	}
	return changed
}

// QuestionCount is the number of questions across all missions.
func (b *DailyBatch) QuestionCount() int {
	n := 0
	for _, m := range b.Missions {
		n += len(m.Questions)
	}
	return n
}

// ExpiryFor returns midnight UTC at the start of the day after date. It is
// the Builder default when no practice calendar is set.
func ExpiryFor(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
