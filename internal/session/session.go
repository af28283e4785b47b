// Package session keeps a learner's resumable per-subject quiz for a
// practice day in the cache.
package session

import (
	"errors"
	"time"

	"github.com/saideep-g/blue-ninja/internal/content"
)

// CurrentSchemaVersion is bumped whenever hydration or the Session shape
// changes. Sessions cached under any other version are discarded.
const CurrentSchemaVersion = 3

// MaxQuestions caps a session's length.
const MaxQuestions = 20

// TTL bounds how long a session can be resumed.
const TTL = 48 * time.Hour

// ErrInvalidProgress is returned for a progress update outside the session.
var ErrInvalidProgress = errors.New("invalid session progress")

// Session is a subject-scoped quiz for one learner and practice date.
type Session struct {
	LearnerID     string                     `json:"learner_id"`
	SubjectID     string                     `json:"subject_id"`
	Grade         int                        `json:"grade"`
	Date          time.Time                  `json:"date"`
	Questions     []content.HydratedQuestion `json:"questions"`
	CurrentIndex  int                        `json:"current_index"`
	Score         int                        `json:"score"`
	ConsumedIDs   []string                   `json:"consumed_ids"`
	SchemaVersion int                        `json:"schema_version"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

// Progress is the part of a session written after each answer.
type Progress struct {
	CurrentIndex int `json:"current_index"`
	Score        int `json:"score"`
}

// Current returns the question at CurrentIndex.
func (s *Session) Current() (content.HydratedQuestion, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return content.HydratedQuestion{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// Done reports whether every question has been answered.
func (s *Session) Done() bool {
	return s.CurrentIndex >= len(s.Questions)
}

// Summary holds the numbers shown when a session ends.
type Summary struct {
	Answered  int     `json:"answered"`
	Correct   int     `json:"correct"`
	Total     int     `json:"total"`
	Accuracy  float64 `json:"accuracy"`
	Fallbacks int     `json:"fallbacks"`
}

// Summarize reports progress so far.
func (s *Session) Summarize() Summary {
	sum := Summary{
		Answered: min(s.CurrentIndex, len(s.Questions)),
		Correct:  s.Score,
		Total:    len(s.Questions),
	}
	if sum.Answered > 0 {
		sum.Accuracy = float64(sum.Correct) / float64(sum.Answered)
	}
	for _, q := range s.Questions {
		if q.IsFallback {
			sum.Fallbacks++
		}
	}
	return sum
}
