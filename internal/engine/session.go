package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/saideep-g/blue-ninja/internal/cache"
	"github.com/saideep-g/blue-ninja/internal/session"
)

// SessionAnswer is the outcome of answering the current session question.
type SessionAnswer struct {
	Correct       bool             `json:"correct"`
	Misconception string           `json:"misconception,omitempty"`
	Session       *session.Session `json:"session"`
}

// StartOrResumeSession returns today's session for a subject, resuming
// the cached one when it exists. The learner's grade picks the content.
func (e *Engine) StartOrResumeSession(ctx context.Context, learnerID, subjectID string) (_ *session.Session, err error) {
	ctx, span := e.startSpan(ctx, "StartOrResumeSession",
		attribute.String("learner.id", learnerID),
		attribute.String("subject.id", subjectID))
	defer func() { endSpan(span, err) }()

	unlock := e.lock(learnerID)
	defer unlock()

	st, err := e.loadLearner(ctx, "start session", learnerID)
	if err != nil {
		return nil, err
	}

	s, resumed, err := e.sessions.StartOrResume(ctx, learnerID, subjectID, e.grade(st), e.Today())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Bool("resumed", resumed), attribute.Int("questions", len(s.Questions)))
	return s, nil
}

// UpdateSessionProgress stores the learner's position in today's session.
func (e *Engine) UpdateSessionProgress(ctx context.Context, learnerID, subjectID string, p session.Progress) (_ *session.Session, err error) {
	ctx, span := e.startSpan(ctx, "UpdateSessionProgress",
		attribute.String("learner.id", learnerID),
		attribute.String("subject.id", subjectID))
	defer func() { endSpan(span, err) }()

	unlock := e.lock(learnerID)
	defer unlock()

	s, err := e.currentSession(ctx, learnerID, subjectID)
	if err != nil {
		return nil, err
	}
	if err := e.sessions.UpdateProgress(ctx, s, p); err != nil {
		return nil, err
	}
	return s, nil
}

// AnswerSession grades the current question of today's session and
// advances it.
func (e *Engine) AnswerSession(ctx context.Context, learnerID, subjectID, answer string) (_ *SessionAnswer, err error) {
	ctx, span := e.startSpan(ctx, "AnswerSession",
		attribute.String("learner.id", learnerID),
		attribute.String("subject.id", subjectID))
	defer func() { endSpan(span, err) }()

	unlock := e.lock(learnerID)
	defer unlock()

	s, err := e.currentSession(ctx, learnerID, subjectID)
	if err != nil {
		return nil, err
	}
	correct, misconception, err := e.sessions.Answer(ctx, s, answer)
	if err != nil {
		return nil, err
	}
	return &SessionAnswer{Correct: correct, Misconception: misconception, Session: s}, nil
}

// ClearSession drops today's session. Its questions stay served.
func (e *Engine) ClearSession(ctx context.Context, learnerID, subjectID string) (err error) {
	ctx, span := e.startSpan(ctx, "ClearSession",
		attribute.String("learner.id", learnerID),
		attribute.String("subject.id", subjectID))
	defer func() { endSpan(span, err) }()

	unlock := e.lock(learnerID)
	defer unlock()

	s, err := e.currentSession(ctx, learnerID, subjectID)
	if err != nil {
		return err
	}
	return e.sessions.Clear(ctx, s)
}

func (e *Engine) currentSession(ctx context.Context, learnerID, subjectID string) (*session.Session, error) {
	s, err := e.sessions.Load(ctx, learnerID, subjectID, e.Today())
	if cache.IsMiss(err) {
		return nil, fmt.Errorf("%s/%s: %w", learnerID, subjectID, ErrNoSession)
	}
	return s, err
}
