package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saideep-g/blue-ninja/internal/cache"
	"github.com/saideep-g/blue-ninja/internal/engine"
	"github.com/saideep-g/blue-ninja/internal/mission"
	"github.com/saideep-g/blue-ninja/internal/progress"
	"github.com/saideep-g/blue-ninja/internal/session"
)

type handler struct {
	engine *engine.Engine
	logger *zap.Logger
	health func(ctx context.Context) error
}

type errorBody struct {
	Error string `json:"error"`
}

type generateBatchRequest struct {
	Date      string            `json:"date"` // yyyy-mm-dd, empty for today
	Overrides *engine.Overrides `json:"overrides"`
}

type submitAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

type sessionAnswerRequest struct {
	Answer string `json:"answer"`
}

type progressRequest struct {
	CurrentIndex int `json:"current_index"`
	Score        int `json:"score"`
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrMissionNotFound),
		errors.Is(err, engine.ErrNoSession),
		errors.Is(err, mission.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, mission.ErrAlreadyAnswered),
		errors.Is(err, mission.ErrMissionClosed):
		return http.StatusConflict
	case errors.Is(err, session.ErrInvalidProgress):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, errorBody{Error: msg})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: err.Error()})
}

func (h *handler) healthz(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) generateBatch(c *gin.Context) {
	var req generateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	var date time.Time
	if req.Date != "" {
		d, err := progress.ParseDate(req.Date)
		if err != nil {
			badRequest(c, err)
			return
		}
		date = d
	}

	batch, err := h.engine.GenerateDailyBatch(c.Request.Context(), c.Param("learner"), date, req.Overrides)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (h *handler) getBatch(c *gin.Context) {
	date, err := progress.ParseDate(c.Param("date"))
	if err != nil {
		badRequest(c, err)
		return
	}
	batch, err := h.engine.Batch(c.Request.Context(), c.Param("learner"), date)
	if cache.IsMiss(err) {
		c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Error: "no batch for " + c.Param("date")})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (h *handler) submitAnswer(c *gin.Context) {
	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.engine.SubmitAnswer(c.Request.Context(), c.Param("mission"), req.QuestionID, req.Answer)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) startSession(c *gin.Context) {
	s, err := h.engine.StartOrResumeSession(c.Request.Context(), c.Param("learner"), c.Param("subject"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *handler) updateSession(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s, err := h.engine.UpdateSessionProgress(c.Request.Context(), c.Param("learner"), c.Param("subject"),
		session.Progress{CurrentIndex: req.CurrentIndex, Score: req.Score})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *handler) answerSession(c *gin.Context) {
	var req sessionAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.engine.AnswerSession(c.Request.Context(), c.Param("learner"), c.Param("subject"), req.Answer)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) clearSession(c *gin.Context) {
	if err := h.engine.ClearSession(c.Request.Context(), c.Param("learner"), c.Param("subject")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) getStreak(c *gin.Context) {
	st, err := h.engine.GetStreak(c.Request.Context(), c.Param("learner"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *handler) getProgress(c *gin.Context) {
	summaries, err := h.engine.ModuleProgress(c.Request.Context(), c.Param("learner"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"modules": summaries})
}

func (h *handler) putProfile(c *gin.Context) {
	var p engine.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.engine.SetProfile(c.Request.Context(), c.Param("learner"), p); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
