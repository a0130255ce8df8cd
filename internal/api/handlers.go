package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/studyloop/internal/analytics"
	"github.com/abhisek/studyloop/internal/review"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/study"
)

// Handler serves the JSON API over a study service.
type Handler struct {
	svc   *study.Service
	scale review.Scale
	log   logrus.FieldLogger
}

// NewHandler creates a Handler. Ratings are read on the given input scale.
func NewHandler(svc *study.Service, scale review.Scale, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, scale: scale, log: log.WithField("component", "api")}
}

// NewRouter wires every route onto a gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	r.GET("/healthz", func(c *gin.Context) { RespondOK(c, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.GET("/items", h.ListItems)
	api.POST("/items", h.CreateItem)
	api.GET("/items/:id", h.GetItem)
	api.DELETE("/items/:id", h.DeleteItem)
	api.PUT("/items/:id/phase", h.SetPhase)
	api.PUT("/items/:id/exam", h.SetExamDate)
	api.POST("/items/:id/sessions", h.LogSession)
	api.POST("/items/:id/preview", h.Preview)
	api.POST("/items/:id/reviews", h.Review)
	api.GET("/due", h.Due)
	api.GET("/streak", h.Streak)
	api.GET("/stats", h.Stats)
	return r
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := h.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Debug("request completed")
		}
	}
}

// GET /api/items
// Optional filters: subject, kind
func (h *Handler) ListItems(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), store.ListOpts{
		Subject: c.Query("subject"),
		Kind:    review.Kind(c.Query("kind")),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"items": nonNil(items)})
}

type createItemRequest struct {
	Kind    string `json:"kind" binding:"omitempty,oneof=topic concept"`
	Subject string `json:"subject" binding:"required"`
	Title   string `json:"title" binding:"required"`
	Mastery int    `json:"mastery" binding:"min=0,max=100"`
	Phase   string `json:"phase" binding:"omitempty,oneof=initial consolidation mastery"`
}

// POST /api/items
func (h *Handler) CreateItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	it, err := h.svc.CreateItem(c.Request.Context(), study.NewItem{
		Kind:    review.Kind(req.Kind),
		Subject: req.Subject,
		Title:   req.Title,
		Mastery: req.Mastery,
		Phase:   review.Phase(req.Phase),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

// GET /api/items/:id
func (h *Handler) GetItem(c *gin.Context) {
	it, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	now := h.svc.Now()
	RespondOK(c, gin.H{
		"item":              it,
		"status":            it.Status(now),
		"days_until_review": it.DaysUntilReview(now),
	})
}

// DELETE /api/items/:id
func (h *Handler) DeleteItem(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type phaseRequest struct {
	Phase string `json:"phase" binding:"required"`
}

// PUT /api/items/:id/phase
func (h *Handler) SetPhase(c *gin.Context) {
	var req phaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	if err := h.svc.SetPhase(c.Request.Context(), c.Param("id"), review.Phase(req.Phase)); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type examRequest struct {
	Date string `json:"date"` // YYYY-MM-DD; empty clears
}

// PUT /api/items/:id/exam
func (h *Handler) SetExamDate(c *gin.Context) {
	var req examRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	var date *time.Time
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		date = &d
	}
	if err := h.svc.SetExamDate(c.Request.Context(), c.Param("id"), date); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type sessionRequest struct {
	Date            string  `json:"date"`
	MasteryGained   float64 `json:"mastery_gained" binding:"min=-100,max=100"`
	DurationMinutes int     `json:"duration_minutes" binding:"min=0"`
}

// POST /api/items/:id/sessions
func (h *Handler) LogSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	in := study.SessionInput{MasteryGained: req.MasteryGained, DurationMinutes: req.DurationMinutes}
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		in.Date = d
	}
	it, err := h.svc.LogSession(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

type reviewRequest struct {
	// Rating is a number on the configured scale, or "pass"/"fail".
	Rating        json.RawMessage `json:"rating"`
	CustomDate    string          `json:"custom_date"`
	AddToCalendar bool            `json:"add_to_calendar"`
}

type reviewResponse struct {
	Item          *review.Item  `json:"item"`
	Result        review.Result `json:"result"`
	CalendarEvent string        `json:"calendar_event_id,omitempty"`
	CalendarError string        `json:"calendar_error,omitempty"`
}

// POST /api/items/:id/preview
func (h *Handler) Preview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	rating, err := h.parseRating(req.Rating)
	if err != nil {
		respondErr(c, err)
		return
	}
	res, err := h.svc.Preview(c.Request.Context(), c.Param("id"), rating)
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, res)
}

// POST /api/items/:id/reviews
func (h *Handler) Review(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	rating, err := h.parseRating(req.Rating)
	if err != nil {
		respondErr(c, err)
		return
	}
	d := study.Decision{Rating: rating, AddToCalendar: req.AddToCalendar}
	if req.CustomDate != "" {
		date, err := parseDate(req.CustomDate)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		d.CustomDate = &date
	}

	out, err := h.svc.Review(c.Request.Context(), c.Param("id"), d)
	if err != nil {
		respondErr(c, err)
		return
	}
	resp := reviewResponse{Item: out.Item, Result: out.Result}
	if out.CalendarEvent != nil {
		resp.CalendarEvent = out.CalendarEvent.ID
	}
	if out.CalendarErr != nil {
		resp.CalendarError = out.CalendarErr.Error()
	}
	RespondOK(c, resp)
}

// GET /api/due
func (h *Handler) Due(c *gin.Context) {
	items, err := h.svc.Due(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"items": nonNil(items)})
}

// GET /api/streak
func (h *Handler) Streak(c *gin.Context) {
	info, err := h.svc.Streak(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, info)
}

// GET /api/stats
func (h *Handler) Stats(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), store.ListOpts{})
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, analytics.Summarize(items, h.svc.Now()))
}

func (h *Handler) parseRating(raw json.RawMessage) (review.Rating, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%w: no rating given", review.ErrInvalidRating)
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("%w: %s", review.ErrInvalidRating, raw)
		}
		return review.ParseRatingString(h.scale, s)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("%w: %s", review.ErrInvalidRating, raw)
	}
	return review.ParseRating(h.scale, n)
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, time.Local)
}

func nonNil(items []*review.Item) []*review.Item {
	if items == nil {
		return []*review.Item{}
	}
	return items
}
