package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/studyloop/internal/review"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/study"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message:   msg,
			Code:      code,
			Retryable: status == http.StatusServiceUnavailable,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// respondErr maps domain errors onto HTTP statuses.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, review.ErrInvalidRating):
		RespondError(c, http.StatusBadRequest, "invalid_rating", err)
	case errors.Is(err, review.ErrMissingDate):
		RespondError(c, http.StatusBadRequest, "missing_date", err)
	case errors.Is(err, review.ErrInvalidDate):
		RespondError(c, http.StatusBadRequest, "invalid_date", err)
	case errors.Is(err, study.ErrInvalidInput):
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, store.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, study.ErrPersistence):
		RespondError(c, http.StatusServiceUnavailable, "persistence", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
