package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizdrill/backend/internal/middleware"
	"github.com/quizdrill/backend/internal/model"
	"github.com/quizdrill/backend/internal/practice"
	"github.com/quizdrill/backend/internal/repository"
	"github.com/quizdrill/backend/internal/response"
	"github.com/quizdrill/backend/internal/service"
	"github.com/quizdrill/backend/internal/validator"
)

// PracticeHandler drives the practice attempt lifecycle for students.
type PracticeHandler struct {
	practiceService *service.PracticeService
}

func NewPracticeHandler(practiceService *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{practiceService: practiceService}
}

// Start godoc
// POST /api/v1/practice/attempts
// Opens a new attempt with a freshly drawn random question set.
func (h *PracticeHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.practiceService.Start(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoQuestions):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
		case errors.Is(err, service.ErrNotEnoughQuestions):
			response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrNotEnoughQuestions, err.Error())
		case errors.Is(err, service.ErrTimedConfig):
			response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, err.Error())
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attempt": view})
}

// Active godoc
// GET /api/v1/practice/attempts/active
// Returns the caller's in-flight attempt ID, if any, so a reloaded client
// can resume instead of starting over.
func (h *PracticeHandler) Active(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, ok, err := h.practiceService.Active(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if !ok {
		response.Success(c, http.StatusOK, gin.H{"attempt_id": nil})
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt_id": attemptID})
}

// Get godoc
// GET /api/v1/practice/attempts/:id
// Returns the attempt with autosaved answers and the remaining time budget.
func (h *PracticeHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	view, err := h.practiceService.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		h.failAttempt(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": view})
}

// SaveAnswer godoc
// PUT /api/v1/practice/attempts/:id/answers
// Autosaves one answer slot. Called on every selection change.
func (h *PracticeHandler) SaveAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SaveAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.practiceService.SaveAnswer(c.Request.Context(), claims.UserID, c.Param("id"), &req); err != nil {
		if errors.Is(err, service.ErrAnswerIndex) {
			response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, err.Error())
			return
		}
		h.failAttempt(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Submit godoc
// POST /api/v1/practice/attempts/:id/submit
// Scores the attempt server-side and persists it as a session. The attempt
// is consumed; submitting twice yields ATTEMPT_FINISHED.
func (h *PracticeHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	session, err := h.practiceService.Submit(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		h.failAttempt(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": session})
}

func (h *PracticeHandler) failAttempt(c *gin.Context, err error) {
	switch {
	case errors.Is(err, practice.ErrAttemptNotFound):
		response.Fail(c, http.StatusGone, response.ErrAttemptFinished)
	case errors.Is(err, service.ErrNotAttemptOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, repository.ErrQuestionNotFound):
		// The attempt survives a failed persist and can be retried once
		// the bank is repaired.
		response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrNotFound, err.Error())
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
