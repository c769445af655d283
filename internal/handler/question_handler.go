package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/quizdrill/backend/internal/model"
	"github.com/quizdrill/backend/internal/quiz"
	"github.com/quizdrill/backend/internal/response"
	"github.com/quizdrill/backend/internal/service"
	"github.com/quizdrill/backend/internal/validator"
)

type QuestionHandler struct {
	questionService *service.QuestionService
}

func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// List godoc
// GET /api/v1/admin/questions?topic_id=&difficulty=&search=&page=&per_page=
func (h *QuestionHandler) List(c *gin.Context) {
	filter := model.QuestionFilter{
		Difficulty: c.Query("difficulty"),
		Search:     c.Query("search"),
		Page:       1,
		PerPage:    20,
	}

	if raw := c.Query("topic_id"); raw != "" {
		topicID, err := strconv.Atoi(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		filter.TopicID = &topicID
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil && perPage > 0 && perPage <= 100 {
		filter.PerPage = perPage
	}

	questions, total, err := h.questionService.List(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	totalPages := (total + filter.PerPage - 1) / filter.PerPage
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": questions}, &response.Pagination{
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

// Random godoc
// GET /api/v1/questions/random?count=&topic_id=
// Draws a random sample with the answer key stripped, for ad-hoc practice
// outside a tracked attempt.
func (h *QuestionHandler) Random(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "10"))
	if err != nil || count <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		return
	}

	var topicID *int
	if raw := c.Query("topic_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		topicID = &id
	}

	questions, err := h.questionService.RandomSample(c.Request.Context(), topicID, count)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoQuestions):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
		case errors.Is(err, service.ErrNotEnoughQuestions):
			response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrNotEnoughQuestions, err.Error())
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	views := make([]model.StudentQuestion, len(questions))
	for i := range questions {
		views[i] = questions[i].StudentView()
	}
	response.Success(c, http.StatusOK, gin.H{"questions": views})
}

// GetByID godoc
// GET /api/v1/admin/questions/:id
func (h *QuestionHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// Create godoc
// POST /api/v1/admin/questions
func (h *QuestionHandler) Create(c *gin.Context) {
	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question := questionFromRequest(req.Text, req.TopicID, req.Subtopic, req.Difficulty, req.ImagePath,
		req.OptionA, req.OptionB, req.OptionC, req.OptionD, req.CorrectOption, req.Explanation)
	if err := h.questionService.Create(c.Request.Context(), question); err != nil {
		if errors.Is(err, service.ErrCorrectOptionEmpty) {
			response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, err.Error())
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// Update godoc
// PUT /api/v1/admin/questions/:id
func (h *QuestionHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question := questionFromRequest(req.Text, req.TopicID, req.Subtopic, req.Difficulty, req.ImagePath,
		req.OptionA, req.OptionB, req.OptionC, req.OptionD, req.CorrectOption, req.Explanation)
	question.ID = id
	if err := h.questionService.Update(c.Request.Context(), question); err != nil {
		if errors.Is(err, service.ErrCorrectOptionEmpty) {
			response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, err.Error())
			return
		}
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// Delete godoc
// DELETE /api/v1/admin/questions/:id
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "question deleted successfully"})
}

// BulkImport godoc
// POST /api/v1/admin/questions/bulk
// Parses the free-text format and inserts all accepted questions in one
// transaction. Parse failures reject the whole batch.
func (h *QuestionHandler) BulkImport(c *gin.Context) {
	var req model.BulkImportRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	imported, err := h.questionService.BulkImport(c.Request.Context(), req.Text)
	if err != nil {
		var parseErr *quiz.ParseError
		if errors.As(err, &parseErr) {
			response.FailWithMessage(c, http.StatusBadRequest, response.ErrBulkParse, parseErr.Error())
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"imported": imported})
}

func questionFromRequest(text string, topicID *int, subtopic, difficulty string, imagePath *string,
	a, b, optC, d, correct, explanation string) *model.Question {
	return &model.Question{
		Text:          text,
		TopicID:       topicID,
		Subtopic:      subtopic,
		Difficulty:    difficulty,
		ImagePath:     imagePath,
		OptionA:       a,
		OptionB:       b,
		OptionC:       optC,
		OptionD:       d,
		CorrectOption: correct,
		Explanation:   explanation,
	}
}
