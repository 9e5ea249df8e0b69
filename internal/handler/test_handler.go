package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prepstack/prepstack-backend/internal/middleware"
	"github.com/prepstack/prepstack-backend/internal/model"
	"github.com/prepstack/prepstack-backend/internal/response"
	"github.com/prepstack/prepstack-backend/internal/service"
	"github.com/prepstack/prepstack-backend/internal/validator"
)

// TestHandler handles test catalog and authoring endpoints.
type TestHandler struct {
	testService *service.TestService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(testService *service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// List godoc
// GET /api/v1/tests?page=1&per_page=10
// Lists active tests with answer-free summaries for the catalog.
func (h *TestHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	tests, pagination, err := h.testService.List(c.Request.Context(), true, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	summaries := make([]gin.H, 0, len(tests))
	for _, t := range tests {
		summaries = append(summaries, gin.H{
			"id":               t.ID,
			"title":            t.Title,
			"description":      t.Description,
			"duration_minutes": t.DurationMinutes,
			"price":            t.Price,
			"question_count":   t.QuestionCount(),
			"total_marks":      t.TotalMarks(),
			"section_count":    len(t.Sections),
		})
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"tests": summaries}, pagination)
}

// IssuePaper godoc
// GET /api/v1/tests/:test_id/paper
// Issues a freshly randomized, answer-stripped paper to the caller.
func (h *TestHandler) IssuePaper(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	paper, err := h.testService.IssuePaper(c.Request.Context(), testID, claims.UserID, claims.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTestNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrTestNotActive):
			response.Fail(c, http.StatusBadRequest, response.ErrTestNotActive)
		case errors.Is(err, service.ErrAccessRequired):
			response.Fail(c, http.StatusForbidden, response.ErrAccessRequired)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": paper})
}

// ─── Admin endpoints ─────────────────────────────────────────────────

// AdminList godoc
// GET /api/v1/admin/tests?page=1&per_page=10
// Lists all tests including inactive ones, with full definitions.
func (h *TestHandler) AdminList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	tests, pagination, err := h.testService.List(c.Request.Context(), false, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"tests": tests}, pagination)
}

// AdminGet godoc
// GET /api/v1/admin/tests/:test_id
// Returns the full test definition including correct answers.
func (h *TestHandler) AdminGet(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	test, err := h.testService.Get(c.Request.Context(), testID)
	if err != nil {
		if errors.Is(err, service.ErrTestNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// Create godoc
// POST /api/v1/admin/tests
// Creates a new test definition.
func (h *TestHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.testService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, err.Error())
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// Update godoc
// PUT /api/v1/admin/tests/:test_id
// Applies partial edits to an existing test.
func (h *TestHandler) Update(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.testService.Update(c.Request.Context(), testID, &req)
	if err != nil {
		if errors.Is(err, service.ErrTestNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// Deactivate godoc
// DELETE /api/v1/admin/tests/:test_id
// Marks a test inactive. Attempts against it remain readable.
func (h *TestHandler) Deactivate(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.testService.Deactivate(c.Request.Context(), testID); err != nil {
		if errors.Is(err, service.ErrTestNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
