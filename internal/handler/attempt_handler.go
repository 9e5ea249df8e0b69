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

// AttemptHandler handles attempt submission and retrieval endpoints.
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// Submit godoc
// POST /api/v1/tests/:test_id/attempts
// Scores the submitted answers server-side and records the attempt.
func (h *AttemptHandler) Submit(c *gin.Context) {
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

	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.attemptService.Submit(c.Request.Context(), testID, claims.UserID, claims.Role, &req)
	if err != nil {
		var timingErr *service.InvalidTimingError
		switch {
		case errors.As(err, &timingErr):
			response.FailWithMessage(c, http.StatusBadRequest, response.ErrInvalidTiming, timingErr.Reason)
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

	response.Success(c, http.StatusCreated, gin.H{"result": result})
}

// ListMine godoc
// GET /api/v1/tests/:test_id/attempts
// Lists the caller's attempts for a test, most recent first.
func (h *AttemptHandler) ListMine(c *gin.Context) {
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

	attempts, err := h.attemptService.ListMine(c.Request.Context(), testID, claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// Get godoc
// GET /api/v1/attempts/:attempt_id
// Returns one attempt with its full answer breakdown. Owner or admin only.
func (h *AttemptHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.Get(c.Request.Context(), attemptID, claims.UserID, claims.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotOwner):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// AdminResults godoc
// GET /api/v1/admin/tests/:test_id/results?page=1&per_page=10
// Lists attempt summaries for a test, ranked, joined with user names.
func (h *AttemptHandler) AdminResults(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	summaries, total, err := h.attemptService.ListSummaries(c.Request.Context(), testID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"results": summaries,
		"total":   total,
	})
}
