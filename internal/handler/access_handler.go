package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prepstack/prepstack-backend/internal/response"
	"github.com/prepstack/prepstack-backend/internal/service"
	"github.com/prepstack/prepstack-backend/internal/validator"
)

// AccessHandler handles admin access-grant endpoints for paid tests.
type AccessHandler struct {
	accessService *service.AccessService
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(accessService *service.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

type grantRequest struct {
	UserID int    `json:"user_id" binding:"required,min=1"`
	Source string `json:"source" binding:"omitempty,max=64"`
}

// Grant godoc
// POST /api/v1/admin/tests/:test_id/access
// Grants a user access to a paid test.
func (h *AccessHandler) Grant(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req grantRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.accessService.Grant(c.Request.Context(), testID, req.UserID, req.Source); err != nil {
		switch {
		case errors.Is(err, service.ErrTestNotFound), errors.Is(err, service.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{})
}

// Revoke godoc
// DELETE /api/v1/admin/tests/:test_id/access/:user_id
// Removes a user's access grant.
func (h *AccessHandler) Revoke(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil || userID < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.accessService.Revoke(c.Request.Context(), testID, userID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// List godoc
// GET /api/v1/admin/tests/:test_id/access
// Lists all grants on a test.
func (h *AccessHandler) List(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	grants, err := h.accessService.ListByTest(c.Request.Context(), testID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"grants": grants})
}
