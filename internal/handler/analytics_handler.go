package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prepstack/prepstack-backend/internal/middleware"
	"github.com/prepstack/prepstack-backend/internal/response"
	"github.com/prepstack/prepstack-backend/internal/service"
)

// AnalyticsHandler handles analytics and leaderboard endpoints.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// TestAnalytics godoc
// GET /api/v1/tests/:test_id/analytics
// Returns aggregate analytics for a test plus the caller's standing.
func (h *AnalyticsHandler) TestAnalytics(c *gin.Context) {
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

	analytics, err := h.analyticsService.GetTestAnalytics(c.Request.Context(), testID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	userStats, err := h.analyticsService.GetUserStats(c.Request.Context(), testID, claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"analytics":  analytics,
		"user_stats": userStats,
	})
}

// Leaderboard godoc
// GET /api/v1/tests/:test_id/leaderboard
// Returns the ranked top attempts for a test.
func (h *AnalyticsHandler) Leaderboard(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	leaderboard, err := h.analyticsService.GetLeaderboard(c.Request.Context(), testID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"leaderboard": leaderboard})
}
