package handler

import (
	"errors"
	"net/http"
	"strconv"

	"forum-bans/internal/logger"
	"forum-bans/internal/service"

	"github.com/gin-gonic/gin"
)

// BanHandler handles ban-related HTTP requests
type BanHandler struct {
	banService   *service.BanService
	queryService *service.QueryService
}

// NewBanHandler creates a new BanHandler
func NewBanHandler(banService *service.BanService, queryService *service.QueryService) *BanHandler {
	return &BanHandler{
		banService:   banService,
		queryService: queryService,
	}
}

// writeError maps service errors onto HTTP status codes. Anything that
// is not an InvalidRequestError or NotFoundError is an internal failure
// and gets the generic fallback message.
func writeError(c *gin.Context, err error, fallback string) {
	var notFound *service.NotFoundError
	var invalid *service.InvalidRequestError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Message})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Message})
	default:
		logger.Errorf("%s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// BanUser handles POST /users/bans
func (h *BanHandler) BanUser(c *gin.Context) {
	var req service.BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ban, err := h.banService.Ban(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to ban user")
		return
	}

	c.JSON(http.StatusCreated, ban)
}

// UnbanUser handles POST /users/bans/:ban_id/unban
func (h *BanHandler) UnbanUser(c *gin.Context) {
	banID, err := strconv.ParseInt(c.Param("ban_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ban id"})
		return
	}

	var req service.UnbanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.banService.Unban(c.Request.Context(), banID, req)
	if err != nil {
		writeError(c, err, "Failed to unban user")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListBannedUsers handles GET /users/banned
func (h *BanHandler) ListBannedUsers(c *gin.Context) {
	includeInactive := false
	if raw := c.Query("include_inactive"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid include_inactive value"})
			return
		}
		includeInactive = parsed
	}

	filter := service.ListBansFilter{
		CourseID:        c.Query("course_id"),
		OrgKey:          c.Query("org_key"),
		Scope:           c.Query("scope"),
		IncludeInactive: includeInactive,
	}

	bans, err := h.queryService.ListBans(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err, "Failed to fetch banned users")
		return
	}

	c.JSON(http.StatusOK, bans)
}

// GetBan handles GET /users/bans/:ban_id
func (h *BanHandler) GetBan(c *gin.Context) {
	banID, err := strconv.ParseInt(c.Param("ban_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ban id"})
		return
	}

	ban, err := h.queryService.GetBan(c.Request.Context(), banID)
	if err != nil {
		writeError(c, err, "Failed to fetch ban details")
		return
	}

	c.JSON(http.StatusOK, ban)
}

// BanStatus handles GET /users/ban_status
func (h *BanHandler) BanStatus(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id value"})
		return
	}
	courseID := c.Query("course_id")
	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course_id is required"})
		return
	}

	status, err := h.queryService.EffectiveBanScope(c.Request.Context(), userID, courseID)
	if err != nil {
		writeError(c, err, "Failed to fetch ban status")
		return
	}

	c.JSON(http.StatusOK, status)
}
