package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Saba3939/mood-harbor/internal/domain"
	"github.com/Saba3939/mood-harbor/internal/service"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pinger is whatever the health endpoint should probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Shares     *service.ShareService
	Harbor     *service.HarborService
	Reaper     *service.Reaper
	Health     Pinger
	CronSecret string
}

func NewHandler(shares *service.ShareService, harbor *service.HarborService, reaper *service.Reaper, health Pinger, cronSecret string) *Handler {
	return &Handler{Shares: shares, Harbor: harbor, Reaper: reaper, Health: health, CronSecret: cronSecret}
}

type createShareReq struct {
	MoodRecordID string `json:"mood_record_id"`
	ShareType    string `json:"share_type"`
	Feeling      string `json:"feeling"`
	Message      string `json:"message"`
}

// CreateShare godoc
// @Summary Create an ephemeral share (visible for 24h)
// @Tags harbor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body createShareReq true "mood_record_id, share_type, feeling, message(optional, max 10 chars)"
// @Success 201 {object} domain.Share
// @Failure 400 {object} map[string]any
// @Router /api/harbor/shares [post]
func (h *Handler) CreateShare(c *gin.Context) {
	var in createShareReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	uid, err := primitive.ObjectIDFromHex(c.GetString("uid"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid uid"})
		return
	}
	recordID, err := primitive.ObjectIDFromHex(in.MoodRecordID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mood_record_id"})
		return
	}

	sh, err := h.Shares.CreateShare(c.Request.Context(), service.CreateShareParams{
		UserID:       uid,
		MoodRecordID: recordID,
		ShareType:    in.ShareType,
		Feeling:      in.Feeling,
		Message:      in.Message,
	})
	if err != nil {
		var tooLong domain.MessageTooLongError
		switch {
		case errors.Is(err, domain.ErrInvalidShareType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid share type"})
		case errors.Is(err, domain.ErrInvalidFeeling):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feeling"})
		case errors.As(err, &tooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message too long", "max": tooLong.Max})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, sh)
}

// DeleteShare godoc
// @Summary Delete own share
// @Tags harbor
// @Security BearerAuth
// @Param id path string true "share id"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/harbor/shares/{id} [delete]
func (h *Handler) DeleteShare(c *gin.Context) {
	uid, err := primitive.ObjectIDFromHex(c.GetString("uid"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid uid"})
		return
	}
	shareID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		// an unparsable id can't name an existing share
		c.JSON(http.StatusNotFound, gin.H{"error": "share not found"})
		return
	}

	if err := h.Shares.DeleteShare(c.Request.Context(), shareID, uid); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "share not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetFeed godoc
// @Summary Harbor feed: visible shares of one type
// @Tags harbor
// @Security BearerAuth
// @Produce json
// @Param share_type query string true "support_needed|joy_share|achievement"
// @Param time_of_day query string false "morning|afternoon|evening|night"
// @Param sort_by query string false "newest|most_reactions"
// @Param limit query int false "1-100, default 20"
// @Param offset query int false "default 0"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /api/harbor/feed [get]
func (h *Handler) GetFeed(c *gin.Context) {
	viewerID, _ := primitive.ObjectIDFromHex(c.GetString("uid"))

	filters := domain.FeedFilters{
		ShareType: domain.ShareType(c.Query("share_type")),
		TimeOfDay: domain.TimeOfDay(c.Query("time_of_day")),
		SortBy:    domain.SortBy(c.Query("sort_by")),
		Limit:     intQuery(c, "limit"),
		Offset:    intQuery(c, "offset"),
	}

	posts, err := h.Harbor.GetFeed(c.Request.Context(), viewerID, filters)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filters"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// StreamFeed pushes feed posts for one share type over SSE. Advisory only:
// clients re-query the feed for correctness, this just lowers latency.
func (h *Handler) StreamFeed(c *gin.Context) {
	shareType := c.Query("share_type")
	if !domain.IsValidShareType(shareType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filters"})
		return
	}
	viewerID, _ := primitive.ObjectIDFromHex(c.GetString("uid"))

	ch := make(chan domain.FeedPost, 16)
	cancel := h.Harbor.SubscribeToFeed(domain.ShareType(shareType), viewerID, func(p domain.FeedPost) {
		select {
		case ch <- p:
		default: // slow client, drop
		}
	})
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case post := <-ch:
			c.SSEvent("post", post)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// RunReaper is the scheduler trigger. It rejects callers without the shared
// cron secret before touching the store.
func (h *Handler) RunReaper(c *gin.Context) {
	if h.CronSecret == "" || c.GetHeader("Authorization") != "Bearer "+h.CronSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.Reaper.Sweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Healthz(c *gin.Context) {
	if h.Health != nil {
		if err := h.Health.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
