package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/discussion-activity-api/internal/config"
	"github.com/discussion-activity-api/internal/models"
	"github.com/discussion-activity-api/internal/service"
	"github.com/discussion-activity-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Identity headers set by the authenticating proxy
const (
	remoteUserHeader   = "X-Remote-User"
	remoteGroupsHeader = "X-Remote-Groups"
	truncatedHeader    = "X-Scan-Truncated"
)

const (
	formatJSON   = "json"
	formatNDJSON = "ndjson"
)

// DiscussionHandler handles discussion endpoints
type DiscussionHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewDiscussionHandler creates a new DiscussionHandler
func NewDiscussionHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *DiscussionHandler {
	return &DiscussionHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "discussion").Logger(),
	}
}

// requestUser reads the caller's identity from the proxy headers
func requestUser(c *gin.Context) models.RequestUser {
	user := models.RequestUser{Name: strings.TrimSpace(c.GetHeader(remoteUserHeader))}
	for _, g := range strings.Split(c.GetHeader(remoteGroupsHeader), ",") {
		if g = strings.TrimSpace(g); g != "" {
			user.Groups = append(user.Groups, g)
		}
	}
	return user
}

func (h *DiscussionHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.cfg.Server.WriteTimeout > 0 {
		return contextWithTimeout(c, h.cfg.Server.WriteTimeout)
	}
	return context.WithCancel(c.Request.Context())
}

func badRequest(c *gin.Context, v *validation.Validator) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid query parameters",
		"details": v.Errors(),
	})
}

// ColumnHeader handles GET /v1/discussion/header
func (h *DiscussionHandler) ColumnHeader(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"header": h.services.Discussion.ColumnHeader()})
}

// IsModerator handles GET /v1/moderator
func (h *DiscussionHandler) IsModerator(c *gin.Context) {
	user := requestUser(c)
	c.JSON(http.StatusOK, gin.H{
		"user":         user.Name,
		"is_moderator": h.services.Discussion.IsModerator(user),
	})
}

// ThreadLink handles GET /v1/threads/link?id=...&num=...
func (h *DiscussionHandler) ThreadLink(c *gin.Context) {
	v := validation.NewValidator()
	pageID := v.PageID("id", c.Query("id"))
	count := v.Count("num", c.Query("num"))
	if !v.Valid() {
		badRequest(c, v)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	link, err := h.services.Discussion.ThreadLink(ctx, pageID, count)
	if err != nil {
		h.fail(c, err, "Failed to render thread link")
		return
	}
	c.JSON(http.StatusOK, link)
}

// ListThreads handles GET /v1/threads?ns=...&num=...&skip_empty=...
func (h *DiscussionHandler) ListThreads(c *gin.Context) {
	v := validation.NewValidator()
	q := models.ThreadQuery{
		Namespace: v.Namespace("ns", c.Query("ns")),
		Limit:     v.Limit("num", c.Query("num")),
		SkipEmpty: v.Flag("skip_empty", c.Query("skip_empty")),
		User:      requestUser(c),
	}
	if !v.Valid() {
		badRequest(c, v)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	threads, err := h.services.Discussion.ListThreads(ctx, q)
	if err != nil {
		h.fail(c, err, "Failed to list threads")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"namespace": q.Namespace,
		"count":     len(threads),
		"threads":   threads,
	})
}

// ListRecentComments handles GET /v1/comments?ns=...&num=...&first=...&format=...
func (h *DiscussionHandler) ListRecentComments(c *gin.Context) {
	v := validation.NewValidator()
	q := models.CommentQuery{
		Namespace: v.Namespace("ns", c.Query("ns")),
		Limit:     v.Limit("num", c.Query("num")),
		Offset:    v.Offset("first", c.Query("first")),
		User:      requestUser(c),
	}
	format := v.OneOf("format", c.Query("format"), formatJSON, formatJSON, formatNDJSON)
	if !v.Valid() {
		badRequest(c, v)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.services.Discussion.ListRecentComments(ctx, q)
	if err != nil {
		h.fail(c, err, "Failed to list recent comments")
		return
	}

	c.Header(truncatedHeader, strconv.FormatBool(result.Truncated))
	if format == formatNDJSON {
		h.streamComments(c, result.Comments)
		return
	}
	c.JSON(http.StatusOK, result)
}

// streamComments writes one JSON object per line, flushing as it goes
func (h *DiscussionHandler) streamComments(c *gin.Context, comments []models.CommentSummary) {
	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)

	enc := json.NewEncoder(c.Writer)
	for i := range comments {
		if err := enc.Encode(&comments[i]); err != nil {
			// Can't return error JSON after streaming has started
			h.log.Error().Err(err).Int("written", i).Msg("Comment stream interrupted")
			return
		}
		if (i+1)%100 == 0 {
			c.Writer.Flush()
		}
	}
	c.Writer.Flush()
}

func (h *DiscussionHandler) fail(c *gin.Context, err error, msg string) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		h.log.Warn().Err(err).Msg(msg)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
		return
	}
	h.log.Error().Err(err).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
