package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/musacbusiness/linkedin-post-manager/internal/apperr"
	"github.com/musacbusiness/linkedin-post-manager/internal/entity"
	"github.com/musacbusiness/linkedin-post-manager/internal/querycache"
	"github.com/musacbusiness/linkedin-post-manager/internal/usecase"
	"github.com/musacbusiness/linkedin-post-manager/pkg/logger"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

// respondError maps error kinds to HTTP statuses and always attaches the
// kind, so the UI can render actionable guidance instead of a generic
// failure.
func (h *PostHandler) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindInvalidTransition:
		status = http.StatusConflict
	case apperr.KindTimeout:
		status = http.StatusGatewayTimeout
	case apperr.KindGenerationFailed, apperr.KindRevisionFailed:
		status = http.StatusBadGateway
	case apperr.KindStoreUnavailable:
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"error": err.Error(), "kind": string(kind)})
}

// ListPosts godoc
// @Summary      List posts
// @Description  List posts, optionally filtered by status set or scheduled date range
// @Tags         posts
// @Produce      json
// @Param        status query []string false "Status filter (repeatable)"
// @Param        start query string false "Scheduled range start (RFC3339)"
// @Param        end query string false "Scheduled range end (RFC3339)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	shape, err := h.shapeFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	posts, err := h.postUseCase.Query(shape)
	if err != nil {
		h.logger.Error("Failed to list posts: %v", err)
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

func (h *PostHandler) shapeFromQuery(c *gin.Context) (querycache.Shape, error) {
	// status accepts repeated params and comma-separated lists
	if statusValues := c.QueryArray("status"); len(statusValues) > 0 {
		var statuses []entity.PostStatus
		for _, value := range statusValues {
			for _, part := range strings.Split(value, ",") {
				status, err := entity.ParseStatus(strings.TrimSpace(part))
				if err != nil {
					return querycache.Shape{}, err
				}
				statuses = append(statuses, status)
			}
		}
		return querycache.ByStatuses(statuses...), nil
	}

	startValue := c.Query("start")
	endValue := c.Query("end")
	if startValue != "" && endValue != "" {
		start, err := time.Parse(time.RFC3339, startValue)
		if err != nil {
			return querycache.Shape{}, err
		}
		end, err := time.Parse(time.RFC3339, endValue)
		if err != nil {
			return querycache.Shape{}, err
		}
		return querycache.ByDateRange(start, end), nil
	}

	return querycache.AllPosts(), nil
}

// GetPost godoc
// @Summary      Get post by ID
// @Tags         posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200  {object}  entity.Post
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postUseCase.GetPost(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// SearchPosts godoc
// @Summary      Search posts by title or content
// @Tags         posts
// @Produce      json
// @Param        q query string true "Search query"
// @Success      200  {object}  map[string]interface{}
// @Router       /posts/search [get]
func (h *PostHandler) SearchPosts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	posts, err := h.postUseCase.SearchPosts(query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

// GetStats godoc
// @Summary      Post counts per status
// @Tags         posts
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /posts/stats [get]
func (h *PostHandler) GetStats(c *gin.Context) {
	counts, err := h.postUseCase.StatusCounts()
	if err != nil {
		h.respondError(c, err)
		return
	}

	total, err := h.postUseCase.CountPosts()
	if err != nil {
		h.respondError(c, err)
		return
	}

	byStatus := make(map[string]int, len(counts))
	for status, count := range counts {
		byStatus[string(status)] = count
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "by_status": byStatus})
}

type CreatePostRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Topic   string `json:"topic"`
	Source  string `json:"source"`
}

// CreatePost godoc
// @Summary      Create a new draft post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        post body CreatePostRequest true "Post fields"
// @Success      201  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postUseCase.CreatePost(req.Title, req.Content, req.Topic, req.Source)
	if err != nil {
		h.logger.Error("Failed to create post: %v", err)
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

type UpdatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// UpdatePost godoc
// @Summary      Update post title or content
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id path string true "Post ID"
// @Param        post body UpdatePostRequest true "Fields to update"
// @Success      200  {object}  entity.Post
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [put]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postUseCase.UpdatePost(c.Param("id"), req.Title, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Irreversible. The UI must confirm with the user before calling.
// @Tags         posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.postUseCase.DeletePost(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// ApprovePost godoc
// @Summary      Approve a post for scheduling
// @Description  Moves a Draft or Pending Review post to Approved; the external scheduler picks it up from there.
// @Tags         lifecycle
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200  {object}  entity.Post
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /posts/{id}/approve [post]
func (h *PostHandler) ApprovePost(c *gin.Context) {
	post, err := h.postUseCase.Approve(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// RejectPost godoc
// @Summary      Reject a post
// @Description  The external cleanup job deletes Rejected posts after 7 days.
// @Tags         lifecycle
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200  {object}  entity.Post
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /posts/{id}/reject [post]
func (h *PostHandler) RejectPost(c *gin.Context) {
	post, err := h.postUseCase.Reject(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// GenerateImage godoc
// @Summary      Generate an image for a post
// @Description  Moves the post to Pending Review, then generates an image. Can take minutes.
// @Tags         lifecycle
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200  {object}  entity.Post
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      504  {object}  map[string]string
// @Router       /posts/{id}/generate-image [post]
func (h *PostHandler) GenerateImage(c *gin.Context) {
	post, err := h.postUseCase.RequestImageGeneration(c.Param("id"))
	if err != nil {
		h.logger.Error("Image generation failed for post %s: %v", c.Param("id"), err)
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

type RevisePostRequest struct {
	Prompt       string `json:"prompt" binding:"required"`
	RevisionType string `json:"revision_type" binding:"required"`
}

// RevisePost godoc
// @Summary      Revise a post's content and/or image
// @Description  Status does not change; the revision prompt is cleared once applied.
// @Tags         lifecycle
// @Accept       json
// @Produce      json
// @Param        id path string true "Post ID"
// @Param        revision body RevisePostRequest true "Revision prompt and type (Post Only, Image Only, Both)"
// @Success      200  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /posts/{id}/revise [post]
func (h *PostHandler) RevisePost(c *gin.Context) {
	var req RevisePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	revisionType, err := entity.ParseRevisionType(req.RevisionType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postUseCase.RequestRevision(c.Param("id"), req.Prompt, revisionType)
	if err != nil {
		h.logger.Error("Revision failed for post %s: %v", c.Param("id"), err)
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

type BatchRequest struct {
	IDs       []string `json:"ids"`
	Operation string   `json:"operation" binding:"required,oneof=approve reject delete"`
}

// BatchApply godoc
// @Summary      Apply approve, reject or delete to a list of posts
// @Description  Items are processed in order; one item's failure does not abort the batch.
// @Tags         lifecycle
// @Accept       json
// @Produce      json
// @Param        batch body BatchRequest true "Post IDs and operation"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /posts/batch [post]
func (h *PostHandler) BatchApply(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.postUseCase.BatchApply(req.IDs, usecase.BatchOperation(req.Operation), func(completed, total int) {
		h.logger.Info("Batch %s progress: %d/%d", req.Operation, completed, total)
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	succeeded := 0
	for _, result := range results {
		if result.Success {
			succeeded++
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "succeeded": succeeded, "total": len(results)})
}
