package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/musacbusiness/linkedin-post-manager/internal/apperr"
	"github.com/musacbusiness/linkedin-post-manager/internal/entity"
	"github.com/musacbusiness/linkedin-post-manager/internal/querycache"
	"github.com/musacbusiness/linkedin-post-manager/internal/repo/persistent"
	"github.com/musacbusiness/linkedin-post-manager/pkg/logger"
)

// ImageGenerator produces an image for a prompt. Implementations poll the
// external service until done; the context bounds the whole exchange.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// ContentReviser rewrites post text and crafts image prompts. Revise
// returns the revised content and a short summary of what changed.
type ContentReviser interface {
	Revise(ctx context.Context, original, instruction string) (revised, changeSummary string, err error)
	ImagePrompt(ctx context.Context, content string) (string, error)
}

// ImageArchiver copies a generated image to durable storage and returns the
// durable URL.
type ImageArchiver interface {
	ArchiveImage(key, sourceURL string) (string, error)
}

// EventPublisher emits lifecycle events for the external scheduler,
// publisher and cleanup automations.
type EventPublisher interface {
	PublishPostEvent(event map[string]interface{}) error
}

// QueryCache is the memoization layer in front of Record Store reads.
type QueryCache interface {
	Get(shape querycache.Shape) ([]*entity.Post, bool)
	Put(shape querycache.Shape, posts []*entity.Post)
	InvalidateAll()
}

type PostUseCase interface {
	Query(shape querycache.Shape) ([]*entity.Post, error)
	GetPost(id string) (*entity.Post, error)
	SearchPosts(query string) ([]*entity.Post, error)
	StatusCounts() (map[entity.PostStatus]int, error)
	CountPosts() (int64, error)

	CreatePost(title, content, topic, source string) (*entity.Post, error)
	UpdatePost(id string, title, content *string) (*entity.Post, error)
	DeletePost(id string) error

	Approve(id string) (*entity.Post, error)
	Reject(id string) (*entity.Post, error)
	RequestImageGeneration(id string) (*entity.Post, error)
	RequestRevision(id, prompt string, revisionType entity.RevisionType) (*entity.Post, error)

	BatchApply(ids []string, op BatchOperation, progress ProgressFunc) ([]BatchResult, error)
}

type postUseCase struct {
	repo              persistent.PostRepository
	cache             QueryCache
	generator         ImageGenerator
	reviser           ContentReviser
	archiver          ImageArchiver
	events            EventPublisher
	logger            *logger.Logger
	generationTimeout time.Duration
	revisionTimeout   time.Duration
	now               func() time.Time
}

func NewPostUseCase(
	repo persistent.PostRepository,
	cache QueryCache,
	generator ImageGenerator,
	reviser ContentReviser,
	archiver ImageArchiver,
	events EventPublisher,
	log *logger.Logger,
	generationTimeout time.Duration,
	revisionTimeout time.Duration,
) PostUseCase {
	return &postUseCase{
		repo:              repo,
		cache:             cache,
		generator:         generator,
		reviser:           reviser,
		archiver:          archiver,
		events:            events,
		logger:            log,
		generationTimeout: generationTimeout,
		revisionTimeout:   revisionTimeout,
		now:               time.Now,
	}
}

func (uc *postUseCase) Query(shape querycache.Shape) ([]*entity.Post, error) {
	if posts, fresh := uc.cache.Get(shape); fresh {
		return posts, nil
	}

	var (
		posts []*entity.Post
		err   error
	)
	switch shape.Kind {
	case querycache.ShapeByStatuses:
		posts, err = uc.repo.ListByStatuses(shape.Statuses)
	case querycache.ShapeByDateRange:
		posts, err = uc.repo.ListScheduledBetween(shape.Start, shape.End)
	default:
		posts, err = uc.repo.List()
	}
	if err != nil {
		return nil, err
	}

	uc.cache.Put(shape, posts)
	return posts, nil
}

func (uc *postUseCase) GetPost(id string) (*entity.Post, error) {
	return uc.repo.GetByID(id)
}

func (uc *postUseCase) SearchPosts(query string) ([]*entity.Post, error) {
	posts, err := uc.Query(querycache.AllPosts())
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matching := make([]*entity.Post, 0)
	for _, post := range posts {
		if strings.Contains(strings.ToLower(post.Title), needle) ||
			strings.Contains(strings.ToLower(post.Content), needle) {
			matching = append(matching, post)
		}
	}
	return matching, nil
}

func (uc *postUseCase) StatusCounts() (map[entity.PostStatus]int, error) {
	posts, err := uc.Query(querycache.AllPosts())
	if err != nil {
		return nil, err
	}

	counts := make(map[entity.PostStatus]int)
	for _, post := range posts {
		counts[post.Status]++
	}
	return counts, nil
}

func (uc *postUseCase) CountPosts() (int64, error) {
	return uc.repo.Count()
}

func (uc *postUseCase) CreatePost(title, content, topic, source string) (*entity.Post, error) {
	now := uc.now().UTC()
	post := &entity.Post{
		Title:     title,
		Content:   content,
		Topic:     topic,
		Source:    source,
		Status:    entity.StatusDraft,
		Notes:     entity.NoteLine(now, "user: create", "post created"),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.repo.Create(post); err != nil {
		return nil, err
	}

	uc.cache.InvalidateAll()
	uc.publishEvent("post_created", post.ID, "", post.Status)
	return post, nil
}

func (uc *postUseCase) UpdatePost(id string, title, content *string) (*entity.Post, error) {
	fields := make(map[string]interface{})
	if title != nil {
		fields["title"] = *title
	}
	if content != nil {
		fields["content"] = *content
	}
	if len(fields) == 0 {
		return uc.repo.GetByID(id)
	}

	post, err := uc.repo.UpdateFields(id, fields)
	if err != nil {
		return nil, err
	}

	uc.cache.InvalidateAll()
	return post, nil
}

func (uc *postUseCase) DeletePost(id string) error {
	if err := uc.repo.Delete(id); err != nil {
		return err
	}
	uc.cache.InvalidateAll()
	return nil
}

// publishEvent hands a lifecycle event to the broker, if one is wired.
// Publishing is best-effort and off the request path.
func (uc *postUseCase) publishEvent(trigger, postID string, from, to entity.PostStatus) {
	if uc.events == nil {
		return
	}

	event := map[string]interface{}{
		"trigger": trigger,
		"post_id": postID,
		"from":    string(from),
		"to":      string(to),
	}

	go func() {
		if err := uc.events.PublishPostEvent(event); err != nil {
			uc.logger.Error("Failed to publish post event %s for post %s: %v", trigger, postID, err)
		}
	}()
}

// classify maps an external-service error to Timeout when the bounding
// context expired, otherwise to the given kind.
func classify(err error, kind apperr.Kind, op string) error {
	if apperr.KindOf(err) != "" {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindTimeout, err, "%s timed out", op)
	}
	return apperr.Wrap(kind, err, "%s failed", op)
}
