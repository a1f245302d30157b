package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/musacbusiness/linkedin-post-manager/internal/apperr"
	"github.com/musacbusiness/linkedin-post-manager/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRequestImageGeneration_Success(t *testing.T) {
	mockRepo := new(MockPostRepository)
	cache := newSpyCache()
	mockGenerator := new(MockImageGenerator)
	mockReviser := new(MockContentReviser)
	uc := newTestUseCase(mockRepo, cache, mockGenerator, mockReviser)

	draft := &entity.Post{ID: "post-1", Status: entity.StatusDraft, Content: "AI is transforming work", Notes: ""}
	requestNote := "2025-06-15T10:00:00Z [user: request image] image generation requested"
	pending := &entity.Post{ID: "post-1", Status: entity.StatusPendingReview, Content: draft.Content, Notes: requestNote}
	withImage := &entity.Post{ID: "post-1", Status: entity.StatusPendingReview, Content: draft.Content, ImageURL: "https://images.example.com/img.png"}

	mockRepo.On("GetByID", "post-1").Return(draft, nil)
	mockRepo.On("UpdateFields", "post-1", map[string]interface{}{
		"status": "Pending Review",
		"notes":  requestNote,
	}).Return(pending, nil).Once()

	mockReviser.On("ImagePrompt", mock.Anything, draft.Content).Return("crafted image prompt", nil)
	mockGenerator.On("GenerateImage", mock.Anything, "crafted image prompt").Return("https://images.example.com/img.png", nil)

	mockRepo.On("UpdateFields", "post-1", map[string]interface{}{
		"image_url": "https://images.example.com/img.png",
		"notes":     requestNote + "\n2025-06-15T10:00:00Z [generation] image generated",
	}).Return(withImage, nil).Once()

	post, err := uc.RequestImageGeneration("post-1")
	assert.NoError(t, err)
	assert.Equal(t, "https://images.example.com/img.png", post.ImageURL)
	assert.Equal(t, entity.StatusPendingReview, post.Status)
	assert.Equal(t, 2, cache.invalidations)
	mockRepo.AssertExpectations(t)
	mockGenerator.AssertExpectations(t)
}

func TestRequestImageGeneration_FailureKeepsPendingReview(t *testing.T) {
	mockRepo := new(MockPostRepository)
	cache := newSpyCache()
	mockGenerator := new(MockImageGenerator)
	mockReviser := new(MockContentReviser)
	uc := newTestUseCase(mockRepo, cache, mockGenerator, mockReviser)

	draft := &entity.Post{ID: "post-1", Status: entity.StatusDraft, Content: "AI content", Notes: ""}
	requestNote := "2025-06-15T10:00:00Z [user: request image] image generation requested"
	pending := &entity.Post{ID: "post-1", Status: entity.StatusPendingReview, Content: draft.Content, Notes: requestNote}

	mockRepo.On("GetByID", "post-1").Return(draft, nil)
	mockRepo.On("UpdateFields", "post-1", map[string]interface{}{
		"status": "Pending Review",
		"notes":  requestNote,
	}).Return(pending, nil).Once()

	mockReviser.On("ImagePrompt", mock.Anything, draft.Content).Return("crafted image prompt", nil)
	mockGenerator.On("GenerateImage", mock.Anything, "crafted image prompt").Return("", errors.New("model exploded"))

	// The failure write touches only the notes; the status stays Pending Review
	mockRepo.On("UpdateFields", "post-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		notes, ok := fields["notes"].(string)
		return ok && len(fields) == 1 && strings.Contains(notes, "[failure] image generation failed")
	})).Return(pending, nil).Once()

	_, err := uc.RequestImageGeneration("post-1")
	assert.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindGenerationFailed))
	assert.Equal(t, 2, cache.invalidations)
	mockRepo.AssertExpectations(t)
}

func TestRequestImageGeneration_TimeoutKind(t *testing.T) {
	mockRepo := new(MockPostRepository)
	cache := newSpyCache()
	mockGenerator := new(MockImageGenerator)
	mockReviser := new(MockContentReviser)
	uc := newTestUseCase(mockRepo, cache, mockGenerator, mockReviser)

	draft := &entity.Post{ID: "post-1", Status: entity.StatusDraft, Content: "AI content"}
	pending := &entity.Post{ID: "post-1", Status: entity.StatusPendingReview, Content: draft.Content}

	mockRepo.On("GetByID", "post-1").Return(draft, nil)
	mockRepo.On("UpdateFields", "post-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		return fields["status"] == "Pending Review"
	})).Return(pending, nil).Once()
	mockReviser.On("ImagePrompt", mock.Anything, mock.Anything).Return("prompt", nil)
	mockGenerator.On("GenerateImage", mock.Anything, "prompt").Return("", context.DeadlineExceeded)
	mockRepo.On("UpdateFields", "post-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		_, ok := fields["notes"]
		return ok && len(fields) == 1
	})).Return(pending, nil).Once()

	_, err := uc.RequestImageGeneration("post-1")
	assert.True(t, apperr.Is(err, apperr.KindTimeout))
}

func TestRequestImageGeneration_FallbackPrompt(t *testing.T) {
	mockRepo := new(MockPostRepository)
	cache := newSpyCache()
	mockGenerator := new(MockImageGenerator)
	uc := newTestUseCase(mockRepo, cache, mockGenerator, nil)

	draft := &entity.Post{ID: "post-1", Status: entity.StatusApproved, Content: "short content"}
	pending := &entity.Post{ID: "post-1", Status: entity.StatusPendingReview, Content: draft.Content}
	final := &entity.Post{ID: "post-1", Status: entity.StatusPendingReview, Content: draft.Content, ImageURL: "https://images.example.com/img.png"}

	mockRepo.On("GetByID", "post-1").Return(draft, nil)
	mockRepo.On("UpdateFields", "post-1", mock.Anything).Return(pending, nil).Once()
	// Without a reviser the prompt is built from the post content
	mockGenerator.On("GenerateImage", mock.Anything, "Professional LinkedIn post illustration: short content").
		Return("https://images.example.com/img.png", nil)
	mockRepo.On("UpdateFields", "post-1", mock.Anything).Return(final, nil).Once()

	post, err := uc.RequestImageGeneration("post-1")
	assert.NoError(t, err)
	assert.Equal(t, "https://images.example.com/img.png", post.ImageURL)
	mockGenerator.AssertExpectations(t)
}

func TestRequestImageGeneration_EmptyContent(t *testing.T) {
	mockRepo := new(MockPostRepository)
	cache := newSpyCache()
	uc := newTestUseCase(mockRepo, cache, nil, nil)

	draft := &entity.Post{ID: "post-1", Status: entity.StatusDraft, Content: ""}
	mockRepo.On("GetByID", "post-1").Return(draft, nil)

	_, err := uc.RequestImageGeneration("post-1")
	assert.True(t, apperr.Is(err, apperr.KindGenerationFailed))
	mockRepo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything)
	assert.Equal(t, 0, cache.invalidations)
}

func TestRequestImageGeneration_InvalidStatus(t *testing.T) {
	mockRepo := new(MockPostRepository)
	cache := newSpyCache()
	uc := newTestUseCase(mockRepo, cache, nil, nil)

	pending := &entity.Post{ID: "post-1", Status: entity.StatusPendingReview, Content: "content"}
	mockRepo.On("GetByID", "post-1").Return(pending, nil)

	_, err := uc.RequestImageGeneration("post-1")
	assert.True(t, apperr.Is(err, apperr.KindInvalidTransition))
	mockRepo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything)
}

func TestRequestRevision_ContentOnly(t *testing.T) {
	mockRepo := new(MockPostRepository)
	cache := newSpyCache()
	mockReviser := new(MockContentReviser)
	uc := newTestUseCase(mockRepo, cache, nil, mockReviser)

	original := &entity.Post{ID: "post-1", Status: entity.StatusPendingReview, Content: "original text", Notes: ""}
	requestNote := "2025-06-15T10:00:00Z [user: request revision] revision requested (Post Only)"
	recorded := &entity.Post{
		ID: "post-1", Status: entity.StatusPendingReview, Content: "original text",
		RevisionPrompt: "make it shorter", RevisionType: entity.RevisionContent, Notes: requestNote,
	}
	revised := &entity.Post{ID: "post-1", Status: entity.StatusPendingReview, Content: "shorter text"}

	mockRepo.On("GetByID", "post-1").Return(original, nil)
	mockRepo.On("UpdateFields", "post-1", map[string]interface{}{
		"revision_prompt": "make it shorter",
		"revision_type":   "Post Only",
		"notes":           requestNote,
	}).Return(recorded, nil).Once()

	mockReviser.On("Revise", mock.Anything, "original text", "make it shorter").
		Return("shorter text", "tightened the wording", nil)

	// Revised content lands in the same write that clears the prompt
	mockRepo.On("UpdateFields", "post-1", map[string]interface{}{
		"revision_prompt": "",
		"revision_type":   "",
		"content":         "shorter text",
		"notes":           requestNote + "\n2025-06-15T10:00:00Z [revision] tightened the wording",
	}).Return(revised, nil).Once()

	post, err := uc.RequestRevision("post-1", "make it shorter", entity.RevisionContent)
	assert.NoError(t, err)
	assert.Equal(t, "shorter text", post.Content)
	assert.Equal(t, 2, cache.invalidations)
	mockRepo.AssertExpectations(t)
	mockReviser.AssertExpectations(t)
}

func TestRequestRevision_ImageOnly(t *testing.T) {
	mockRepo := new(MockPostRepository)
	cache := newSpyCache()
	mockGenerator := new(MockImageGenerator)
	mockReviser := new(MockContentReviser)
	uc := newTestUseCase(mockRepo, cache, mockGenerator, mockReviser)

	original := &entity.Post{ID: "post-1", Status: entity.StatusDraft, Content: "post text"}
	recorded := &entity.Post{ID: "post-1", Status: entity.StatusDraft, Content: "post text", RevisionPrompt: "darker colors"}
	final := &entity.Post{ID: "post-1", Status: entity.StatusDraft, Content: "post text", ImageURL: "https://images.example.com/v2.png"}

	mockRepo.On("GetByID", "post-1").Return(original, nil)
	mockRepo.On("UpdateFields", "post-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		return fields["revision_prompt"] == "darker colors"
	})).Return(recorded, nil).Once()

	mockReviser.On("ImagePrompt", mock.Anything, mock.Anything).Return("", errors.New("unavailable"))
	mockGenerator.On("GenerateImage", mock.Anything, mock.AnythingOfType("string")).
		Return("https://images.example.com/v2.png", nil)

	mockRepo.On("UpdateFields", "post-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		_, hasContent := fields["content"]
		return fields["revision_prompt"] == "" && fields["revision_type"] == "" &&
			fields["image_url"] == "https://images.example.com/v2.png" && !hasContent
	})).Return(final, nil).Once()

	post, err := uc.RequestRevision("post-1", "darker colors", entity.RevisionImage)
	assert.NoError(t, err)
	assert.Equal(t, "https://images.example.com/v2.png", post.ImageURL)
	mockRepo.AssertExpectations(t)
	mockReviser.AssertNotCalled(t, "Revise", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestRevision_EmptyPrompt(t *testing.T) {
	mockRepo := new(MockPostRepository)
	cache := newSpyCache()
	uc := newTestUseCase(mockRepo, cache, nil, nil)

	_, err := uc.RequestRevision("post-1", "", entity.RevisionContent)
	assert.True(t, apperr.Is(err, apperr.KindRevisionFailed))
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestRequestRevision_InvalidType(t *testing.T) {
	mockRepo := new(MockPostRepository)
	cache := newSpyCache()
	uc := newTestUseCase(mockRepo, cache, nil, nil)

	_, err := uc.RequestRevision("post-1", "prompt", entity.RevisionType("Video Only"))
	assert.True(t, apperr.Is(err, apperr.KindRevisionFailed))
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestRequestRevision_TerminalStatus(t *testing.T) {
	mockRepo := new(MockPostRepository)
	cache := newSpyCache()
	uc := newTestUseCase(mockRepo, cache, nil, nil)

	posted := &entity.Post{ID: "post-1", Status: entity.StatusPosted, Content: "live post"}
	mockRepo.On("GetByID", "post-1").Return(posted, nil)

	_, err := uc.RequestRevision("post-1", "prompt", entity.RevisionContent)
	assert.True(t, apperr.Is(err, apperr.KindInvalidTransition))
	mockRepo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything)
}

func TestRequestRevision_BothImageFailureOmitsUnpersistedSummary(t *testing.T) {
	mockRepo := new(MockPostRepository)
	cache := newSpyCache()
	mockGenerator := new(MockImageGenerator)
	mockReviser := new(MockContentReviser)
	uc := newTestUseCase(mockRepo, cache, mockGenerator, mockReviser)

	original := &entity.Post{ID: "post-1", Status: entity.StatusDraft, Content: "text"}
	recorded := &entity.Post{ID: "post-1", Status: entity.StatusDraft, Content: "text", RevisionPrompt: "redo everything"}

	mockRepo.On("GetByID", "post-1").Return(original, nil)
	mockRepo.On("UpdateFields", "post-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		return fields["revision_prompt"] == "redo everything"
	})).Return(recorded, nil).Once()

	mockReviser.On("Revise", mock.Anything, "text", "redo everything").
		Return("revised text", "rewrote the whole thing", nil)
	mockReviser.On("ImagePrompt", mock.Anything, mock.Anything).Return("prompt", nil)
	mockGenerator.On("GenerateImage", mock.Anything, mock.AnythingOfType("string")).
		Return("", errors.New("model exploded"))

	// The revised content never persisted, so its change summary must not
	// reach the audit trail; only the image failure is recorded
	mockRepo.On("UpdateFields", "post-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		notes, ok := fields["notes"].(string)
		return ok && len(fields) == 1 &&
			strings.Contains(notes, "[failure] image revision failed") &&
			!strings.Contains(notes, "rewrote the whole thing")
	})).Return(recorded, nil).Once()

	_, err := uc.RequestRevision("post-1", "redo everything", entity.RevisionBoth)
	assert.True(t, apperr.Is(err, apperr.KindRevisionFailed))
	mockRepo.AssertExpectations(t)
}

func TestFallbackImagePrompt_MultibyteContent(t *testing.T) {
	content := strings.Repeat("é", 150)

	prompt := fallbackImagePrompt(content)

	assert.True(t, utf8.ValidString(prompt))
	assert.Equal(t, "Professional LinkedIn post illustration: "+strings.Repeat("é", 100), prompt)
}

func TestFallbackImagePrompt_ShortContent(t *testing.T) {
	prompt := fallbackImagePrompt("short")
	assert.Equal(t, "Professional LinkedIn post illustration: short", prompt)
}

func TestRequestRevision_ReviserFailureKeepsPrompt(t *testing.T) {
	mockRepo := new(MockPostRepository)
	cache := newSpyCache()
	mockReviser := new(MockContentReviser)
	uc := newTestUseCase(mockRepo, cache, nil, mockReviser)

	original := &entity.Post{ID: "post-1", Status: entity.StatusDraft, Content: "text"}
	recorded := &entity.Post{ID: "post-1", Status: entity.StatusDraft, Content: "text", RevisionPrompt: "prompt"}

	mockRepo.On("GetByID", "post-1").Return(original, nil)
	mockRepo.On("UpdateFields", "post-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		return fields["revision_prompt"] == "prompt"
	})).Return(recorded, nil).Once()

	mockReviser.On("Revise", mock.Anything, "text", "prompt").Return("", "", errors.New("service down"))

	// The recorded prompt is not cleared; only a failure note lands
	mockRepo.On("UpdateFields", "post-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		notes, ok := fields["notes"].(string)
		return ok && len(fields) == 1 && strings.Contains(notes, "[failure] content revision failed")
	})).Return(recorded, nil).Once()

	_, err := uc.RequestRevision("post-1", "prompt", entity.RevisionContent)
	assert.True(t, apperr.Is(err, apperr.KindRevisionFailed))
	mockRepo.AssertExpectations(t)
}
