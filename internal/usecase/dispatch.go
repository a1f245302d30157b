package usecase

import (
	"context"
	"fmt"

	"github.com/musacbusiness/linkedin-post-manager/internal/apperr"
	"github.com/musacbusiness/linkedin-post-manager/internal/entity"

	"github.com/google/uuid"
)

// RequestImageGeneration moves the post to Pending Review, then asks the
// generation service for an image. The status write commits before the
// external call: a failed generation leaves the post in Pending Review with
// a failure note, never silently reverted to its prior status.
func (uc *postUseCase) RequestImageGeneration(id string) (*entity.Post, error) {
	post, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !generateFrom[post.Status] {
		return nil, apperr.New(apperr.KindInvalidTransition,
			"post %s is %q, image generation requires Draft or Approved", id, post.Status)
	}
	if post.Content == "" {
		return nil, apperr.New(apperr.KindGenerationFailed, "post %s has no content to illustrate", id)
	}

	from := post.Status
	post, err = uc.repo.UpdateFields(id, map[string]interface{}{
		"status": string(entity.StatusPendingReview),
		"notes":  entity.AppendNote(post.Notes, uc.now(), "user: request image", "image generation requested"),
	})
	if err != nil {
		return nil, err
	}
	uc.cache.InvalidateAll()

	ctx, cancel := context.WithTimeout(context.Background(), uc.generationTimeout)
	defer cancel()

	imageURL, err := uc.generateImage(ctx, post.Content)
	if err != nil {
		err = classify(err, apperr.KindGenerationFailed, "image generation")
		uc.appendFailureNote(id, post.Notes, "image generation", err)
		return nil, err
	}

	post, updateErr := uc.repo.UpdateFields(id, map[string]interface{}{
		"image_url": imageURL,
		"notes":     entity.AppendNote(post.Notes, uc.now(), "generation", "image generated"),
	})
	if updateErr != nil {
		return nil, updateErr
	}
	uc.cache.InvalidateAll()
	uc.publishEvent("image_generated", id, from, post.Status)
	return post, nil
}

// generateImage crafts an image prompt from the post content, generates the
// image and archives it to durable storage when an archiver is wired.
// Generation service URLs expire, so the archived URL wins when available.
func (uc *postUseCase) generateImage(ctx context.Context, content string) (string, error) {
	prompt := fallbackImagePrompt(content)
	if uc.reviser != nil {
		if crafted, err := uc.reviser.ImagePrompt(ctx, content); err == nil && crafted != "" {
			prompt = crafted
		}
	}

	imageURL, err := uc.generator.GenerateImage(ctx, prompt)
	if err != nil {
		return "", err
	}
	if imageURL == "" {
		return "", fmt.Errorf("generation service returned no image")
	}

	if uc.archiver != nil {
		archived, err := uc.archiver.ArchiveImage(imageKey(), imageURL)
		if err != nil {
			uc.logger.Warn("Failed to archive generated image, keeping service URL: %v", err)
		} else {
			imageURL = archived
		}
	}
	return imageURL, nil
}

// RequestRevision records the revision intent on the post, then runs the
// requested content and/or image revision. The status never changes; the
// prompt is cleared exactly once, in the same write that lands the results.
func (uc *postUseCase) RequestRevision(id, prompt string, revisionType entity.RevisionType) (*entity.Post, error) {
	if prompt == "" {
		return nil, apperr.New(apperr.KindRevisionFailed, "revision prompt is empty")
	}
	if _, err := entity.ParseRevisionType(string(revisionType)); err != nil {
		return nil, apperr.New(apperr.KindRevisionFailed, "invalid revision type %q", revisionType)
	}

	post, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post.Status.IsTerminal() {
		return nil, apperr.New(apperr.KindInvalidTransition,
			"post %s is %q, revisions are closed", id, post.Status)
	}

	post, err = uc.repo.UpdateFields(id, map[string]interface{}{
		"revision_prompt": prompt,
		"revision_type":   string(revisionType),
		"notes": entity.AppendNote(post.Notes, uc.now(), "user: request revision",
			fmt.Sprintf("revision requested (%s)", revisionType)),
	})
	if err != nil {
		return nil, err
	}
	uc.cache.InvalidateAll()

	fields := map[string]interface{}{
		"revision_prompt": "",
		"revision_type":   "",
	}
	notes := post.Notes

	if revisionType == entity.RevisionContent || revisionType == entity.RevisionBoth {
		ctx, cancel := context.WithTimeout(context.Background(), uc.revisionTimeout)
		revised, changeSummary, err := uc.reviser.Revise(ctx, post.Content, prompt)
		cancel()
		if err != nil {
			err = classify(err, apperr.KindRevisionFailed, "content revision")
			uc.appendFailureNote(id, notes, "content revision", err)
			return nil, err
		}
		fields["content"] = revised
		notes = entity.AppendNote(notes, uc.now(), "revision", changeSummary)
	}

	if revisionType == entity.RevisionImage || revisionType == entity.RevisionBoth {
		ctx, cancel := context.WithTimeout(context.Background(), uc.generationTimeout)
		imageURL, err := uc.generateImage(ctx, prompt+"\n\n"+fallbackImagePrompt(post.Content))
		cancel()
		if err != nil {
			err = classify(err, apperr.KindRevisionFailed, "image revision")
			// not notes: a change-summary line for content that never
			// persisted must not reach the audit trail
			uc.appendFailureNote(id, post.Notes, "image revision", err)
			return nil, err
		}
		fields["image_url"] = imageURL
		notes = entity.AppendNote(notes, uc.now(), "revision", "image regenerated")
	}

	fields["notes"] = notes
	post, err = uc.repo.UpdateFields(id, fields)
	if err != nil {
		return nil, err
	}
	uc.cache.InvalidateAll()
	uc.publishEvent("revision_applied", id, post.Status, post.Status)
	return post, nil
}

// appendFailureNote records a side-effect failure in the audit trail. The
// record was reachable moments ago, so a write failure here is only logged.
func (uc *postUseCase) appendFailureNote(id, notes, op string, cause error) {
	_, err := uc.repo.UpdateFields(id, map[string]interface{}{
		"notes": entity.AppendNote(notes, uc.now(), "failure", fmt.Sprintf("%s failed: %v", op, cause)),
	})
	if err != nil {
		uc.logger.Error("Failed to record %s failure on post %s: %v", op, id, err)
	}
	uc.cache.InvalidateAll()
}

func imageKey() string {
	return "posts/" + uuid.New().String() + ".png"
}

func fallbackImagePrompt(content string) string {
	// rune count, not bytes: slicing mid-rune would send invalid UTF-8
	if runes := []rune(content); len(runes) > 100 {
		content = string(runes[:100])
	}
	return "Professional LinkedIn post illustration: " + content
}
