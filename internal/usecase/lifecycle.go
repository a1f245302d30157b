package usecase

import (
	"github.com/musacbusiness/linkedin-post-manager/internal/apperr"
	"github.com/musacbusiness/linkedin-post-manager/internal/entity"
)

// Transition preconditions for user-initiated triggers. Approved and
// Scheduled/Posted are only ever read back here; the external scheduler and
// publisher own those writes.
var (
	approveFrom = map[entity.PostStatus]bool{
		entity.StatusDraft:         true,
		entity.StatusPendingReview: true,
	}
	rejectFrom = map[entity.PostStatus]bool{
		entity.StatusDraft:         true,
		entity.StatusPendingReview: true,
		entity.StatusApproved:      true,
		entity.StatusScheduled:     true,
	}
	generateFrom = map[entity.PostStatus]bool{
		entity.StatusDraft:    true,
		entity.StatusApproved: true,
	}
)

func (uc *postUseCase) Approve(id string) (*entity.Post, error) {
	post, err := uc.approve(id)
	if err != nil {
		return nil, err
	}
	uc.cache.InvalidateAll()
	return post, nil
}

func (uc *postUseCase) Reject(id string) (*entity.Post, error) {
	post, err := uc.reject(id)
	if err != nil {
		return nil, err
	}
	uc.cache.InvalidateAll()
	return post, nil
}

// approve and reject leave cache invalidation to the caller so the batch
// coordinator can invalidate once per batch instead of once per item.
func (uc *postUseCase) approve(id string) (*entity.Post, error) {
	post, from, err := uc.transition(id, approveFrom, entity.StatusApproved, "user: approve", "approved, ready to schedule")
	if err != nil {
		return nil, err
	}
	uc.publishEvent("approved", post.ID, from, entity.StatusApproved)
	return post, nil
}

func (uc *postUseCase) reject(id string) (*entity.Post, error) {
	post, from, err := uc.transition(id, rejectFrom, entity.StatusRejected, "user: reject", "rejected, cleanup deletes in 7 days")
	if err != nil {
		return nil, err
	}
	uc.publishEvent("rejected", post.ID, from, entity.StatusRejected)
	return post, nil
}

// transition validates the precondition, then writes the new status and the
// audit note as one combined update. The record is left untouched when the
// current status is outside the allowed set.
func (uc *postUseCase) transition(
	id string,
	allowedFrom map[entity.PostStatus]bool,
	to entity.PostStatus,
	trigger, summary string,
) (*entity.Post, entity.PostStatus, error) {
	post, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, "", err
	}

	if !allowedFrom[post.Status] {
		return nil, "", apperr.New(apperr.KindInvalidTransition,
			"post %s is %q, cannot transition to %q", id, post.Status, to)
	}

	fields := map[string]interface{}{
		"status": string(to),
		"notes":  entity.AppendNote(post.Notes, uc.now(), trigger, summary),
	}
	if to == entity.StatusRejected {
		// scheduled_time is only valid on Scheduled/Posted records; a
		// rejected post gives up its slot
		fields["scheduled_time"] = nil
	}

	updated, err := uc.repo.UpdateFields(id, fields)
	if err != nil {
		return nil, "", err
	}
	return updated, post.Status, nil
}
