package usecase

import (
	"fmt"
)

type BatchOperation string

const (
	BatchApprove BatchOperation = "approve"
	BatchReject  BatchOperation = "reject"
	BatchDelete  BatchOperation = "delete"
)

type BatchResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ProgressFunc receives the running completed count after every item.
type ProgressFunc func(completed, total int)

// BatchApply runs one operation over the ids in order. Item failures are
// recorded and the batch continues; only a malformed operation fails the
// whole call. The cache is invalidated exactly once, after the last item.
// Delete is irreversible; confirmation is the caller's responsibility.
func (uc *postUseCase) BatchApply(ids []string, op BatchOperation, progress ProgressFunc) ([]BatchResult, error) {
	if len(ids) == 0 {
		return []BatchResult{}, nil
	}

	switch op {
	case BatchApprove, BatchReject, BatchDelete:
	default:
		return nil, fmt.Errorf("unknown batch operation %q", op)
	}

	results := make([]BatchResult, 0, len(ids))
	for i, id := range ids {
		var err error
		switch op {
		case BatchApprove:
			_, err = uc.approve(id)
		case BatchReject:
			_, err = uc.reject(id)
		case BatchDelete:
			err = uc.repo.Delete(id)
		}

		result := BatchResult{ID: id, Success: err == nil}
		if err != nil {
			result.Error = err.Error()
			uc.logger.Error("Batch %s failed for post %s: %v", op, id, err)
		}
		results = append(results, result)

		if progress != nil {
			progress(i+1, len(ids))
		}
	}

	uc.cache.InvalidateAll()
	return results, nil
}
