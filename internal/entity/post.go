package entity

import (
	"fmt"
	"time"
)

// PostStatus values are the exact strings persisted in the posts table and
// read by the external scheduler, publisher and cleanup jobs. Anything else
// is rejected at the repository boundary.
type PostStatus string

const (
	StatusDraft         PostStatus = "Draft"
	StatusPendingReview PostStatus = "Pending Review"
	StatusApproved      PostStatus = "Approved - Ready to Schedule"
	StatusScheduled     PostStatus = "Scheduled"
	StatusPosted        PostStatus = "Posted"
	StatusRejected      PostStatus = "Rejected"
)

func ParseStatus(s string) (PostStatus, error) {
	switch PostStatus(s) {
	case StatusDraft, StatusPendingReview, StatusApproved, StatusScheduled, StatusPosted, StatusRejected:
		return PostStatus(s), nil
	}
	return "", fmt.Errorf("unknown post status %q", s)
}

// IsTerminal reports whether user-initiated triggers are refused for the
// status. Rejected posts wait for the external cleanup; Posted posts are
// live and owned by the publisher.
func (s PostStatus) IsTerminal() bool {
	return s == StatusPosted || s == StatusRejected
}

type RevisionType string

const (
	RevisionContent RevisionType = "Post Only"
	RevisionImage   RevisionType = "Image Only"
	RevisionBoth    RevisionType = "Both"
)

func ParseRevisionType(s string) (RevisionType, error) {
	switch RevisionType(s) {
	case RevisionContent, RevisionImage, RevisionBoth:
		return RevisionType(s), nil
	}
	return "", fmt.Errorf("unknown revision type %q", s)
}

type Post struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Content        string       `json:"content"`
	ImageURL       string       `json:"image_url,omitempty"`
	Status         PostStatus   `json:"status"`
	ScheduledTime  *time.Time   `json:"scheduled_time,omitempty"`
	PostedTime     *time.Time   `json:"posted_time,omitempty"`
	PublishedURL   string       `json:"published_url,omitempty"`
	RevisionPrompt string       `json:"revision_prompt,omitempty"`
	RevisionType   RevisionType `json:"revision_type,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	Topic          string       `json:"topic,omitempty"`
	Source         string       `json:"source,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NoteLine formats a single audit entry. Notes are append-only; callers
// concatenate the result to the existing value, never rewrite it.
func NoteLine(ts time.Time, trigger, summary string) string {
	return fmt.Sprintf("%s [%s] %s", ts.UTC().Format(time.RFC3339), trigger, summary)
}

// AppendNote returns the notes text with one more entry appended.
func AppendNote(notes string, ts time.Time, trigger, summary string) string {
	line := NoteLine(ts, trigger, summary)
	if notes == "" {
		return line
	}
	return notes + "\n" + line
}
