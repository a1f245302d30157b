package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus_Valid(t *testing.T) {
	for _, value := range []string{
		"Draft",
		"Pending Review",
		"Approved - Ready to Schedule",
		"Scheduled",
		"Posted",
		"Rejected",
	} {
		status, err := ParseStatus(value)
		assert.NoError(t, err)
		assert.Equal(t, value, string(status))
	}
}

func TestParseStatus_Unknown(t *testing.T) {
	_, err := ParseStatus("Archived")
	assert.Error(t, err)

	// Casing matters: statuses are exact wire strings
	_, err = ParseStatus("draft")
	assert.Error(t, err)

	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestParseRevisionType(t *testing.T) {
	for _, value := range []string{"Post Only", "Image Only", "Both"} {
		rt, err := ParseRevisionType(value)
		assert.NoError(t, err)
		assert.Equal(t, value, string(rt))
	}

	_, err := ParseRevisionType("Text Only")
	assert.Error(t, err)
	_, err = ParseRevisionType("")
	assert.Error(t, err)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusPosted.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())

	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusPendingReview.IsTerminal())
	assert.False(t, StatusApproved.IsTerminal())
	assert.False(t, StatusScheduled.IsTerminal())
}

func TestNoteLine(t *testing.T) {
	ts := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	line := NoteLine(ts, "user: approve", "approved, ready to schedule")
	assert.Equal(t, "2025-06-15T10:30:00Z [user: approve] approved, ready to schedule", line)
}

func TestNoteLine_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2025, 6, 15, 12, 30, 0, 0, loc)
	line := NoteLine(ts, "user: create", "post created")
	assert.Equal(t, "2025-06-15T10:30:00Z [user: create] post created", line)
}

func TestAppendNote(t *testing.T) {
	ts := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	first := AppendNote("", ts, "user: create", "post created")
	assert.Equal(t, "2025-06-15T10:30:00Z [user: create] post created", first)

	second := AppendNote(first, ts.Add(time.Minute), "user: approve", "approved, ready to schedule")
	assert.Equal(t,
		"2025-06-15T10:30:00Z [user: create] post created\n"+
			"2025-06-15T10:31:00Z [user: approve] approved, ready to schedule",
		second)
}
