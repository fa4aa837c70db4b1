package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilterByCategory(t *testing.T) {
	polls := []Poll{
		{ID: "1", Category: "Politics"},
		{ID: "2", Category: "Politics,Leadership"},
		{ID: "3", Category: "Entertainment"},
		{ID: "4", Category: ""},
	}

	t.Run("all passes the list through unchanged", func(t *testing.T) {
		got := FilterByCategory(polls, PollCategory{ID: CategoryAll, Label: "All"})
		assert.Equal(t, polls, got)
		// Identity, not a copy: same elements, same order.
		assert.Len(t, got, 4)
		for i := range polls {
			assert.Equal(t, polls[i].ID, got[i].ID)
		}
	})

	t.Run("substring membership", func(t *testing.T) {
		got := FilterByCategory(polls, PollCategory{ID: "POLITICS", Label: "Politics"})
		assert.Len(t, got, 2)
		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, "2", got[1].ID)
	})

	t.Run("empty category never matches", func(t *testing.T) {
		got := FilterByCategory(polls, PollCategory{ID: "ENTERTAINMENT", Label: "Entertainment"})
		assert.Len(t, got, 1)
		assert.Equal(t, "3", got[0].ID)
	})

	t.Run("no matches yields empty slice", func(t *testing.T) {
		got := FilterByCategory(polls, PollCategory{ID: "SPORTS", Label: "Sports"})
		assert.Empty(t, got)
	})
}

func TestValidateComment(t *testing.T) {
	twentyWords := "one two three four five six seven eight nine ten " +
		"eleven twelve thirteen fourteen fifteen sixteen seventeen eighteen nineteen twenty"

	cases := []struct {
		name     string
		content  string
		limited  bool
		expected error
	}{
		{"plain comment", "looks good to me", true, nil},
		{"empty", "", false, ErrInvalidInput},
		{"whitespace only", "   \t\n", true, ErrInvalidInput},
		{"exactly twenty words", twentyWords, true, nil},
		{"twenty one words", twentyWords + " extra", true, ErrWordLimitExceeded},
		{"unlimited context ignores limit", twentyWords + " extra words beyond limit", false, nil},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateComment(tt.content, tt.limited)
			if tt.expected != nil {
				assert.ErrorIs(t, err, tt.expected)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPollExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	poll := Poll{EndDate: now.Add(time.Hour)}
	assert.False(t, poll.Expired(now))
	assert.True(t, poll.Expired(now.Add(2*time.Hour)))
	// Exactly at the end date the poll is still open.
	assert.False(t, poll.Expired(poll.EndDate))
}
