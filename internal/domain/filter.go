package domain

import "strings"

// FilterByCategory partitions an already-fetched poll list down to the
// selected category. It is a pure function of its two inputs: the ALL
// sentinel returns the input list unchanged, any other category keeps polls
// whose category field contains the selected label. Polls with an empty
// category never match a non-ALL filter.
func FilterByCategory(polls []Poll, category PollCategory) []Poll {
	if category.ID == CategoryAll {
		return polls
	}
	filtered := make([]Poll, 0, len(polls))
	for _, p := range polls {
		if p.Category == "" {
			continue
		}
		if strings.Contains(p.Category, category.Label) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// WordCount splits on whitespace and counts non-empty words, matching the
// comment word-limit rule.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ValidateComment applies the local comment checks: trimmed content must be
// non-empty, and at most CommentWordLimit words when the limit applies.
func ValidateComment(content string, limited bool) error {
	if strings.TrimSpace(content) == "" {
		return ErrInvalidInput
	}
	if limited && WordCount(content) > CommentWordLimit {
		return ErrWordLimitExceeded
	}
	return nil
}
