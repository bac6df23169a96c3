package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/specforge/internal/domain"
)

func TestUserStories(t *testing.T) {
	content := "- As a shopper, I want to save my cart so that I can buy later.\n" +
		"  - Cart survives logout\n" +
		"- As an admin, I want audit logs so that I can trace changes"

	stories := UserStories([]domain.Section{{Title: "User Stories", Content: content, Level: 2}})
	require.Len(t, stories, 2)

	assert.Equal(t, "US-001", stories[0].ID)
	assert.Equal(t, "a", stories[0].Article)
	assert.Equal(t, "shopper", stories[0].Actor)
	assert.Equal(t, "to save my cart", stories[0].Action)
	assert.Equal(t, "I can buy later", stories[0].Benefit)
	assert.Equal(t, []string{"Cart survives logout"}, stories[0].AcceptanceCriteria)
	assert.Equal(t, domain.PriorityMedium, stories[0].Priority)

	assert.Equal(t, "US-002", stories[1].ID)
	assert.Equal(t, "an", stories[1].Article)
	assert.Equal(t, "admin", stories[1].Actor)
	assert.Equal(t, "I can trace changes", stories[1].Benefit)
}

func TestUserStories_OnlyStorySections(t *testing.T) {
	content := "As a shopper, I want a cart so that I can buy later."

	assert.Empty(t, UserStories([]domain.Section{{Title: "Overview", Content: content}}))
	assert.Len(t, UserStories([]domain.Section{{Title: "Story", Content: content}}), 1)
}
