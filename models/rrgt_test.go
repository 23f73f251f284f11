package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPlanItems(t *testing.T) {
	items := DefaultPlanItems(7, 3)
	require.Len(t, items, 1+SubtaskColumns)

	assert.Equal(t, ItemKindRabbit, items[0].Kind)
	assert.Equal(t, RabbitColumn, items[0].ColumnIndex)

	for i, item := range items[1:] {
		assert.Equal(t, ItemKindSubtask, item.Kind)
		assert.Equal(t, i+1, item.ColumnIndex)
		assert.Empty(t, item.Content)
	}

	for _, item := range items {
		assert.Equal(t, uint(7), item.PlanID)
		assert.Equal(t, uint(3), item.TeamMemberID)
	}
}
