package impl

import (
	"testing"

	"kaimono/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(title, note string) *entity.ShoppingItem {
	return &entity.ShoppingItem{Title: title, Note: note}
}

func TestComposeReminderMessage_MultipleItems(t *testing.T) {
	items := []*entity.ShoppingItem{
		item("牛乳", ""),
		item("卵", ""),
		item("食パン", ""),
	}

	message := composeReminderMessage("スーパーA", items)

	assert.Equal(t, "スーパーA で買うもの", message.Title)
	assert.Equal(t, []string{"・牛乳", "・卵", "・食パン"}, message.Lines)
	require.NotNil(t, message.Summary)
	assert.Equal(t, "ほか2件", *message.Summary)
}

func TestComposeReminderMessage_SingleItemWithNote(t *testing.T) {
	message := composeReminderMessage("スーパーA", []*entity.ShoppingItem{item("牛乳", "2本")})

	assert.Equal(t, []string{"・牛乳"}, message.Lines)
	require.NotNil(t, message.Summary)
	assert.Equal(t, "2本", *message.Summary)
}

func TestComposeReminderMessage_SingleItemWithoutNote(t *testing.T) {
	message := composeReminderMessage("スーパーA", []*entity.ShoppingItem{item("牛乳", "  ")})

	assert.Equal(t, []string{"・牛乳"}, message.Lines)
	assert.Nil(t, message.Summary)
}

func TestComposeReminderMessage_TwoItemsCountsSummary(t *testing.T) {
	message := composeReminderMessage("薬局", []*entity.ShoppingItem{
		item("シャンプー", "詰替ではなく本体"),
		item("歯ブラシ", ""),
	})

	// With more than one item the per-item note never leaks into the summary.
	require.NotNil(t, message.Summary)
	assert.Equal(t, "ほか1件", *message.Summary)
}
