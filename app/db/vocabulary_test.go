package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const heartResponse = `[{"meta":{"id":"heart:1"},"hom":1,"hwi":{"hw":"heart"},"fl":"noun",` +
	`"def":[{"sseq":[[["sense",{"sn":"1","dt":[["text","{bc}a hollow muscular organ"]]}]]]}],` +
	`"shortdef":["a hollow muscular organ"]}]`

func TestVocabularyEntryRecord(t *testing.T) {
	start := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	t.Run("familiarity steps", func(t *testing.T) {
		item := NewVocabularyEntry(UserID(1), "heart", nil, start)
		steps := make([]int, 0, RecallWindow)
		for i := 0; i < RecallWindow; i++ {
			steps = append(steps, item.Step())
			assert.False(t, item.Mastered())
			item.Record(true, start.AddDate(0, 0, i))
		}
		assert.Equal(t, []int{0, 1, 2, 3}, steps)
		assert.True(t, item.Mastered())
		assert.Equal(t, 0, item.Step())
	})
	t.Run("wrong answer resets", func(t *testing.T) {
		item := NewVocabularyEntry(UserID(1), "heart", nil, start)
		item.Record(true, start)
		item.Record(true, start.Add(time.Hour))
		require.Equal(t, 2, item.Step())
		item.Record(false, start.Add(2*time.Hour))
		assert.Empty(t, item.RecallDates)
		assert.Equal(t, 0, item.Step())
		_, ok := item.LastRecall()
		assert.False(t, ok)
	})
	t.Run("wrong answer resets mastered word", func(t *testing.T) {
		item := NewVocabularyEntry(UserID(1), "heart", nil, start)
		for i := 0; i < RecallWindow; i++ {
			item.Record(true, start.AddDate(0, 0, i))
		}
		require.True(t, item.Mastered())
		item.Record(false, start.AddDate(0, 0, 5))
		assert.False(t, item.Mastered())
		assert.Equal(t, 0, item.RecallCount())
	})
	t.Run("sliding window", func(t *testing.T) {
		item := NewVocabularyEntry(UserID(1), "heart", nil, start)
		dates := make([]time.Time, 0, 5)
		for i := 0; i < 5; i++ {
			at := start.AddDate(0, 0, i)
			dates = append(dates, at)
			item.Record(true, at)
			assert.LessOrEqual(t, len(item.RecallDates), RecallWindow)
		}
		assert.Equal(t, dates[1:], item.RecallDates)
		last, ok := item.LastRecall()
		assert.True(t, ok)
		assert.Equal(t, dates[4], last)
		assert.True(t, item.Mastered())
	})
	t.Run("history is not shared", func(t *testing.T) {
		item := NewVocabularyEntry(UserID(1), "heart", nil, start)
		item.Record(true, start)
		copied := item
		item.Record(true, start.Add(time.Hour))
		assert.Len(t, copied.RecallDates, 1)
		assert.Len(t, item.RecallDates, 2)
	})
}

func TestVocabularyEntryEntries(t *testing.T) {
	t.Run("entries", func(t *testing.T) {
		item := VocabularyEntry{Word: "heart", EntryBytes: []byte(heartResponse)}
		entries, err := item.Entries()
		require.NoError(t, err)
		assert.Equal(t, "heart:1", entries.ID())
		assert.Equal(t, "a hollow muscular organ", entries.FirstDefinition())
	})
	t.Run("suggestions", func(t *testing.T) {
		item := VocabularyEntry{Word: "colr", EntryBytes: []byte(`["color","colour"]`)}
		_, err := item.Entries()
		assert.Error(t, err)
	})
	t.Run("invalid", func(t *testing.T) {
		item := VocabularyEntry{Word: "heart", EntryBytes: []byte(`NOT_JSON`)}
		_, err := item.Entries()
		assert.Error(t, err)
	})
}
