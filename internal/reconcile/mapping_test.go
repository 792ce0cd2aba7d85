package reconcile

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_RewritesThroughMapping(t *testing.T) {
	mapping := IDMapping{1: 17, 2: 1, 5: 0}
	events := []CollectionEvent{
		{LocalCategoryID: 1, Date: "2022-01-04"},
		{LocalCategoryID: 2, Date: "2022-01-05"},
		{LocalCategoryID: 5, Date: "2022-01-09"},
	}

	reconciled, err := Apply(mapping, events)
	require.NoError(t, err)

	ids := make([]int, len(reconciled))
	for i, e := range reconciled {
		ids[i] = e.CategoryID
	}
	assert.Equal(t, []int{17, 1, 0}, ids)

	assert.Equal(t, time.Tuesday, reconciled[0].Weekday)
	assert.Equal(t, time.Wednesday, reconciled[1].Weekday)
	assert.Equal(t, time.Sunday, reconciled[2].Weekday)

	// a chained id (2 -> 1) is rewritten once, not followed to 17
	assert.Equal(t, 2, reconciled[1].LocalCategoryID)
	assert.Equal(t, 1, events[0].LocalCategoryID, "fetched events must not be modified")
}

func TestApply_UnknownIDKeepsLocalID(t *testing.T) {
	reconciled, err := Apply(IDMapping{1: 17}, []CollectionEvent{{LocalCategoryID: 8, Date: "2024-03-01"}})
	require.NoError(t, err)

	require.Len(t, reconciled, 1)
	assert.Equal(t, 8, reconciled[0].CategoryID)
	assert.False(t, reconciled[0].Mapped)
}

func TestApply_InvalidDate(t *testing.T) {
	_, err := Apply(IDMapping{}, []CollectionEvent{{LocalCategoryID: 1, Date: "04-01-2022"}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidEventDate))
}

func TestBuildMapping_KeyedByLocalID(t *testing.T) {
	// order of matched entries does not matter, the key travels with the value
	matched := []MatchedStream{
		{LocalStream: LocalStream{ID: 5, Title: "Restafval"}, CatalogID: 0},
		{LocalStream: LocalStream{ID: 1, Title: "GFT"}, CatalogID: 17},
		{LocalStream: LocalStream{ID: 2, Title: "Papier"}, CatalogID: 1},
	}

	mapping, duplicates := BuildMapping(matched)

	assert.Equal(t, IDMapping{1: 17, 2: 1, 5: 0}, mapping)
	assert.Empty(t, duplicates)
}

func TestBuildMapping_DuplicateLocalID(t *testing.T) {
	matched := []MatchedStream{
		{LocalStream: LocalStream{ID: 3, Title: "Glas"}, CatalogID: 12},
		{LocalStream: LocalStream{ID: 3, Title: "Glas (wit)"}, CatalogID: 13},
	}

	mapping, duplicates := BuildMapping(matched)

	assert.Equal(t, IDMapping{3: 12}, mapping)
	require.Len(t, duplicates, 1)
	assert.Equal(t, "Glas (wit)", duplicates[0].Title)
}

func TestWeekday(t *testing.T) {
	day, err := Weekday("2025-04-26")
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, day)

	_, err = Weekday("2025-02-30")
	assert.ErrorIs(t, err, ErrInvalidEventDate)
}
