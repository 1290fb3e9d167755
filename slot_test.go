package main

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotStartsEmpty(t *testing.T) {
	var slot ImageSlot

	assert.True(t, slot.IsEmpty())
	assert.Nil(t, slot.Read())
	assert.Zero(t, slot.MemoryUsed())
	assert.Zero(t, slot.Generation())
	_, ok := slot.Quality()
	assert.False(t, ok)
	assert.False(t, slot.HasQuality(QualityThumbnail))
}

func TestSlotUpgradeOnlyToHigherTier(t *testing.T) {
	var slot ImageSlot

	require.True(t, slot.Upgrade(makeImageData(4, 4, QualityPreview)))
	assert.Equal(t, uint64(1), slot.Generation())
	assert.True(t, slot.HasQuality(QualityPreview))
	assert.False(t, slot.HasQuality(QualityFull))

	assert.False(t, slot.Upgrade(makeImageData(2, 2, QualityThumbnail)), "downgrade refused")
	assert.False(t, slot.Upgrade(makeImageData(4, 4, QualityPreview)), "same tier refused")
	assert.Equal(t, uint64(1), slot.Generation())

	require.True(t, slot.Upgrade(makeImageData(8, 8, QualityFull)))
	q, ok := slot.Quality()
	assert.True(t, ok)
	assert.Equal(t, QualityFull, q)
	assert.Equal(t, 8*8*4, slot.MemoryUsed())
	assert.Equal(t, uint64(2), slot.Generation())

	assert.False(t, slot.Upgrade(nil))
}

func TestSlotSetAndClear(t *testing.T) {
	var slot ImageSlot

	slot.Set(makeImageData(8, 8, QualityFull))
	slot.Set(makeImageData(2, 2, QualityThumbnail))
	q, _ := slot.Quality()
	assert.Equal(t, QualityThumbnail, q, "Set replaces unconditionally")
	assert.Equal(t, uint64(2), slot.Generation())

	old := slot.Clear()
	require.NotNil(t, old)
	assert.Equal(t, QualityThumbnail, old.Quality)
	assert.True(t, slot.IsEmpty())
	assert.Equal(t, uint64(3), slot.Generation())

	assert.Nil(t, slot.Clear())
	assert.Equal(t, uint64(3), slot.Generation(), "clearing an empty slot changes nothing")
}

func TestSlotFailure(t *testing.T) {
	var slot ImageSlot
	decodeErr := errors.New("corrupt")

	slot.Fail(nil)
	assert.NoError(t, slot.Err())

	slot.Fail(decodeErr)
	assert.ErrorIs(t, slot.Err(), decodeErr)
	assert.Equal(t, uint64(1), slot.Generation())

	require.True(t, slot.Upgrade(makeImageData(2, 2, QualityThumbnail)))
	assert.NoError(t, slot.Err(), "successful upgrade clears the failure")
}

func TestSlotConcurrentUpgradesNeverDowngrade(t *testing.T) {
	var slot ImageSlot
	var wg sync.WaitGroup

	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tier := AllQualityTiers[i%len(AllQualityTiers)]
			slot.Upgrade(makeImageData(1, 1, tier))
		}()
	}
	wg.Wait()

	q, ok := slot.Quality()
	require.True(t, ok)
	assert.Equal(t, QualityFull, q)
	assert.LessOrEqual(t, slot.Generation(), uint64(3), "at most one upgrade per tier")
}

func TestSlotWantedRespectsLimit(t *testing.T) {
	var slot ImageSlot

	tier, ok := slot.Wanted(QualityFull)
	assert.True(t, ok)
	assert.Equal(t, QualityFull, tier)

	slot.Limit(QualityPreview)
	tier, ok = slot.Wanted(QualityFull)
	assert.True(t, ok)
	assert.Equal(t, QualityPreview, tier, "lowered to the limit")

	tier, ok = slot.Wanted(QualityThumbnail)
	assert.True(t, ok)
	assert.Equal(t, QualityThumbnail, tier, "lower requests are unaffected")

	require.True(t, slot.Upgrade(makeImageData(4, 4, QualityPreview)))
	_, ok = slot.Wanted(QualityFull)
	assert.False(t, ok, "best affordable tier is present")

	slot.Fail(errors.New("broken"))
	_, ok = slot.Wanted(QualityThumbnail)
	assert.False(t, ok)
}
