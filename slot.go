package main

import "sync/atomic"

// ImageSlot holds the best decode of one image. Readers never block: the
// render loop loads the pointer while the preloader swaps it.
type ImageSlot struct {
	data       atomic.Pointer[ImageData]
	generation atomic.Uint64
	failure    atomic.Pointer[error]
	limit      atomic.Int32 // highest tier worth decoding, plus one; 0 means none set
}

// Read returns the current image, or nil when the slot is empty.
func (s *ImageSlot) Read() *ImageData {
	return s.data.Load()
}

// Upgrade stores data if the slot is empty or data has a strictly higher
// tier than the current contents. It reports whether data was stored.
func (s *ImageSlot) Upgrade(data *ImageData) bool {
	if data == nil {
		return false
	}
	for {
		current := s.data.Load()
		if current != nil && current.Quality >= data.Quality {
			return false
		}
		if s.data.CompareAndSwap(current, data) {
			s.failure.Store(nil)
			s.generation.Add(1)
			return true
		}
	}
}

// Set replaces the contents unconditionally.
func (s *ImageSlot) Set(data *ImageData) {
	s.data.Store(data)
	s.generation.Add(1)
}

// Clear empties the slot and returns the previous contents.
func (s *ImageSlot) Clear() *ImageData {
	old := s.data.Swap(nil)
	if old != nil {
		s.generation.Add(1)
	}
	return old
}

// Quality returns the tier held and whether the slot has any image.
func (s *ImageSlot) Quality() (QualityTier, bool) {
	data := s.data.Load()
	if data == nil {
		return 0, false
	}
	return data.Quality, true
}

// HasQuality reports whether the slot holds at least the given tier.
func (s *ImageSlot) HasQuality(minimum QualityTier) bool {
	q, ok := s.Quality()
	return ok && q >= minimum
}

func (s *ImageSlot) IsEmpty() bool {
	return s.data.Load() == nil
}

// MemoryUsed returns the pixel bytes held by the slot.
func (s *ImageSlot) MemoryUsed() int {
	return s.data.Load().MemorySize()
}

// Generation changes every time the slot contents change.
func (s *ImageSlot) Generation() uint64 {
	return s.generation.Load()
}

// Fail records a decode failure. A later successful Upgrade clears it.
func (s *ImageSlot) Fail(err error) {
	if err == nil {
		return
	}
	s.failure.Store(&err)
	s.generation.Add(1)
}

// Limit caps the tiers requested for this image: decodes above tier can
// never fit in memory.
func (s *ImageSlot) Limit(tier QualityTier) {
	s.limit.Store(int32(tier) + 1)
}

// Wanted returns the tier to decode for a request at quality, lowered to
// the slot's limit. It reports false when the slot already holds that tier
// or its image failed to decode.
func (s *ImageSlot) Wanted(quality QualityTier) (QualityTier, bool) {
	if s.Err() != nil {
		return quality, false
	}
	if limit := s.limit.Load(); limit > 0 {
		quality = min(quality, QualityTier(limit-1))
	}
	return quality, !s.HasQuality(quality)
}

// Err returns the recorded decode failure, if any.
func (s *ImageSlot) Err() error {
	if p := s.failure.Load(); p != nil {
		return *p
	}
	return nil
}
