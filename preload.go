package main

import (
	"cmp"
	"context"
	"errors"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// DecodeFunc decodes one image at a tier. It is swapped out in tests.
type DecodeFunc func(ctx context.Context, p ImagePath, tier QualityTier) (*ImageData, error)

// LoadTask is one decode the preloader wants done.
type LoadTask struct {
	Index       int
	Quality     QualityTier
	Distance    int
	InDirection bool // in the predicted direction of travel
}

// PreloadStats provides statistics about preloading
type PreloadStats struct {
	Decoded  int64 // decodes inserted into the store
	Failed   int64 // decodes that returned an error
	Rejected int64 // decodes refused by the store (budget or stale tier)
	Passes   int64 // passes that had work to do
}

// Preloader decodes images around the current index in the background,
// nearest and in the direction of travel first.
type Preloader struct {
	store  *ImageStore
	paths  []ImagePath
	state  *SharedState
	config PreloadConfig
	decode DecodeFunc

	// dimensions reads an image header; swapped out in tests
	dimensions func(ImagePath) (int, int, error)

	wake chan struct{}

	decoded  atomic.Int64
	failed   atomic.Int64
	rejected atomic.Int64
	passes   atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPreloader(store *ImageStore, paths []ImagePath, state *SharedState, config PreloadConfig) *Preloader {
	return &Preloader{
		store:      store,
		paths:      paths,
		state:      state,
		config:     config,
		decode:     Decode,
		dimensions: DecodeConfig,
		wake:       make(chan struct{}, 1),
	}
}

// Start launches the preload goroutine. Calling Start twice is a no-op.
func (p *Preloader) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go func() {
		defer close(p.done)
		p.run(ctx)
	}()
}

// Stop cancels the goroutine and waits for it to exit.
func (p *Preloader) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wake nudges an idle preloader after navigation. It never blocks.
func (p *Preloader) Wake() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Stats returns current preload statistics
func (p *Preloader) Stats() PreloadStats {
	return PreloadStats{
		Decoded:  p.decoded.Load(),
		Failed:   p.failed.Load(),
		Rejected: p.rejected.Load(),
		Passes:   p.passes.Load(),
	}
}

func (p *Preloader) run(ctx context.Context) {
	debugLog("Preloader started for %d images", p.store.Len())
	defer debugLog("Preloader stopped")

	backoff := p.config.IdlePollInterval
	for {
		if ctx.Err() != nil || p.state.IsShutdown() {
			return
		}
		if p.store.Len() > 0 && p.runPass(ctx) {
			backoff = p.config.IdlePollInterval
			continue
		}
		// Nothing stored last pass: poll less often until navigation wakes us.
		if p.idle(ctx, backoff) {
			backoff = p.config.IdlePollInterval
		} else {
			backoff = min(backoff*2, maxIdleBackoff)
		}
	}
}

const maxIdleBackoff = time.Second

// idle waits for navigation or the poll interval. It reports whether it
// was woken by navigation.
func (p *Preloader) idle(ctx context.Context, wait time.Duration) bool {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-p.wake:
		return true
	case <-timer.C:
	}
	return false
}

// runPass performs one prioritized decode round. It returns false when
// nothing new was stored.
func (p *Preloader) runPass(ctx context.Context) bool {
	total := p.store.Len()
	current := p.state.Current()
	tasks := buildPrioritizedTasks(p.store, current, total, p.state.Direction(), p.config)
	tasks = p.fitToBudget(tasks)

	if len(tasks) == 0 {
		p.store.EvictFar(current, p.config.TotalRange())
		return false
	}
	p.passes.Add(1)

	results := make([]*ImageData, len(tasks))
	g := new(errgroup.Group)
	g.SetLimit(p.parallelism())
	for i, task := range tasks {
		g.Go(func() error {
			data, err := p.decode(ctx, p.paths[task.Index], task.Quality)
			if err != nil {
				if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
					p.failed.Add(1)
					p.store.Slot(task.Index).Fail(err)
					log.WithError(err).WithField("path", p.paths[task.Index].Path).Warn("Failed to decode image")
				}
				return nil
			}
			results[i] = data
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return false
	}

	// Navigation may have moved on while decoding.
	currentNow := p.state.Current()
	stored := false
	for i, data := range results {
		if data == nil {
			continue
		}
		idx := tasks[i].Index
		near := circularDistance(idx, currentNow, total) <= p.config.FullQualityCount
		if near {
			p.store.MakeRoom(int64(data.MemorySize()), currentNow)
		}
		if p.store.Insert(idx, data) {
			p.decoded.Add(1)
			stored = true
			continue
		}
		p.rejected.Add(1)
		if int64(data.MemorySize()) > p.store.Budget().Total() && p.insertLowerTier(idx, data, near, currentNow) {
			p.decoded.Add(1)
			stored = true
		}
	}

	p.store.EvictFar(p.state.Current(), p.config.TotalRange())
	return stored
}

// fitToBudget reads the headers of images wanted at full quality and lowers
// the tier of those whose full decode could never fit in the budget, so
// they are not decoded at full size at all.
func (p *Preloader) fitToBudget(tasks []LoadTask) []LoadTask {
	budget := p.store.Budget().Total()
	fitted := tasks[:0]
	for _, task := range tasks {
		// Archive entries would be extracted twice; the decode result is checked instead
		if task.Quality != QualityFull || p.paths[task.Index].ArchivePath != "" {
			fitted = append(fitted, task)
			continue
		}
		width, height, err := p.dimensions(p.paths[task.Index])
		if err != nil || int64(QualityFull.EstimateMemory(width, height)) <= budget {
			// Unreadable headers are reported by the decode itself
			fitted = append(fitted, task)
			continue
		}

		slot := p.store.Slot(task.Index)
		tier, ok := fittingTier(width, height, QualityPreview, budget)
		if !ok {
			slot.Fail(tooLarge(p.paths[task.Index], QualityThumbnail))
			continue
		}
		slot.Limit(tier)
		debugLog("%s is %dx%d, capped at %s", p.paths[task.Index].Name(), width, height, tier)
		if slot.HasQuality(tier) {
			continue
		}
		task.Quality = tier
		fitted = append(fitted, task)
	}
	return fitted
}

// insertLowerTier handles a decode that can never fit: the slot is capped
// at the best tier that does, and that tier is derived from data.
func (p *Preloader) insertLowerTier(idx int, data *ImageData, near bool, current int) bool {
	slot := p.store.Slot(idx)
	tier, ok := fittingTier(data.Width, data.Height, data.Quality-1, p.store.Budget().Total())
	if !ok {
		slot.Fail(tooLarge(p.paths[idx], data.Quality))
		return false
	}
	slot.Limit(tier)
	if slot.HasQuality(tier) {
		return false
	}

	lower := data.Downscale(tier)
	if near {
		p.store.MakeRoom(int64(lower.MemorySize()), current)
	}
	return p.store.Insert(idx, lower)
}

// fittingTier returns the highest tier up to want at which a width x height
// image fits in budget.
func fittingTier(width, height int, want QualityTier, budget int64) (QualityTier, bool) {
	for _, tier := range slices.Backward(AllQualityTiers) {
		if tier <= want && int64(tier.EstimateMemory(width, height)) <= budget {
			return tier, true
		}
	}
	return 0, false
}

func tooLarge(p ImagePath, tier QualityTier) error {
	return zerr.With(zerr.With(ErrImageTooLarge, "path", p.Path), "tier", tier.String())
}

func (p *Preloader) parallelism() int {
	if p.config.MaxParallelTasks > 0 {
		return p.config.MaxParallelTasks
	}
	return runtime.NumCPU()
}

// buildPrioritizedTasks lists the decodes wanted around current, most urgent
// first: the current image at full quality, then images in the direction of
// travel, higher tiers before lower, nearer before further.
func buildPrioritizedTasks(store *ImageStore, current, total int, direction Direction, config PreloadConfig) []LoadTask {
	if total == 0 {
		return nil
	}

	var tasks []LoadTask
	wants := func(idx int, quality QualityTier) (QualityTier, bool) {
		slot := store.Slot(idx)
		if slot == nil {
			return quality, false
		}
		return slot.Wanted(quality)
	}

	if quality, ok := wants(current, QualityFull); ok {
		tasks = append(tasks, LoadTask{Index: current, Quality: quality, InDirection: true})
	}

	ahead, behind := config.RangeForDirection(direction)
	// Ranges larger than the list would visit images twice.
	ahead = min(ahead, total-1)
	behind = min(behind, total-1)

	for offset := 1; offset <= ahead; offset++ {
		idx := (current + offset) % total
		if quality, ok := wants(idx, config.QualityForDistance(offset)); ok {
			tasks = append(tasks, LoadTask{
				Index:       idx,
				Quality:     quality,
				Distance:    offset,
				InDirection: direction != DirectionBackward,
			})
		}
	}

	for offset := 1; offset <= behind; offset++ {
		idx := ((current-offset)%total + total) % total
		if quality, ok := wants(idx, config.QualityForDistance(offset)); ok {
			tasks = append(tasks, LoadTask{
				Index:       idx,
				Quality:     quality,
				Distance:    offset,
				InDirection: direction != DirectionForward,
			})
		}
	}

	slices.SortStableFunc(tasks, func(a, b LoadTask) int {
		if a.InDirection != b.InDirection {
			if a.InDirection {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(b.Quality, a.Quality); c != 0 {
			return c
		}
		return cmp.Compare(a.Distance, b.Distance)
	})

	// An index reachable both ways keeps only its most urgent task.
	seen := make(map[int]bool, len(tasks))
	return slices.DeleteFunc(tasks, func(t LoadTask) bool {
		if seen[t.Index] {
			return true
		}
		seen[t.Index] = true
		return false
	})
}
