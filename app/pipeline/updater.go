package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/himanshuverma8/news-scraper/app/feed"
)

var ErrUpdateInProgress = errors.New("an update is already running")

// Updater runs a full pass over the source list on demand, one at a time.
type Updater struct {
	pipeline    *Pipeline
	sourcesFile string
	timeout     time.Duration
	running     atomic.Bool
}

func NewUpdater(p *Pipeline, sourcesFile string, timeout time.Duration) *Updater {
	return &Updater{
		pipeline:    p,
		sourcesFile: sourcesFile,
		timeout:     timeout,
	}
}

func (u *Updater) Update(ctx context.Context) (*Report, error) {
	if !u.running.CompareAndSwap(false, true) {
		return nil, ErrUpdateInProgress
	}
	defer u.running.Store(false)

	sources, err := feed.LoadSources(u.sourcesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	return u.pipeline.Run(ctx, sources)
}

func (u *Updater) Running() bool {
	return u.running.Load()
}
