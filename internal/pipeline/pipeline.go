// Package pipeline provides the processing plumbing shared by the analysis
// and render stages: an in-place effect Stage interface, a Chain of stages,
// a fractional DelayLine and helpers that fan work out per channel.
package pipeline

import (
	"fmt"
	"sync"
)

// Stage is one in-place transformation in an effect chain.
//
// Implementations keep their own state between calls. A Stage is owned by a
// single goroutine; parallel channels each get their own instances.
type Stage interface {
	// Process transforms buf in place. offset is the absolute sample index
	// of buf[0] in the track, which lets time-driven stages (sweeps, LFOs)
	// stay deterministic regardless of how the signal is split into blocks.
	Process(buf []float64, offset int)

	// Reset clears internal state.
	Reset()

	// Name identifies the stage in diagnostics.
	Name() string
}

// Chain runs stages in order.
type Chain struct {
	stages []Stage
}

// NewChain creates a chain, skipping nil stages so optional effects can be
// passed unconditionally.
func NewChain(stages ...Stage) *Chain {
	c := &Chain{stages: make([]Stage, 0, len(stages))}
	for _, s := range stages {
		if s != nil {
			c.stages = append(c.stages, s)
		}
	}
	return c
}

// Process runs every stage over buf in place.
func (c *Chain) Process(buf []float64, offset int) {
	for _, s := range c.stages {
		s.Process(buf, offset)
	}
}

// Reset resets every stage.
func (c *Chain) Reset() {
	for _, s := range c.stages {
		s.Reset()
	}
}

// Names lists the active stage names in processing order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name()
	}
	return names
}

// ForEachChannel calls fn once per channel index. When parallel is true and
// there is more than one channel, the calls run concurrently and the first
// error received is returned.
func ForEachChannel(channels int, parallel bool, fn func(ch int) error) error {
	if !parallel || channels <= 1 {
		for ch := range channels {
			if err := fn(ch); err != nil {
				return fmt.Errorf("channel %d: %w", ch, err)
			}
		}
		return nil
	}

	var wg sync.WaitGroup
	errChan := make(chan error, channels)

	for ch := range channels {
		wg.Add(1)
		go func(channel int) {
			defer wg.Done()
			if err := fn(channel); err != nil {
				errChan <- fmt.Errorf("channel %d: %w", channel, err)
			}
		}(ch)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	return nil
}

// RunAll runs independent tasks concurrently and returns the first error.
func RunAll(tasks ...func() error) error {
	var wg sync.WaitGroup
	errChan := make(chan error, len(tasks))

	for _, task := range tasks {
		wg.Add(1)
		go func(run func() error) {
			defer wg.Done()
			if err := run(); err != nil {
				errChan <- err
			}
		}(task)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	return nil
}
