package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDir remixes every audio file created in dir until ctx is done.
// Files are processed one at a time in arrival order.
func watchDir(ctx context.Context, dir string, job *remixJob) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.Printf("Watching %s", dir)

	queue := make(chan string, watchQueueSize)
	done := make(chan struct{})
	go func() {
		defer close(done)
		processQueue(ctx, queue, job)
	}()

	defer func() {
		close(queue)
		<-done
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && isAudioFile(event.Name) {
				select {
				case queue <- event.Name:
				case <-ctx.Done():
					return nil
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)
		case <-ctx.Done():
			return nil
		}
	}
}

func processQueue(ctx context.Context, queue <-chan string, job *remixJob) {
	for path := range queue {
		select {
		case <-time.After(watchSettleDelay):
		case <-ctx.Done():
			return
		}
		if err := job.process(path); err != nil {
			log.Printf("Failed to remix %s: %v", path, err)
		}
	}
}
