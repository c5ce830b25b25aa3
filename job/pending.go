package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"renditionmaker/logger"
	"renditionmaker/models"
)

// JobState represents the current state of a work item
type JobState int

const (
	JobStatePending JobState = iota
	JobStateProcessing
	JobStateCompleted
	JobStateFailed
	JobStateCancelled
)

func (s JobState) String() string {
	switch s {
	case JobStatePending:
		return "pending"
	case JobStateProcessing:
		return "processing"
	case JobStateCompleted:
		return "completed"
	case JobStateFailed:
		return "failed"
	case JobStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

var (
	ErrWorkItemNotFound = errors.New("work item not found")
	ErrNotCancellable   = errors.New("work item cannot be cancelled")
	// ErrCancelledByUser is the cancel cause of an item stopped through Cancel.
	// Any other cancellation of a processing item is a shutdown.
	ErrCancelledByUser = errors.New("cancelled by user")
)

// WorkQueue persists accepted work items until they are done.
type WorkQueue interface {
	Add(item models.WorkItem) error
	Remove(id string) error
	Pending() ([]models.WorkItem, error)
}

type itemProcessor interface {
	Process(ctx context.Context, item models.WorkItem) (models.ExecutionReport, error)
}

// Scheduler tracks work-item state and feeds pending items to the processor
// one at a time, in submission order.
type Scheduler struct {
	queue     WorkQueue
	processor itemProcessor
	now       func() time.Time

	mu      sync.RWMutex
	pending []models.WorkItem
	active  map[string]context.CancelCauseFunc
	states  map[string]JobState
	wake    chan struct{}
}

func NewScheduler(queue WorkQueue, processor itemProcessor) *Scheduler {
	return &Scheduler{
		queue:     queue,
		processor: processor,
		now:       time.Now,
		active:    make(map[string]context.CancelCauseFunc),
		states:    make(map[string]JobState),
		wake:      make(chan struct{}, 1),
	}
}

// Submit validates item, persists it and marks it pending.
func (s *Scheduler) Submit(item models.WorkItem) (models.WorkItem, error) {
	if err := PrepareWorkItem(&item, s.now()); err != nil {
		return models.WorkItem{}, err
	}

	s.mu.Lock()
	if _, exists := s.states[item.ID]; exists {
		s.mu.Unlock()
		return models.WorkItem{}, fmt.Errorf("%w: duplicate id %s", ErrInvalidWorkItem, item.ID)
	}
	if err := s.queue.Add(item); err != nil {
		s.mu.Unlock()
		return models.WorkItem{}, fmt.Errorf("failed to queue work item %s: %w", item.ID, err)
	}
	s.pending = append(s.pending, item)
	s.states[item.ID] = JobStatePending
	s.mu.Unlock()

	s.notify()
	logger.Infof("Queued work item %s for %s", item.ID, item.PayloadPath)
	return item, nil
}

// Rescan loads items left in the durable queue by a previous run.
func (s *Scheduler) Rescan() (int, error) {
	items, err := s.queue.Pending()
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	added := 0
	for _, item := range items {
		if _, exists := s.states[item.ID]; exists {
			continue
		}
		s.pending = append(s.pending, item)
		s.states[item.ID] = JobStatePending
		added++
	}
	s.mu.Unlock()

	if added > 0 {
		s.notify()
	}
	return added, nil
}

// Cancel drops a pending item, or interrupts one that is processing; pairs
// not yet dispatched are then reported as cancelled.
func (s *Scheduler) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, exists := s.states[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrWorkItemNotFound, id)
	}

	switch state {
	case JobStatePending:
		for i, item := range s.pending {
			if item.ID == id {
				s.pending = append(s.pending[:i], s.pending[i+1:]...)
				break
			}
		}
		if err := s.queue.Remove(id); err != nil {
			logger.Errorf("Failed to remove cancelled work item %s from queue: %v", id, err)
		}
		s.states[id] = JobStateCancelled
		return nil
	case JobStateProcessing:
		cancel, ok := s.active[id]
		if !ok {
			return fmt.Errorf("%w: %s is processing but not active", ErrNotCancellable, id)
		}
		cancel(ErrCancelledByUser)
		return nil
	default:
		return fmt.Errorf("%w: %s is already %s", ErrNotCancellable, id, state)
	}
}

// State returns the current state of a work item
func (s *Scheduler) State(id string) (JobState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, exists := s.states[id]
	return state, exists
}

// IsCancellable reports whether Cancel would succeed for id.
func (s *Scheduler) IsCancellable(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, exists := s.states[id]
	return exists && (state == JobStatePending || state == JobStateProcessing)
}

// PendingCount returns the number of items waiting to be processed.
func (s *Scheduler) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// next pops the oldest pending item and marks it processing.
func (s *Scheduler) next(ctx context.Context) (models.WorkItem, context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return models.WorkItem{}, nil, false
	}
	item := s.pending[0]
	s.pending = s.pending[1:]

	itemCtx, cancel := context.WithCancelCause(ctx)
	s.active[item.ID] = cancel
	s.states[item.ID] = JobStateProcessing
	return item, itemCtx, true
}

func (s *Scheduler) processOne(parent, ctx context.Context, item models.WorkItem) {
	_, err := s.processor.Process(ctx, item)
	userCancelled := errors.Is(context.Cause(ctx), ErrCancelledByUser)
	// shutdown mid-item: keep it queued so Rescan resumes it on restart
	interrupted := !userCancelled && parent.Err() != nil && errors.Is(err, context.Canceled)

	s.mu.Lock()
	if cancel, ok := s.active[item.ID]; ok {
		cancel(nil)
		delete(s.active, item.ID)
	}
	switch {
	case err == nil:
		s.states[item.ID] = JobStateCompleted
	case userCancelled:
		s.states[item.ID] = JobStateCancelled
	case interrupted:
		s.states[item.ID] = JobStatePending
	default:
		s.states[item.ID] = JobStateFailed
	}
	s.mu.Unlock()

	if interrupted {
		logger.Infof("Work item %s interrupted by shutdown; left in queue", item.ID)
		return
	}

	// finished items leave the queue whatever the outcome; nothing is retried
	if rmErr := s.queue.Remove(item.ID); rmErr != nil {
		logger.Errorf("Failed to remove work item %s from queue: %v", item.ID, rmErr)
	}
	if err != nil {
		logger.Errorf("Failed to process work item %s: %v", item.ID, err)
	} else {
		logger.Infof("Processed work item %s", item.ID)
	}
}

// Run processes pending items until ctx is done. It returns only after the
// item in flight has unwound, so callers may close the stores afterwards.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			logger.Info("Work-item scheduler stopped")
			return
		}
		item, itemCtx, ok := s.next(ctx)
		if ok {
			s.processOne(ctx, itemCtx, item)
			continue
		}

		select {
		case <-ctx.Done():
			logger.Info("Work-item scheduler stopped")
			return
		case <-s.wake:
		case <-ticker.C:
		}
	}
}
