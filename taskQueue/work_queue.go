package taskqueue

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/cockroachdb/pebble"

	"renditionmaker/logger"
	"renditionmaker/models"
)

// WorkQueue persists submitted work items until they finish processing,
// so a restart picks them up again.
type WorkQueue struct {
	q *DBQueue
}

func OpenWorkQueue(dataFile string) (*WorkQueue, error) {
	q, err := OpenQueue(dataFile)
	if err != nil {
		return nil, err
	}
	return &WorkQueue{q: q}, nil
}

func (w *WorkQueue) Close() error {
	return w.q.Close()
}

// Add stores item under its id.
func (w *WorkQueue) Add(item models.WorkItem) error {
	if item.ID == "" {
		return fmt.Errorf("work item id required")
	}
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal work item %s: %w", item.ID, err)
	}
	return w.q.Add(item.ID, data)
}

// Get returns the queued item with the given id; found is false when absent.
func (w *WorkQueue) Get(id string) (item models.WorkItem, found bool, err error) {
	data, err := w.q.Get(id)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return models.WorkItem{}, false, nil
		}
		return models.WorkItem{}, false, err
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return models.WorkItem{}, false, fmt.Errorf("failed to unmarshal work item %s: %w", id, err)
	}
	return item, true, nil
}

// Remove drops a finished or cancelled item.
func (w *WorkQueue) Remove(id string) error {
	return w.q.Delete(id)
}

// Pending returns every queued item, oldest submission first.
func (w *WorkQueue) Pending() ([]models.WorkItem, error) {
	var items []models.WorkItem
	err := w.q.Each(func(key string, value []byte) error {
		var item models.WorkItem
		if err := json.Unmarshal(value, &item); err != nil {
			logger.Warnf("Skipping unreadable queued work item %s: %v", key, err)
			return nil
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SubmittedAt.Before(items[j].SubmittedAt)
	})
	return items, nil
}
