// Package boardview is the client-side half of board synchronization: a
// local cache of tasks grouped into columns, fed by the event stream and by
// full list refetches. It mirrors what the web board does on drag-and-drop:
// optimistic cross-column moves with refetch-on-failure, and session-local
// ordering inside a column that is never sent to the server.
package boardview

import (
	"encoding/json"
	"sort"
	"sync"

	"mentorhub-api/internal/models"
	"mentorhub-api/internal/realtime"
)

// View is a reconciling cache of tasks keyed by id. Safe for concurrent use
// by the event reader and the UI goroutine.
type View struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
	// order holds the session-local display order per column as task ids.
	// It is cosmetic: never persisted, never sent to the server.
	order map[models.TaskStatus][]string
}

// New returns an empty view.
func New() *View {
	return &View{
		tasks: make(map[string]models.Task),
		order: make(map[models.TaskStatus][]string),
	}
}

// Reset replaces the whole cache with a freshly-fetched task list. This is
// the reconciliation fallback after a failed optimistic move or a reconnect.
func (v *View) Reset(tasks []models.Task) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.tasks = make(map[string]models.Task, len(tasks))
	v.order = make(map[models.TaskStatus][]string)
	for _, t := range tasks {
		v.tasks[t.ID] = t
		v.order[t.Status] = append(v.order[t.Status], t.ID)
	}
}

// Apply folds one wire event into the cache. It is idempotent, and it
// discards events older than the locally-held version of the same task so
// an out-of-order broadcast cannot regress newer state.
func (v *View) Apply(evt realtime.Event) error {
	switch evt.Type {
	case realtime.EventTaskDeleted:
		var payload realtime.DeletedPayload
		if err := json.Unmarshal(evt.Payload, &payload); err != nil {
			return err
		}
		v.remove(payload.ID)
		return nil
	case realtime.EventTaskCreated, realtime.EventTaskUpdated, realtime.EventTaskMoved:
		var task models.Task
		if err := json.Unmarshal(evt.Payload, &task); err != nil {
			return err
		}
		v.upsert(task)
		return nil
	default:
		// unknown event types are ignored so older clients survive newer servers
		return nil
	}
}

func (v *View) upsert(task models.Task) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if local, ok := v.tasks[task.ID]; ok {
		if task.UpdatedAt.Before(local.UpdatedAt) {
			// stale event; the local copy is newer
			return
		}
		if local.Status != task.Status {
			v.removeFromColumn(local.Status, task.ID)
		}
	}
	v.tasks[task.ID] = task
	v.appendToColumn(task.Status, task.ID)
}

func (v *View) remove(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if local, ok := v.tasks[id]; ok {
		v.removeFromColumn(local.Status, id)
		delete(v.tasks, id)
	}
}

// Get returns the cached task by id.
func (v *View) Get(id string) (models.Task, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	t, ok := v.tasks[id]
	return t, ok
}

// Len returns the number of cached tasks.
func (v *View) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.tasks)
}

// Column returns the tasks of one column in display order.
func (v *View) Column(status models.TaskStatus) []models.Task {
	v.mu.RLock()
	defer v.mu.RUnlock()

	ids := v.order[status]
	out := make([]models.Task, 0, len(ids))
	for _, id := range ids {
		if t, ok := v.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Columns returns all four columns keyed by status.
func (v *View) Columns() map[models.TaskStatus][]models.Task {
	out := make(map[models.TaskStatus][]models.Task, len(models.Statuses))
	for _, status := range models.Statuses {
		out[status] = v.Column(status)
	}
	return out
}

// ReorderWithin moves a task to a new position inside its own column. This
// is display-only: nothing is sent to the server and a refetch discards it.
func (v *View) ReorderWithin(status models.TaskStatus, from, to int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ids := v.order[status]
	if from < 0 || from >= len(ids) || to < 0 || to >= len(ids) {
		return
	}
	id := ids[from]
	ids = append(ids[:from], ids[from+1:]...)
	ids = append(ids[:to], append([]string{id}, ids[to:]...)...)
	v.order[status] = ids
}

// OptimisticMove immediately moves the task to the target column in the
// cache and returns the previous status, so the caller can issue the server
// move and refetch on failure. Returns false for unknown ids.
func (v *View) OptimisticMove(id string, to models.TaskStatus) (models.TaskStatus, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	task, ok := v.tasks[id]
	if !ok {
		return "", false
	}
	previous := task.Status
	if previous == to {
		return previous, true
	}

	v.removeFromColumn(previous, id)
	task.Status = to
	v.tasks[id] = task
	v.appendToColumn(to, id)
	return previous, true
}

// SortColumns orders every column newest-created-first, matching a fresh
// server fetch.
func (v *View) SortColumns() {
	v.mu.Lock()
	defer v.mu.Unlock()

	for status, ids := range v.order {
		sort.SliceStable(ids, func(i, j int) bool {
			a, b := v.tasks[ids[i]], v.tasks[ids[j]]
			if a.CreatedAt.Equal(b.CreatedAt) {
				return a.ID > b.ID
			}
			return a.CreatedAt.After(b.CreatedAt)
		})
		v.order[status] = ids
	}
}

func (v *View) appendToColumn(status models.TaskStatus, id string) {
	for _, existing := range v.order[status] {
		if existing == id {
			return
		}
	}
	v.order[status] = append(v.order[status], id)
}

func (v *View) removeFromColumn(status models.TaskStatus, id string) {
	ids := v.order[status]
	for i, existing := range ids {
		if existing == id {
			v.order[status] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}
