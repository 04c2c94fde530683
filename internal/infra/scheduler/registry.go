package scheduler

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// JobInfo is a read-only snapshot of one scheduled reminder job.
type JobInfo struct {
	AccountID uuid.UUID
	Expr      string
	NextFire  time.Time
}

// JobRegistry maps each account to its single live cron entry. All
// mutation goes through Register/Unregister/Clear so the
// one-job-per-account invariant holds even with fires running on the
// cron goroutine. The underlying map is never exposed.
type JobRegistry struct {
	mu         sync.Mutex
	cronEngine *cron.Cron
	entries    map[uuid.UUID]registryEntry
}

type registryEntry struct {
	entryID cron.EntryID
	expr    string
}

func NewJobRegistry(cronEngine *cron.Cron) *JobRegistry {
	return &JobRegistry{
		cronEngine: cronEngine,
		entries:    make(map[uuid.UUID]registryEntry),
	}
}

// Register installs entryID as the account's reminder job, canceling
// any prior entry first so at most one handle is live per account.
func (r *JobRegistry) Register(accountID uuid.UUID, entryID cron.EntryID, expr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.entries[accountID]; ok {
		r.cronEngine.Remove(old.entryID)
	}
	r.entries[accountID] = registryEntry{entryID: entryID, expr: expr}
}

// Unregister cancels and removes the account's entry. Calling it for an
// account with no entry is a no-op, not an error.
func (r *JobRegistry) Unregister(accountID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.entries[accountID]; ok {
		r.cronEngine.Remove(old.entryID)
		delete(r.entries, accountID)
	}
}

// Clear cancels every entry. Used before a full rebuild at startup.
func (r *JobRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.entries {
		r.cronEngine.Remove(e.entryID)
		delete(r.entries, id)
	}
}

// List returns a diagnostic snapshot of all registered reminders with
// their next fire times. It never mutates the registry.
func (r *JobRegistry) List() []JobInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	infos := make([]JobInfo, 0, len(r.entries))
	for id, e := range r.entries {
		infos = append(infos, JobInfo{
			AccountID: id,
			Expr:      e.expr,
			NextFire:  r.cronEngine.Entry(e.entryID).Next,
		})
	}
	return infos
}

// Len reports the number of live entries.
func (r *JobRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
