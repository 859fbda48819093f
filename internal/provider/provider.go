// Package provider holds the in-memory state the UI reads: the signed-in
// user and that user's courses, tasks, focus blocks and session history.
// Every write goes to the store first and is followed by a full reload.
package provider

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/sadopc/learntrack/internal/store"
)

// ErrNoOwner is returned by mutations made while nobody is signed in.
var ErrNoOwner = errors.New("no signed-in user")

// OwnerListener is notified whenever the signed-in user changes. owner is
// nil after logout.
type OwnerListener interface {
	OwnerChanged(owner *store.User)
}

// owned is the bookkeeping shared by the owner-scoped providers. op
// serializes mutate-then-reload sequences; mu guards the snapshot fields.
type owned struct {
	name string

	op      sync.Mutex
	mu      sync.RWMutex
	ownerID int64
	err     error

	// load fetches the owner's rows and installs them under mu.
	load func(ownerID int64) error
	// reset empties the snapshot. Called with mu held.
	reset func()
}

func (o *owned) owner() (int64, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.ownerID, o.ownerID != 0
}

// Err reports why the last reload failed, or nil when the snapshot is
// current. An empty snapshot with a nil Err means there is genuinely no data.
func (o *owned) Err() error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.err
}

func (o *owned) setOwner(owner *store.User) {
	o.op.Lock()
	defer o.op.Unlock()

	o.mu.Lock()
	o.err = nil
	if owner == nil {
		o.ownerID = 0
		o.reset()
		o.mu.Unlock()
		return
	}
	o.ownerID = owner.ID
	o.mu.Unlock()

	o.refresh(owner.ID)
}

// refresh reloads the snapshot. On failure the snapshot is cleared and the
// error kept for Err. Caller holds op.
func (o *owned) refresh(ownerID int64) {
	err := o.load(ownerID)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		zap.S().Errorw("reload failed", "provider", o.name, "user_id", ownerID, "error", err)
		o.reset()
		o.err = err
		return
	}
	o.err = nil
}

// Refresh reloads the snapshot for the current owner.
func (o *owned) Refresh() error {
	o.op.Lock()
	defer o.op.Unlock()

	ownerID, ok := o.owner()
	if !ok {
		return ErrNoOwner
	}
	o.refresh(ownerID)
	return o.Err()
}

// mutate runs fn and then reloads, whether or not fn failed.
func (o *owned) mutate(action string, fn func(ownerID int64) error) error {
	o.op.Lock()
	defer o.op.Unlock()

	ownerID, ok := o.owner()
	if !ok {
		return ErrNoOwner
	}
	err := fn(ownerID)
	if err != nil {
		zap.S().Errorw(action+" failed", "provider", o.name, "user_id", ownerID, "error", err)
	}
	o.refresh(ownerID)
	return err
}

// create runs fn and reloads only when it succeeded.
func (o *owned) create(action string, fn func(ownerID int64) (int64, error)) (int64, error) {
	o.op.Lock()
	defer o.op.Unlock()

	ownerID, ok := o.owner()
	if !ok {
		return 0, ErrNoOwner
	}
	id, err := fn(ownerID)
	if err != nil {
		zap.S().Errorw(action+" failed", "provider", o.name, "user_id", ownerID, "error", err)
		return 0, err
	}
	o.refresh(ownerID)
	return id, nil
}
