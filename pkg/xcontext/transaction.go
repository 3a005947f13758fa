package xcontext

import (
	"context"
	"sync"
)

type txKey struct{}

type txState struct {
	mutex sync.Mutex
	done  bool
	hooks []func()
}

// txFrame marks which WithDBTransaction call owns the transaction. Nested calls
// share the state but their commit and rollback are no-ops.
type txFrame struct {
	state *txState
	owner bool
}

func frame(ctx context.Context) (txFrame, bool) {
	f, ok := ctx.Value(txKey{}).(txFrame)
	return f, ok
}

// WithDBTransaction begins a transaction and binds it to the returned context.
// If ctx already carries an open transaction, the returned context joins it.
func WithDBTransaction(ctx context.Context) context.Context {
	if f, ok := frame(ctx); ok && !f.state.isDone() {
		return context.WithValue(ctx, txKey{}, txFrame{state: f.state, owner: false})
	}

	tx := DB(ctx).Begin()
	ctx = context.WithValue(ctx, dbKey{}, tx)
	return context.WithValue(ctx, txKey{}, txFrame{state: &txState{}, owner: true})
}

// WithCommitDBTransaction commits the transaction owned by ctx and then runs
// the hooks registered with AfterCommit.
func WithCommitDBTransaction(ctx context.Context) error {
	f, ok := frame(ctx)
	if !ok || !f.owner {
		return nil
	}

	hooks, ok := f.state.finish()
	if !ok {
		return nil
	}

	if err := DB(ctx).Commit().Error; err != nil {
		return err
	}

	for _, hook := range hooks {
		hook()
	}

	return nil
}

// WithRollbackDBTransaction rolls back the transaction owned by ctx unless it
// was already committed. Pending AfterCommit hooks are dropped.
func WithRollbackDBTransaction(ctx context.Context) {
	f, ok := frame(ctx)
	if !ok || !f.owner {
		return
	}

	if _, ok := f.state.finish(); !ok {
		return
	}

	if err := DB(ctx).Rollback().Error; err != nil {
		Logger(ctx).Warnf("Cannot rollback transaction: %v", err)
	}
}

// InTransaction reports whether ctx carries a transaction which has not
// finished yet.
func InTransaction(ctx context.Context) bool {
	f, ok := frame(ctx)
	return ok && !f.state.isDone()
}

// AfterCommit defers fn until the transaction carried by ctx commits. Without
// an open transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	f, ok := frame(ctx)
	if !ok || !f.state.enqueue(fn) {
		fn()
	}
}

func (s *txState) isDone() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.done
}

func (s *txState) enqueue(fn func()) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.done {
		return false
	}

	s.hooks = append(s.hooks, fn)
	return true
}

func (s *txState) finish() ([]func(), bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.done {
		return nil, false
	}

	s.done = true
	hooks := s.hooks
	s.hooks = nil
	return hooks, true
}
