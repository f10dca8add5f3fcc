package repositories

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

type afterCommitKey struct{}

type afterCommitQueue struct {
	mu  sync.Mutex
	fns []func()
}

func (q *afterCommitQueue) add(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fns = append(q.fns, fn)
}

func (q *afterCommitQueue) run() {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// RunInTx runs fn inside a database transaction. Work registered through
// AfterCommit on that transaction runs once the commit succeeds and is
// dropped on rollback.
func RunInTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	// Nested calls share the outermost queue
	if _, ok := ctx.Value(afterCommitKey{}).(*afterCommitQueue); ok {
		return db.WithContext(ctx).Transaction(fn)
	}

	queue := &afterCommitQueue{}
	if err := db.WithContext(context.WithValue(ctx, afterCommitKey{}, queue)).Transaction(fn); err != nil {
		return err
	}
	queue.run()
	return nil
}

// AfterCommit defers fn until the RunInTx that opened db commits. Outside a
// transaction it runs fn immediately.
func AfterCommit(db *gorm.DB, fn func()) {
	if db != nil && db.Statement != nil && db.Statement.Context != nil {
		if queue, ok := db.Statement.Context.Value(afterCommitKey{}).(*afterCommitQueue); ok {
			queue.add(fn)
			return
		}
	}
	fn()
}
