package postgres

import (
	"context"
	"sync"
)

// afterCommit holds cache invalidations raised inside a transaction. They
// run once the transaction commits and are dropped on rollback.
type afterCommit struct {
	mu    sync.Mutex
	hooks []func(context.Context)
}

// do runs hook now when there is no surrounding transaction, otherwise
// queues it.
func (a *afterCommit) do(ctx context.Context, hook func(context.Context)) {
	if a == nil {
		hook(ctx)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, hook)
}

func (a *afterCommit) run(ctx context.Context) {
	a.mu.Lock()
	hooks := a.hooks
	a.hooks = nil
	a.mu.Unlock()

	for _, hook := range hooks {
		hook(ctx)
	}
}
