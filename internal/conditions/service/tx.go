package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	id "fellinglicence/pkg/domain"
	dErrors "fellinglicence/pkg/domain-errors"
)

// ConditionStoreTx provides the unit of work for clear-then-save.
// Implementations may wrap a database transaction or, in-memory, a lock.
// The ctx passed to fn carries the transaction so stores and audit sinks
// called inside fn join it.
type ConditionStoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}

// numApplicationShards spreads applications across locks so unrelated
// applications do not serialise behind each other.
const numApplicationShards = 64

// DefaultTxTimeout bounds a unit of work when the caller set no deadline.
const DefaultTxTimeout = 5 * time.Second

// Stager is implemented by in-memory stores that can buffer a unit of work.
type Stager interface {
	Stage() StagedStore
}

// StagedStore buffers writes until Commit; reads through it see the buffered
// state. Dropping it without Commit discards the writes.
type StagedStore interface {
	Store
	Commit()
}

// ShardedTx serialises units of work per application over an in-memory store.
// When the store is a Stager, fn writes to a staging view that is published in
// one step on success and discarded on error.
type ShardedTx struct {
	shards  [numApplicationShards]sync.Mutex
	store   Store
	timeout time.Duration
}

func NewShardedTx(store Store, timeout time.Duration) *ShardedTx {
	return &ShardedTx{store: store, timeout: timeout}
}

func (t *ShardedTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = DefaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := t.selectShard(ctx)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Re-check after waiting on the lock.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	stager, ok := t.store.(Stager)
	if !ok {
		return fn(ctx, t.store)
	}
	staged := stager.Stage()
	if err := fn(ctx, staged); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	staged.Commit()
	return nil
}

// selectShard picks a shard from the application in context, or shard 0.
func (t *ShardedTx) selectShard(ctx context.Context) int {
	appID, ok := ctx.Value(txApplicationKey{}).(id.ApplicationID)
	if !ok || appID.IsNil() {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write(appID[:])
	return int(h.Sum32() % numApplicationShards)
}

type txApplicationKey struct{}

// WithApplication scopes ctx to an application so the in-memory tx can pick
// its shard.
func WithApplication(ctx context.Context, appID id.ApplicationID) context.Context {
	return context.WithValue(ctx, txApplicationKey{}, appID)
}
