package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"postdeck/internal/engagement"
	"postdeck/internal/model"
	"postdeck/internal/queue"
)

const (
	// DefaultClaimBatch bounds how many due drafts one tick claims.
	DefaultClaimBatch = 50
)

// DueClaimer atomically claims scheduled drafts whose time has come.
type DueClaimer interface {
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.Draft, error)
}

// UserLister enumerates accounts for the inbox-sync fanout.
type UserLister interface {
	ListIDs(ctx context.Context) ([]int64, error)
}

// Dispatcher is the clock of the system: one ticker claims due drafts and
// emits publish_due events, another fans out inbox_sync_due per user and
// platform. Claiming flips rows to publishing first, so restarting the
// dispatcher never double-publishes.
type Dispatcher struct {
	claimer       DueClaimer
	users         UserLister
	publisher     queue.Publisher
	claimInterval time.Duration
	syncInterval  time.Duration
	claimBatch    int

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewDispatcher(claimer DueClaimer, users UserLister, publisher queue.Publisher, claimInterval, syncInterval time.Duration) *Dispatcher {
	return &Dispatcher{
		claimer:       claimer,
		users:         users,
		publisher:     publisher,
		claimInterval: claimInterval,
		syncInterval:  syncInterval,
		claimBatch:    DefaultClaimBatch,
	}
}

// Start launches both tickers. Call Stop() to shut down.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)

	d.wg.Add(2)
	go d.runClaimLoop(ctx)
	go d.runSyncLoop(ctx)

	log.Printf("[Dispatcher] Started (claim=%v sync=%v)", d.claimInterval, d.syncInterval)
}

// Stop shuts down the tickers and waits for in-flight ticks.
func (d *Dispatcher) Stop() {
	log.Printf("[Dispatcher] Stopping...")
	d.cancel()
	d.wg.Wait()
	log.Printf("[Dispatcher] Stopped")
}

func (d *Dispatcher) runClaimLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.claimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.claimAndDispatch(ctx)
		}
	}
}

// claimAndDispatch claims due drafts and emits one publish_due per draft.
func (d *Dispatcher) claimAndDispatch(ctx context.Context) {
	drafts, err := d.claimer.ClaimDue(ctx, time.Now(), d.claimBatch)
	if err != nil {
		log.Printf("[Dispatcher] ClaimDue failed: %v", err)
		return
	}
	if len(drafts) == 0 {
		return
	}

	log.Printf("[Dispatcher] Claimed %d due drafts", len(drafts))
	for _, draft := range drafts {
		event := queue.NewPublishDueEvent(draft.ID, draft.UserID)
		if _, err := d.publisher.Publish(ctx, queue.StreamPublish, event); err != nil {
			// The row stays in publishing; operators can requeue it.
			log.Printf("[Dispatcher] Failed to dispatch draft %d: %v", draft.ID, err)
		}
	}
}

func (d *Dispatcher) runSyncLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.dispatchInboxSync(ctx)
		}
	}
}

// dispatchInboxSync emits one inbox_sync_due per user and platform.
func (d *Dispatcher) dispatchInboxSync(ctx context.Context) {
	userIDs, err := d.users.ListIDs(ctx)
	if err != nil {
		log.Printf("[Dispatcher] ListIDs failed: %v", err)
		return
	}

	for _, userID := range userIDs {
		for _, platform := range engagement.Platforms() {
			event := queue.NewInboxSyncDueEvent(userID, platform)
			if _, err := d.publisher.Publish(ctx, queue.StreamPublish, event); err != nil {
				log.Printf("[Dispatcher] Failed to dispatch inbox sync user=%d platform=%s: %v",
					userID, platform, err)
			}
		}
	}
}
