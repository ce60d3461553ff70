package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ortano/docsync/internal/adapter"
	"github.com/ortano/docsync/internal/config"
	"github.com/ortano/docsync/internal/logger"
	"github.com/ortano/docsync/internal/store"
	"github.com/ortano/docsync/models"
)

type syncOrchestrator struct {
	store     store.MutationStore
	transport adapter.SyncTransport
	cfg       config.Sync
	telemetry *Telemetry
	logger    *logger.Logger

	trigger *Debouncer
	retry   *Debouncer

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	state     models.EngineState
	conflicts map[string]models.Conflict
	observers []func(models.EngineState)
	running   bool
	runAgain  bool
	deviceID  string

	wg  sync.WaitGroup
	now func() time.Time
}

// NewOrchestrator wires the engine's state machine over the local store and
// the transport.
func NewOrchestrator(mutations store.MutationStore, transport adapter.SyncTransport, cfg config.Sync, log *logger.Logger) Orchestrator {
	return &syncOrchestrator{
		store:     mutations,
		transport: transport,
		cfg:       cfg,
		telemetry: NewTelemetry(),
		logger:    log,
		trigger:   NewDebouncer(cfg.Debounce),
		retry:     NewDebouncer(0),
		state:     models.EngineState{Phase: models.PhaseIdle},
		conflicts: make(map[string]models.Conflict),
		now:       time.Now,
	}
}

// Start implements [Orchestrator].
func (o *syncOrchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ctx, o.cancel = context.WithCancel(ctx)
}

// Stop implements [Orchestrator].
func (o *syncOrchestrator) Stop() {
	o.trigger.Stop()
	o.retry.Stop()

	o.mu.Lock()
	cancel := o.cancel
	o.cancel = nil
	o.ctx = nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	o.wg.Wait()
}

// TriggerSync implements [Orchestrator].
func (o *syncOrchestrator) TriggerSync(reason string) {
	o.telemetry.RecordTrigger(reason)
	o.logger.Debug().
		Str("func", "syncOrchestrator.TriggerSync").
		Str("reason", reason).
		Msg("sync trigger")
	o.trigger.Trigger(o.requestCycle)
}

// requestCycle starts a cycle, or marks one more follow-up run if a cycle
// is already in flight.
func (o *syncOrchestrator) requestCycle() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctx == nil {
		return
	}
	if o.running {
		o.runAgain = true
		return
	}

	o.running = true
	o.wg.Add(1)
	go o.runCycles(o.ctx)
}

func (o *syncOrchestrator) runCycles(ctx context.Context) {
	defer o.wg.Done()

	for {
		err := o.cycle(ctx)
		retryScheduled := false
		if err != nil {
			retryScheduled = o.failCycle(err)
		}

		// A trigger that arrived mid-cycle gets its follow-up run unless a
		// backoff retry is already on the way to provide it.
		o.mu.Lock()
		if o.runAgain && !retryScheduled && ctx.Err() == nil {
			o.runAgain = false
			o.mu.Unlock()
			continue
		}
		o.running = false
		o.runAgain = false
		o.mu.Unlock()
		return
	}
}

func (o *syncOrchestrator) cycle(ctx context.Context) error {
	state, err := o.store.LoadOrCreateSyncState(ctx)
	if err != nil {
		return err
	}
	if !state.IsSyncEnabled {
		o.setState(func(s *models.EngineState) {
			s.Phase = models.PhaseIdle
			s.ConflictCount = 0
			s.Message = ""
		})
		return nil
	}

	o.mu.Lock()
	o.deviceID = state.DeviceID
	o.mu.Unlock()

	if _, err = o.store.EnqueueLocalSnapshotIfNeeded(ctx); err != nil {
		return err
	}

	o.setState(func(s *models.EngineState) {
		s.Phase = models.PhaseSyncing
		s.Message = ""
	})

	if err = o.drainPushQueue(ctx, state); err != nil {
		return err
	}
	if err = o.runPullLoop(ctx); err != nil {
		return err
	}

	now := o.now().UTC()
	o.mu.Lock()
	unresolved := len(o.conflicts)
	o.mu.Unlock()
	o.setState(func(s *models.EngineState) {
		s.ConflictCount = unresolved
		if s.ConflictCount > 0 {
			s.Phase = models.PhaseConflict
		} else {
			s.Phase = models.PhaseIdle
		}
		s.ConsecutiveFailures = 0
		s.Message = ""
		s.LastSyncAt = &now
	})
	return nil
}

// drainPushQueue pushes pending mutations in batches. It stops when the
// queue is empty or a round acknowledges nothing, which means everything
// left needs resolution or another attempt on a later cycle.
func (o *syncOrchestrator) drainPushQueue(ctx context.Context, state models.SyncState) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := o.store.FetchPendingMutations(ctx, o.cfg.BatchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		req := models.PushRequest{
			DeviceID:   state.DeviceID,
			BaseCursor: state.LastCursor,
		}
		for _, mutation := range batch {
			req.Mutations = append(req.Mutations, models.PushItemFromMutation(mutation))
		}

		resp, err := o.transport.Push(ctx, req)
		if err != nil {
			return err
		}
		if err = o.store.ProcessPushResponse(ctx, resp); err != nil {
			return err
		}
		if resp.NewCursor != "" {
			state.LastCursor = resp.NewCursor
		}

		if err = o.handleConflicts(ctx, resp.Conflicts); err != nil {
			return err
		}

		if len(resp.AcknowledgedOpIDs) == 0 {
			return nil
		}
	}
}

// handleConflicts applies the automatic policy to version mismatches and
// parks everything else for manual review.
func (o *syncOrchestrator) handleConflicts(ctx context.Context, conflicts []models.Conflict) error {
	for _, c := range conflicts {
		o.audit(ctx, models.EventConflictDetected, c)

		pending, err := o.store.FetchPendingMutation(ctx, c.OpID)
		if err != nil {
			// The queue entry vanished (e.g. superseded); the conflict is
			// moot.
			o.logger.Debug().
				Str("func", "syncOrchestrator.handleConflicts").
				Str("op_id", c.OpID).
				Msg("conflicted mutation no longer queued, skipping")
			continue
		}

		o.mu.Lock()
		deviceID := o.deviceID
		o.mu.Unlock()

		switch Resolve(c, pending, deviceID) {
		case models.KeepMine:
			if err = o.store.ResolveConflictKeepMine(ctx, c.OpID, c.ServerVersion); err != nil {
				return err
			}
			o.audit(ctx, models.EventKeptMine, c)

		case models.KeepServer:
			if err = o.store.ResolveConflictKeepServer(ctx, c.OpID); err != nil {
				return err
			}
			if err = o.store.AdoptServerState(ctx, c); err != nil {
				return err
			}
			o.audit(ctx, models.EventKeptServer, c)

		case models.ManualReview:
			o.mu.Lock()
			o.conflicts[c.OpID] = c
			o.mu.Unlock()
		}
	}
	return nil
}

func (o *syncOrchestrator) runPullLoop(ctx context.Context) error {
	state, err := o.store.LoadOrCreateSyncState(ctx)
	if err != nil {
		return err
	}
	cursor := state.LastCursor

	for {
		if err = ctx.Err(); err != nil {
			return err
		}

		resp, err := o.transport.Pull(ctx, models.PullRequest{Cursor: cursor, Limit: o.cfg.PullLimit})
		if err != nil {
			return err
		}
		if err = o.store.ApplyPullResponse(ctx, resp); err != nil {
			return err
		}
		if resp.NextCursor != "" {
			cursor = resp.NextCursor
		}
		if !resp.HasMore {
			return nil
		}
	}
}

// failCycle records a failed cycle and schedules at most one automatic
// retry with exponential backoff. Beyond the failure cap the engine stays
// failed until a manual trigger.
// failCycle records a failed cycle and schedules the automatic backoff
// retry. It reports whether a retry was scheduled; past the failure cap it
// was not, and only explicit triggers restart the engine.
func (o *syncOrchestrator) failCycle(err error) bool {
	o.telemetry.RecordFailure()

	o.mu.Lock()
	o.state.ConsecutiveFailures++
	failures := o.state.ConsecutiveFailures
	o.mu.Unlock()

	o.logger.Err(err).
		Str("func", "syncOrchestrator.failCycle").
		Int("consecutive_failures", failures).
		Msg("sync cycle failed")

	o.setState(func(s *models.EngineState) {
		s.Phase = models.PhaseFailed
		s.Message = err.Error()
	})

	if o.cfg.MaxFailures > 0 && failures >= o.cfg.MaxFailures {
		o.logger.Warn().
			Str("func", "syncOrchestrator.failCycle").
			Msg("failure cap reached, automatic retries stopped")
		return false
	}

	o.retry.TriggerAfter(o.retryDelay(failures), o.requestCycle)
	return true
}

func (o *syncOrchestrator) retryDelay(failures int) time.Duration {
	if failures > 30 {
		failures = 30
	}
	delay := time.Second << (failures - 1)
	if o.cfg.RetryBackoffCap > 0 && (delay > o.cfg.RetryBackoffCap || delay <= 0) {
		delay = o.cfg.RetryBackoffCap
	}
	return delay/2 + time.Duration(rand.Int63n(int64(delay/2)+1))
}

// State implements [Orchestrator].
func (o *syncOrchestrator) State() models.EngineState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Conflicts implements [Orchestrator].
func (o *syncOrchestrator) Conflicts() []models.Conflict {
	o.mu.Lock()
	defer o.mu.Unlock()

	list := make([]models.Conflict, 0, len(o.conflicts))
	for _, c := range o.conflicts {
		list = append(list, c)
	}
	return list
}

// ResolveKeepMine implements [Orchestrator].
func (o *syncOrchestrator) ResolveKeepMine(ctx context.Context, opID string) error {
	if err := o.resolveManually(ctx, opID, models.KeepMine); err != nil {
		return err
	}
	o.TriggerSync("manual-resolution")
	return nil
}

// ResolveKeepServer implements [Orchestrator].
func (o *syncOrchestrator) ResolveKeepServer(ctx context.Context, opID string) error {
	if err := o.resolveManually(ctx, opID, models.KeepServer); err != nil {
		return err
	}
	o.TriggerSync("manual-resolution")
	return nil
}

// ResolveAll implements [Orchestrator].
func (o *syncOrchestrator) ResolveAll(ctx context.Context, resolution models.Resolution) error {
	if resolution != models.KeepMine && resolution != models.KeepServer {
		return fmt.Errorf("cannot resolve all conflicts as %q", resolution)
	}

	o.mu.Lock()
	opIDs := make([]string, 0, len(o.conflicts))
	for opID := range o.conflicts {
		opIDs = append(opIDs, opID)
	}
	o.mu.Unlock()

	for _, opID := range opIDs {
		if err := o.resolveManually(ctx, opID, resolution); err != nil {
			return err
		}
	}

	o.TriggerSync("manual-resolution")
	return nil
}

func (o *syncOrchestrator) resolveManually(ctx context.Context, opID string, resolution models.Resolution) error {
	o.mu.Lock()
	c, ok := o.conflicts[opID]
	o.mu.Unlock()
	if !ok {
		// Already resolved or superseded.
		return nil
	}

	switch resolution {
	case models.KeepMine:
		if err := o.store.ResolveConflictKeepMine(ctx, opID, c.ServerVersion); err != nil {
			return err
		}
		o.audit(ctx, models.EventKeptMine, c)
	case models.KeepServer:
		if err := o.store.ResolveConflictKeepServer(ctx, opID); err != nil {
			return err
		}
		if err := o.store.AdoptServerState(ctx, c); err != nil {
			return err
		}
		o.audit(ctx, models.EventKeptServer, c)
	default:
		return fmt.Errorf("cannot resolve conflict %s as %q", opID, resolution)
	}

	o.mu.Lock()
	delete(o.conflicts, opID)
	unresolved := len(o.conflicts)
	o.mu.Unlock()

	o.setState(func(s *models.EngineState) {
		s.ConflictCount = unresolved
		if s.Phase == models.PhaseConflict && s.ConflictCount == 0 {
			s.Phase = models.PhaseIdle
		}
	})
	return nil
}

// SetSyncEnabled implements [Orchestrator].
func (o *syncOrchestrator) SetSyncEnabled(ctx context.Context, enabled bool) error {
	if err := o.store.SetSyncEnabled(ctx, enabled); err != nil {
		return err
	}
	if enabled {
		o.TriggerSync("sync-enabled")
	}
	return nil
}

// Subscribe implements [Orchestrator].
func (o *syncOrchestrator) Subscribe(fn func(models.EngineState)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

// Telemetry implements [Orchestrator].
func (o *syncOrchestrator) Telemetry() TelemetrySnapshot {
	return o.telemetry.Snapshot()
}

// setState mutates the engine state under lock and notifies observers
// outside it.
func (o *syncOrchestrator) setState(mutate func(*models.EngineState)) {
	o.mu.Lock()
	mutate(&o.state)
	snapshot := o.state
	observers := make([]func(models.EngineState), len(o.observers))
	copy(observers, o.observers)
	o.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}

func (o *syncOrchestrator) audit(ctx context.Context, eventType models.ConflictEventType, c models.Conflict) {
	err := o.store.AppendConflictEvent(ctx, models.ConflictEvent{
		Type:      eventType,
		Entity:    c.Entity,
		EntityID:  c.EntityID,
		Reason:    string(c.Reason),
		Timestamp: o.now().UTC(),
	})
	if err != nil {
		o.logger.Err(err).
			Str("func", "syncOrchestrator.audit").
			Str("op_id", c.OpID).
			Msg("failed to append conflict event")
	}
}
