package miner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"

	"github.com/yourusername/awminer/chain"
)

// WorkerDeps are the collaborators a worker runs against. Tests substitute
// fakes for the three service-shaped fields.
type WorkerDeps struct {
	Records RecordFetcher
	Gate    *ComputeGate
	Compute ComputeService
	Signer  chain.SigningService
	Builder *chain.TxBuilder
	Log     *EventLog
}

// Worker drives the mining cycle for one account: check cooldown, wait it
// out, queue for the compute gate, solve, submit, pause, repeat. Cycles
// within one account are strictly sequential; the loop ends only on Stop.
type Worker struct {
	account Account
	deps    WorkerDeps

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	phase   atomic.Int32
	status  atomic.Value // string, written only by the worker goroutine
	running atomic.Bool

	// pollInterval is the cancellation-check granularity inside waits;
	// cyclePause is the rest between cycles. Shortened in tests.
	pollInterval time.Duration
	cyclePause   time.Duration
}

// NewWorker creates a worker for the account. Start launches it.
func NewWorker(account Account, deps WorkerDeps) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		account:      account,
		deps:         deps,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
		pollInterval: time.Second,
		cyclePause:   5 * time.Second,
	}
	w.setPhase(PhaseIdle, "Idle")
	return w
}

// Start launches the worker goroutine.
func (w *Worker) Start() {
	w.running.Store(true)
	go w.run()
}

// Stop requests cooperative shutdown. An in-flight external call is left to
// finish or hit its own timeout: killing a submission mid-flight risks an
// ambiguous on-chain state.
func (w *Worker) Stop() {
	w.cancel()
}

// Done is closed when the worker goroutine has exited.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Account returns the worker's account.
func (w *Worker) Account() Account {
	return w.account
}

// Running reports whether the worker goroutine is alive.
func (w *Worker) Running() bool {
	return w.running.Load()
}

// Phase returns the worker's current cycle phase.
func (w *Worker) Phase() Phase {
	return Phase(w.phase.Load())
}

// Status returns the worker's display status text.
func (w *Worker) Status() string {
	if s, ok := w.status.Load().(string); ok {
		return s
	}
	return "Idle"
}

func (w *Worker) setPhase(p Phase, status string) {
	w.phase.Store(int32(p))
	w.status.Store(status)
}

func (w *Worker) cancelled() bool {
	select {
	case <-w.ctx.Done():
		return true
	default:
		return false
	}
}

func (w *Worker) run() {
	defer close(w.done)
	defer w.running.Store(false)

	w.deps.Log.Add(w.account.Name, "Worker started", LevelInfo)

	for !w.cancelled() {
		if err := w.cycle(); err != nil {
			w.setPhase(PhaseFailed, "Error: "+err.Error())
			w.deps.Log.Add(w.account.Name, "Error: "+err.Error(), LevelError)
		}
		if !w.pause(w.cyclePause) {
			break
		}
	}

	w.setPhase(PhaseStopped, "Stopped")
	w.deps.Log.Add(w.account.Name, "Worker stopped", LevelWarn)
}

// cycle runs one full mining attempt. A nil return covers success, a soft
// rejection, and cancellation; an error aborts the cycle but never the
// worker.
func (w *Worker) cycle() error {
	w.setPhase(PhaseCheckingCooldown, "Checking cooldown...")

	lastTx := chain.ZeroTxHash
	land := chain.DefaultLandID

	rec := w.deps.Records.MinerRecord(w.ctx, w.account.Name)
	if rec != nil {
		lastTx, land = rec.LastMineTx, rec.CurrentLand

		if rec.LastMine != nil {
			elapsed := time.Since(*rec.LastMine)
			if remaining := w.account.CooldownDuration() - elapsed; remaining > 0 {
				if !w.waitCooldown(remaining) {
					return nil
				}
				// Another process may have mined while we waited;
				// the solve input must reference the newest hash.
				if rec = w.deps.Records.MinerRecord(w.ctx, w.account.Name); rec != nil {
					lastTx = rec.LastMineTx
				}
			}
		}
	}

	w.setPhase(PhaseQueuedForCompute, "Queued for PoW...")
	if err := w.deps.Gate.Acquire(w.ctx); err != nil {
		return nil
	}

	// The gate wait can outlast the record's freshness; re-fetch once more
	// immediately before solving.
	if rec = w.deps.Records.MinerRecord(w.ctx, w.account.Name); rec != nil {
		lastTx, land = rec.LastMineTx, rec.CurrentLand
	}

	w.setPhase(PhaseComputing, "Mining (PoW)...")
	resp, err := w.deps.Compute.Solve(w.ctx, ComputeRequest{
		Account:    w.account.Name,
		LastMineTx: lastTx,
	})
	w.deps.Gate.Release()
	if err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if !resp.Success {
		if resp.Error == "" {
			resp.Error = "unknown error"
		}
		return errors.New("solver: " + resp.Error)
	}
	w.deps.Log.Add(w.account.Name, fmt.Sprintf("Nonce found (%s iters, %s H/s)",
		humanize.Comma(resp.Iterations), humanize.Comma(resp.Hashrate)), LevelInfo)

	if w.cancelled() {
		return nil
	}

	w.setPhase(PhaseSubmitting, "Submitting transaction...")
	action := w.deps.Builder.MineAction(w.account.Name, land, resp.Nonce)
	result := w.deps.Builder.Push(w.ctx, w.deps.Signer, w.account.Name,
		[]chain.Action{action}, []string{w.account.Key})

	switch result.Outcome {
	case chain.PushAccepted:
		bounty := result.Bounty
		if bounty == "" {
			bounty = "?"
		}
		w.setPhase(PhaseSucceeded, "+"+bounty)
		w.deps.Log.Add(w.account.Name, "Mined! +"+bounty, LevelSuccess)
	case chain.PushSoftRejected:
		w.setPhase(PhaseSoftRejected, "Mine too soon")
		w.deps.Log.Add(w.account.Name, "Mine too soon", LevelWarn)
	default:
		if result.Err != nil {
			return result.Err
		}
		return errors.New("submission failed")
	}
	return nil
}

// waitCooldown sits out the remaining cooldown, updating the countdown
// status once per poll interval. Returns false on cancellation.
func (w *Worker) waitCooldown(remaining time.Duration) bool {
	deadline := time.Now().Add(remaining)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return true
		}
		w.setPhase(PhaseWaiting, "Cooldown "+durafmt.Parse(left.Round(time.Second)).LimitFirstN(2).String())

		step := w.pollInterval
		if left < step {
			step = left
		}
		select {
		case <-w.ctx.Done():
			return false
		case <-time.After(step):
		}
	}
}

// pause sleeps between cycles in poll-interval steps. Returns false on
// cancellation.
func (w *Worker) pause(d time.Duration) bool {
	deadline := time.Now().Add(d)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return true
		}
		step := w.pollInterval
		if left < step {
			step = left
		}
		select {
		case <-w.ctx.Done():
			return false
		case <-time.After(step):
		}
	}
}
