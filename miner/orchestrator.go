package miner

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Orchestrator owns the worker set. The first configured account is the fee
// payer and never gets a worker; every other account gets exactly one.
type Orchestrator struct {
	mu       sync.RWMutex
	accounts []Account
	workers  map[string]*Worker
	deps     WorkerDeps

	// stopSettle is how long StartAll waits after stopping a previous
	// worker set; staggerSleep paces worker startup so the query
	// endpoints don't see a burst. Both replaced in tests.
	stopSettle   time.Duration
	staggerSleep func(time.Duration)
}

// NewOrchestrator creates an orchestrator over the loaded account list.
func NewOrchestrator(accounts []Account, deps WorkerDeps) *Orchestrator {
	return &Orchestrator{
		accounts:     accounts,
		workers:      make(map[string]*Worker),
		deps:         deps,
		stopSettle:   500 * time.Millisecond,
		staggerSleep: time.Sleep,
	}
}

// FeePayer returns the designated fee payer account.
func (o *Orchestrator) FeePayer() (Account, bool) {
	if len(o.accounts) == 0 {
		return Account{}, false
	}
	return o.accounts[0], true
}

// StartAll stops any running workers, then starts one worker per mining
// account with a small stagger between launches. It is an error to start
// with fewer than two accounts: there is no payer/miner distinction.
func (o *Orchestrator) StartAll() error {
	o.mu.Lock()
	previous := o.workers
	o.workers = make(map[string]*Worker)
	o.mu.Unlock()

	if len(previous) > 0 {
		for _, w := range previous {
			w.Stop()
		}
		o.staggerSleep(o.stopSettle)
	}

	if len(o.accounts) < 2 {
		o.deps.Log.Add(SystemAccount, "Not enough accounts to mine (need more than one)", LevelError)
		return errors.New("need at least two accounts: one fee payer and one miner")
	}

	payer := o.accounts[0]
	mining := o.accounts[1:]

	o.deps.Log.Add(SystemAccount, fmt.Sprintf("Starting %d miners", len(mining)), LevelSuccess)
	o.deps.Log.Add(SystemAccount, "Fee payer: "+payer.Name, LevelInfo)
	o.deps.Log.Add(SystemAccount, fmt.Sprintf("PoW limited to %d concurrent", o.deps.Gate.Capacity()), LevelInfo)

	for i, acc := range mining {
		w := NewWorker(acc, o.deps)

		o.mu.Lock()
		o.workers[acc.Name] = w
		o.mu.Unlock()

		w.Start()

		// Ad hoc rate limiting, not policy: space out the startup
		// queries hitting the endpoints.
		if i < 50 {
			o.staggerSleep(100 * time.Millisecond)
		} else if i%10 == 0 {
			o.staggerSleep(50 * time.Millisecond)
		}
	}

	o.deps.Log.Add(SystemAccount, "All workers running", LevelSuccess)
	return nil
}

// StopAll signals cancellation to every worker without blocking on their
// termination.
func (o *Orchestrator) StopAll() {
	o.mu.RLock()
	defer o.mu.RUnlock()

	for _, w := range o.workers {
		w.Stop()
	}
	o.deps.Log.Add(SystemAccount, "Stop requested for all workers", LevelWarn)
}

// Worker returns the worker for an account name, if one exists.
func (o *Orchestrator) Worker(name string) (*Worker, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	w, ok := o.workers[name]
	return w, ok
}

// Snapshot aggregates worker liveness and status for the reporting surface.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	snap := Snapshot{
		Total:    len(o.accounts),
		Accounts: make([]AccountStatus, 0, len(o.accounts)),
		Logs:     o.deps.Log.Entries(),
	}
	if payer, ok := o.FeePayer(); ok {
		snap.FeePayer = payer.Name
	}

	for _, acc := range o.accounts {
		st := AccountStatus{
			Name:     acc.Name,
			Cooldown: acc.Cooldown,
			Phase:    PhaseIdle.String(),
			Status:   "Idle",
		}
		if w, ok := o.workers[acc.Name]; ok {
			st.Running = w.Running()
			st.Phase = w.Phase().String()
			st.Status = w.Status()
			if st.Running {
				snap.Running++
			}
		}
		snap.Accounts = append(snap.Accounts, st)
	}
	return snap
}
