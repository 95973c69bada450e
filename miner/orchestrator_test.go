package miner

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yourusername/awminer/chain"
)

func testAccounts(n int) []Account {
	accounts := make([]Account, 0, n)
	for i := 0; i < n; i++ {
		accounts = append(accounts, Account{
			Name:     fmt.Sprintf("acct%d", i),
			Key:      fmt.Sprintf("KEY%d", i),
			Cooldown: 2400,
		})
	}
	return accounts
}

func testOrchestrator(accounts []Account, deps WorkerDeps) *Orchestrator {
	o := NewOrchestrator(accounts, deps)
	o.staggerSleep = func(time.Duration) {}
	return o
}

func stopAndDrain(t *testing.T, o *Orchestrator) {
	t.Helper()
	o.StopAll()
	deadline := time.Now().Add(2 * time.Second)
	for _, acc := range o.accounts {
		if w, ok := o.Worker(acc.Name); ok {
			select {
			case <-w.Done():
			case <-time.After(time.Until(deadline)):
				t.Fatalf("worker %s did not stop", acc.Name)
			}
		}
	}
}

func TestOrchestrator_ExcludesFeePayer(t *testing.T) {
	solved := make(chan string, 64)

	deps := testDeps(
		func(ctx context.Context, account string) *chain.MiningRecord { return nil },
		func(ctx context.Context, req ComputeRequest) (*ComputeResponse, error) {
			select {
			case solved <- req.Account:
			default:
			}
			return okCompute()(ctx, req)
		},
		okSigner(),
	)

	o := testOrchestrator(testAccounts(5), deps)
	if err := o.StartAll(); err != nil {
		t.Fatal(err)
	}
	defer stopAndDrain(t, o)

	if _, ok := o.Worker("acct0"); ok {
		t.Fatal("the fee payer must not get a worker")
	}
	for i := 1; i < 5; i++ {
		if _, ok := o.Worker(fmt.Sprintf("acct%d", i)); !ok {
			t.Fatalf("expected a worker for acct%d", i)
		}
	}

	waitFor(t, 2*time.Second, "a solve", func() bool { return len(solved) > 0 })
	close(solved)
	for acc := range solved {
		if acc == "acct0" {
			t.Fatal("the fee payer entered the computing phase")
		}
	}
}

func TestOrchestrator_RefusesSingleAccount(t *testing.T) {
	deps := testDeps(
		func(ctx context.Context, account string) *chain.MiningRecord { return nil },
		okCompute(), okSigner(),
	)
	o := testOrchestrator(testAccounts(1), deps)
	if err := o.StartAll(); err == nil {
		t.Fatal("expected an error with a single account")
	}
	if !hasLog(deps.Log, LevelError, "Not enough accounts") {
		t.Fatal("expected a startup error event")
	}
}

func TestOrchestrator_RestartReplacesWorkers(t *testing.T) {
	deps := testDeps(
		func(ctx context.Context, account string) *chain.MiningRecord { return nil },
		okCompute(), okSigner(),
	)
	o := testOrchestrator(testAccounts(3), deps)
	if err := o.StartAll(); err != nil {
		t.Fatal(err)
	}
	first, _ := o.Worker("acct1")

	if err := o.StartAll(); err != nil {
		t.Fatal(err)
	}
	defer stopAndDrain(t, o)

	select {
	case <-first.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker from the previous set was not stopped on restart")
	}

	second, _ := o.Worker("acct1")
	if first == second {
		t.Fatal("restart must create fresh workers")
	}
}

func TestOrchestrator_ComputePhaseBoundedByGate(t *testing.T) {
	var current, peak atomic.Int32

	deps := testDeps(
		func(ctx context.Context, account string) *chain.MiningRecord { return nil },
		func(ctx context.Context, req ComputeRequest) (*ComputeResponse, error) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			current.Add(-1)
			return okCompute()(ctx, req)
		},
		okSigner(),
	)
	deps.Gate = NewComputeGate(2)

	o := testOrchestrator(testAccounts(11), deps)
	if err := o.StartAll(); err != nil {
		t.Fatal(err)
	}
	defer stopAndDrain(t, o)

	waitFor(t, 3*time.Second, "solves to flow", func() bool { return peak.Load() > 0 })
	time.Sleep(200 * time.Millisecond)

	if got := peak.Load(); got > 2 {
		t.Fatalf("%d workers computed concurrently, gate capacity is 2", got)
	}
}

func TestOrchestrator_Snapshot(t *testing.T) {
	deps := testDeps(
		func(ctx context.Context, account string) *chain.MiningRecord { return nil },
		okCompute(), okSigner(),
	)
	o := testOrchestrator(testAccounts(4), deps)

	snap := o.Snapshot()
	if snap.Total != 4 || snap.Running != 0 || snap.FeePayer != "acct0" {
		t.Fatalf("unexpected idle snapshot %+v", snap)
	}

	if err := o.StartAll(); err != nil {
		t.Fatal(err)
	}
	defer stopAndDrain(t, o)

	waitFor(t, 2*time.Second, "running snapshot", func() bool {
		return o.Snapshot().Running == 3
	})

	snap = o.Snapshot()
	if len(snap.Accounts) != 4 {
		t.Fatalf("expected 4 account rows, got %d", len(snap.Accounts))
	}
	if snap.Accounts[0].Running {
		t.Fatal("the fee payer must never report as running")
	}
	if len(snap.Logs) == 0 {
		t.Fatal("snapshot should carry recent log entries")
	}
}
