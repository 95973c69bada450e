package proc

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/yourusername/awminer/miner"
)

// SolveTimeout is the hard bound on one proof-of-work run; past it the
// helper process is killed.
const SolveTimeout = 180 * time.Second

// Solver runs an external proof-of-work helper.
type Solver struct {
	Command []string
	Timeout time.Duration
}

// NewSolver creates a solver around the given helper command, verifying the
// helper exists.
func NewSolver(command []string) (*Solver, error) {
	if err := checkCommand(command); err != nil {
		return nil, err
	}
	return &Solver{Command: command, Timeout: SolveTimeout}, nil
}

// DetectSolverCommand finds a proof-of-work helper next to the working
// directory: the native build when present, otherwise the Node script.
func DetectSolverCommand() ([]string, error) {
	if _, err := os.Stat("pow_worker"); err == nil {
		return []string{"./pow_worker"}, nil
	}
	if _, err := os.Stat("pow_worker.js"); err == nil {
		return []string{"node", "pow_worker.js"}, nil
	}
	return nil, errors.New("no pow_worker helper found")
}

// Solve implements miner.ComputeService.
func (s *Solver) Solve(ctx context.Context, req miner.ComputeRequest) (*miner.ComputeResponse, error) {
	var resp miner.ComputeResponse
	if err := runOnce(ctx, s.Timeout, s.Command, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
