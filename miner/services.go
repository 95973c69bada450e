package miner

import (
	"context"

	"github.com/yourusername/awminer/chain"
)

// ComputeRequest is the payload handed to the proof-of-work service.
type ComputeRequest struct {
	Account    string `json:"account"`
	LastMineTx string `json:"lastMineTx"`
}

// ComputeResponse is the proof-of-work service's reply.
type ComputeResponse struct {
	Success    bool   `json:"success"`
	Nonce      string `json:"nonce"`
	Iterations int64  `json:"iterations"`
	Hashrate   int64  `json:"hashrate"`
	Error      string `json:"error,omitempty"`
}

// ComputeService solves the mining proof-of-work puzzle. Implementations
// live outside the core; see the proc package for the process-spawning one.
type ComputeService interface {
	Solve(ctx context.Context, req ComputeRequest) (*ComputeResponse, error)
}

// RecordFetcher reads an account's miner row from the ledger. A nil record
// means the account has never mined or the ledger was unreachable.
type RecordFetcher interface {
	MinerRecord(ctx context.Context, account string) *chain.MiningRecord
}
