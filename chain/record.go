package chain

import (
	"context"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// MiningRecord is the per-account state row from the mining contract's
// miners table. It is never cached: a stale record produces an invalid
// proof-of-work input, so callers re-fetch before every use.
type MiningRecord struct {
	LastMineTx  string
	CurrentLand string
	LastMine    *time.Time
}

type minerRow struct {
	LastMineTx  string `json:"last_mine_tx"`
	CurrentLand string `json:"current_land"`
	LastMine    string `json:"last_mine"`
}

// Client reads mining state from the ledger through an endpoint pool.
type Client struct {
	Pool        *EndpointPool
	Contract    string
	DefaultLand string
}

// NewClient creates a ledger client for the given mining contract. Empty
// contract and land fall back to the package defaults.
func NewClient(pool *EndpointPool, contract, defaultLand string) *Client {
	if contract == "" {
		contract = FederationAccount
	}
	if defaultLand == "" {
		defaultLand = DefaultLandID
	}
	return &Client{Pool: pool, Contract: contract, DefaultLand: defaultLand}
}

// MinerRecord fetches the account's miner row. A nil result means the
// account has never mined or every endpoint failed; either way the caller
// proceeds with sentinel values.
func (c *Client) MinerRecord(ctx context.Context, account string) *MiningRecord {
	rows := c.Pool.GetTableRows(ctx, TableRowsRequest{
		Code:       c.Contract,
		Scope:      c.Contract,
		Table:      "miners",
		LowerBound: account,
		UpperBound: account,
		Limit:      1,
	})
	if len(rows) == 0 {
		return nil
	}

	var row minerRow
	if err := sonic.Unmarshal(rows[0], &row); err != nil {
		return nil
	}

	rec := &MiningRecord{
		LastMineTx:  row.LastMineTx,
		CurrentLand: row.CurrentLand,
	}
	if rec.LastMineTx == "" {
		rec.LastMineTx = ZeroTxHash
	}
	if rec.CurrentLand == "" {
		rec.CurrentLand = c.DefaultLand
	}
	if t, ok := parseChainTime(row.LastMine); ok {
		rec.LastMine = &t
	}
	return rec
}

// parseChainTime parses the chain's ISO timestamps, dropping any fractional
// seconds. Chain timestamps are UTC without a zone suffix.
func parseChainTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
