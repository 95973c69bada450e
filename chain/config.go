package chain

import "time"

const (
	// FederationAccount is the mining contract that owns the miners table
	// and accepts mine actions.
	FederationAccount = "m.federation"

	// MineActionName is the contract action submitted once per cycle.
	MineActionName = "mine"

	// MintLogActionName is the inline action whose data carries the bounty
	// paid out for a successful mine.
	MintLogActionName = "logmint"

	// ActivePermission is the permission level used on every authorization.
	ActivePermission = "active"

	// DefaultLandID is used when an account's miner row carries no land.
	DefaultLandID = "1099512960590"

	// ZeroTxHash is the sentinel transaction hash for accounts that have
	// never mined.
	ZeroTxHash = "0000000000000000000000000000000000000000000000000000000000000000"

	// QueryTimeout bounds a single table query request.
	QueryTimeout = 5 * time.Second
)

var (
	// DefaultEndpoints are the chain API endpoints used when none are
	// configured.
	DefaultEndpoints = []string{
		"http://wax.qaraqol.com",
		"https://wax.greymass.com",
	}
)
