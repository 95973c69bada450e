package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Authorization names an actor/permission pair on an action.
type Authorization struct {
	Actor      string `json:"actor"`
	Permission string `json:"permission"`
}

// Action is one contract action in a transaction.
type Action struct {
	Account       string                 `json:"account"`
	Name          string                 `json:"name"`
	Authorization []Authorization        `json:"authorization"`
	Data          map[string]interface{} `json:"data"`
}

// SignRequest is the payload handed to the signing service.
type SignRequest struct {
	PrivateKeys []string `json:"privateKeys"`
	RPCURL      string   `json:"rpcUrl"`
	Actions     []Action `json:"actions"`
}

// ActionTrace is the subset of a chain action trace needed to locate the
// bounty in a transaction receipt.
type ActionTrace struct {
	Act struct {
		Name string                 `json:"name"`
		Data map[string]interface{} `json:"data"`
	} `json:"act"`
	InlineTraces []ActionTrace `json:"inline_traces"`
}

// SignResponse is the signing service's reply: either a trace tree or an
// application-level error string.
type SignResponse struct {
	Success       bool          `json:"success"`
	TransactionID string        `json:"transaction_id,omitempty"`
	Traces        []ActionTrace `json:"traces,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// SigningService signs and broadcasts an action batch. Implementations live
// outside the core; see the proc package for the process-spawning one.
type SigningService interface {
	Submit(ctx context.Context, req SignRequest) (*SignResponse, error)
}

// PushOutcome discriminates the result of a submission round.
type PushOutcome int

const (
	// PushAccepted means the transaction was accepted on chain.
	PushAccepted PushOutcome = iota
	// PushSoftRejected means the chain's own cooldown enforcement refused
	// the mine; the cycle simply restarts.
	PushSoftRejected
	// PushFailed covers every other failure, including retry exhaustion.
	PushFailed
)

// PushResult carries the outcome of a submission round. Bounty is set only
// on acceptance and only when the trace tree contained one.
type PushResult struct {
	Outcome PushOutcome
	Bounty  string
	Err     error
}

// softRejectSignal is the error string the mining contract returns when a
// mine lands inside the chain-enforced cooldown. sign.js gives us nothing
// more structured than the message text, so substring matching it here is
// the one deliberately fragile integration point; it must not leak past
// classifyPushError.
const softRejectSignal = "MINE_TOO_SOON"

const pushAttempts = 3

// TxBuilder assembles mine actions and pushes them through a signing
// service, funding transaction cost from the fee payer account.
type TxBuilder struct {
	Pool     *EndpointPool
	Contract string

	payerName string
	payerKey  string

	log *logrus.Logger

	// retryDelay is the pause after a transport/parse failure before the
	// next attempt. Shortened in tests.
	retryDelay time.Duration
}

// NewTxBuilder creates a builder that submits against the given contract.
// payerName/payerKey identify the fee payer whose authorization is
// prepended to every action not authored by the payer itself.
func NewTxBuilder(pool *EndpointPool, contract, payerName, payerKey string, log *logrus.Logger) *TxBuilder {
	if contract == "" {
		contract = FederationAccount
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TxBuilder{
		Pool:       pool,
		Contract:   contract,
		payerName:  payerName,
		payerKey:   payerKey,
		log:        log,
		retryDelay: 2 * time.Second,
	}
}

// MineAction builds the mine action with the submitting account as primary
// authorizer.
func (b *TxBuilder) MineAction(account, landID, nonce string) Action {
	return Action{
		Account: b.Contract,
		Name:    MineActionName,
		Authorization: []Authorization{
			{Actor: account, Permission: ActivePermission},
		},
		Data: map[string]interface{}{
			"miner":   account,
			"land_id": landID,
			"nonce":   nonce,
		},
	}
}

// ApplyFeeDelegation prepends the fee payer's key to the key list and the
// fee payer's authorization to each action, unless the submitter is the fee
// payer or the payer is already first. The submitter keeps authorship
// authority; only the transaction cost moves to the payer.
func (b *TxBuilder) ApplyFeeDelegation(submitter string, actions []Action, keys []string) ([]Action, []string) {
	if b.payerName == "" || submitter == b.payerName {
		return actions, keys
	}

	hasPayerKey := false
	for _, k := range keys {
		if k == b.payerKey {
			hasPayerKey = true
			break
		}
	}
	if !hasPayerKey {
		keys = append([]string{b.payerKey}, keys...)
	}

	for i := range actions {
		auth := actions[i].Authorization
		if len(auth) == 0 || auth[0].Actor != b.payerName {
			actions[i].Authorization = append(
				[]Authorization{{Actor: b.payerName, Permission: ActivePermission}},
				auth...,
			)
		}
	}
	return actions, keys
}

// Push applies fee delegation and submits the action batch, retrying up to
// pushAttempts times. A transport or parse failure from the signer rotates
// the endpoint and retries after a short delay; an application-level error
// rotates and returns immediately, classified as soft or fatal.
func (b *TxBuilder) Push(ctx context.Context, signer SigningService, submitter string, actions []Action, keys []string) PushResult {
	actions, keys = b.ApplyFeeDelegation(submitter, actions, keys)

	for attempt := 1; attempt <= pushAttempts; attempt++ {
		resp, err := signer.Submit(ctx, SignRequest{
			PrivateKeys: keys,
			RPCURL:      b.Pool.Current(),
			Actions:     actions,
		})
		if err != nil {
			b.log.WithFields(logrus.Fields{
				"submitter": submitter,
				"attempt":   attempt,
			}).WithError(err).Warn("submission attempt failed, rotating endpoint")
			b.Pool.Advance()
			select {
			case <-ctx.Done():
				return PushResult{Outcome: PushFailed, Err: ctx.Err()}
			case <-time.After(b.retryDelay):
			}
			continue
		}

		if resp.Success {
			return PushResult{Outcome: PushAccepted, Bounty: FindBounty(resp.Traces)}
		}

		b.Pool.Advance()
		return classifyPushError(resp.Error)
	}

	return PushResult{
		Outcome: PushFailed,
		Err:     fmt.Errorf("submission failed after %d attempts", pushAttempts),
	}
}

func classifyPushError(msg string) PushResult {
	if msg == "" {
		msg = "unknown error"
	}
	if strings.Contains(msg, softRejectSignal) {
		return PushResult{Outcome: PushSoftRejected}
	}
	return PushResult{Outcome: PushFailed, Err: errors.New(msg)}
}

// FindBounty walks the trace tree depth-first in document order and returns
// the first bounty carried by a mint-logging action, or "" if none.
func FindBounty(traces []ActionTrace) string {
	stack := make([]ActionTrace, 0, len(traces))
	for i := len(traces) - 1; i >= 0; i-- {
		stack = append(stack, traces[i])
	}

	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if t.Act.Name == MintLogActionName {
			if v, ok := t.Act.Data["bounty"]; ok && v != nil {
				if s := fmt.Sprint(v); s != "" {
					return s
				}
			}
		}
		for i := len(t.InlineTraces) - 1; i >= 0; i-- {
			stack = append(stack, t.InlineTraces[i])
		}
	}
	return ""
}
