package proc

import (
	"context"
	"errors"
	"os"

	"github.com/yourusername/awminer/chain"
)

// Signer runs an external transaction-signing helper. Signing has no local
// timeout: killing an in-flight submission risks an ambiguous on-chain
// state, so the helper runs to its own completion.
type Signer struct {
	Command []string
}

// NewSigner creates a signer around the given helper command, verifying the
// helper exists.
func NewSigner(command []string) (*Signer, error) {
	if err := checkCommand(command); err != nil {
		return nil, err
	}
	return &Signer{Command: command}, nil
}

// DetectSignerCommand finds the signing helper in the working directory.
func DetectSignerCommand() ([]string, error) {
	if _, err := os.Stat("sign.js"); err == nil {
		return []string{"node", "sign.js"}, nil
	}
	return nil, errors.New("no sign.js helper found")
}

// Submit implements chain.SigningService.
func (s *Signer) Submit(ctx context.Context, req chain.SignRequest) (*chain.SignResponse, error) {
	var resp chain.SignResponse
	if err := runOnce(ctx, 0, s.Command, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
