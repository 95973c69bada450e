// Package proc adapts the external proof-of-work and signing helpers to the
// scheduler's service contracts. Each call spawns the helper process, writes
// one JSON request to stdin, and reads one JSON response from stdout.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

var errEmptyResponse = errors.New("helper produced no output")

// checkCommand verifies a helper command exists before the scheduler
// starts; a missing helper is startup-fatal, not a per-cycle error.
func checkCommand(command []string) error {
	if len(command) == 0 {
		return errors.New("no command configured")
	}
	name := command[0]
	if strings.ContainsRune(name, os.PathSeparator) {
		if _, err := os.Stat(name); err != nil {
			return fmt.Errorf("helper %s: %w", name, err)
		}
		return nil
	}
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("helper %s: %w", name, err)
	}
	return nil
}

// runOnce executes the helper with the request on stdin and decodes stdout
// into out. The caller's context gates starting the helper, not its
// lifetime: once spawned, the process runs to completion or to the given
// timeout, never killed by a stop request. stdout is authoritative when
// present: helpers write progress noise to stderr, so stderr only matters
// when stdout is empty.
func runOnce(ctx context.Context, timeout time.Duration, command []string, payload, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}

	input, err := sonic.Marshal(payload)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(runCtx, command[0], command[1:]...)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("helper %s timed out after %s", command[0], timeout)
	}

	if stdout.Len() == 0 {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("helper %s: %s", command[0], msg)
		}
		if runErr != nil {
			return fmt.Errorf("helper %s: %w", command[0], runErr)
		}
		return errEmptyResponse
	}
	return sonic.Unmarshal(stdout.Bytes(), out)
}
