package lead

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/vield/calculadora/internal/logger"
)

// DefaultCommandTimeout bounds a CommandIntake without an explicit timeout.
const DefaultCommandTimeout = 30 * time.Second

// CommandIntake hands each lead to a shell command. The lead JSON is written
// to stdin and {{lead_id}} / {{type}} in the command are expanded first. A
// non-zero exit rejects the lead.
type CommandIntake struct {
	Command string
	Dir     string
	Timeout time.Duration
}

func (c *CommandIntake) Submit(ctx context.Context, l Lead) error {
	if strings.TrimSpace(c.Command) == "" {
		return errors.New("intake command is empty")
	}

	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshaling lead: %w", err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	command := expandVariables(c.Command, l)
	logger.Debug("Executing intake command: %s", command)

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = c.Dir
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		logger.Warn("Intake command timed out after %s: %s", timeout, command)
		return fmt.Errorf("intake command timed out after %s", timeout)
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		logger.Warn("Intake command failed: %v: %s", err, msg)
		if msg != "" {
			return fmt.Errorf("intake command failed: %w: %s", err, msg)
		}
		return fmt.Errorf("intake command failed: %w", err)
	}

	logger.Debug("Intake command accepted lead %s, output: %s", l.ID, strings.TrimSpace(stdout.String()))
	return nil
}

func expandVariables(command string, l Lead) string {
	return strings.NewReplacer(
		"{{lead_id}}", l.ID,
		"{{type}}", string(l.ReformaType),
	).Replace(command)
}
