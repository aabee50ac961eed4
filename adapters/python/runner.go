package python

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	apperrors "csvpilot/internal/errors"

	"golang.org/x/sync/semaphore"
)

// Runner executes the bundled Python scripts with bounded concurrency. Every
// invocation passes arguments as an argv array, never through a shell, so
// file names and column values can never be interpreted as shell syntax.
type Runner struct {
	binary     string
	scriptsDir string
	timeout    time.Duration
	sem        *semaphore.Weighted
}

// NewRunner creates a runner for the scripts directory. maxConcurrent bounds
// how many interpreter processes may run at once.
func NewRunner(binary, scriptsDir string, maxConcurrent int64, timeout time.Duration) *Runner {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Runner{
		binary:     binary,
		scriptsDir: scriptsDir,
		timeout:    timeout,
		sem:        semaphore.NewWeighted(maxConcurrent),
	}
}

// Run executes one script and returns its stdout. The context cancels the
// subprocess; a timeout kills it rather than orphaning it.
func (r *Runner) Run(ctx context.Context, script string, args ...string) ([]byte, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.sem.Release(1)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	scriptPath := filepath.Join(r.scriptsDir, script)
	argv := append([]string{scriptPath}, args...)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, argv...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	err := cmd.Run()
	elapsed := time.Since(started)

	if err != nil {
		log.Printf("[Python] %s failed after %s: %v; stderr: %s", script, elapsed.Round(time.Millisecond), err, truncate(stderr.String(), 512))
		return nil, apperrors.ExternalServiceError("python", fmt.Errorf("%s: %w", script, err))
	}
	log.Printf("[Python] %s completed in %s", script, elapsed.Round(time.Millisecond))
	return stdout.Bytes(), nil
}

// writeProjection persists a JSON payload into the run directory so the
// script reads structured input from a file instead of a fragile CLI blob
func writeProjection(outputDir, name string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", name, err)
	}
	path := filepath.Join(outputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
