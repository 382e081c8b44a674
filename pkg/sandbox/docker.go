package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/deepresearch-go/deepresearch/pkg/rerrors"
)

// DockerRunner implements Executor by shelling out to a container binary
// (docker by default) with a hardened, non-negotiable flag set.
type DockerRunner struct {
	cfg      Config
	logger   *slog.Logger
	observer FailureStreakObserver

	mu            sync.Mutex
	failureStreak int64
}

// NewDockerRunner constructs a runner with the given config. observer may
// be nil; when set it is notified every time the failure streak reaches or
// continues past the elevated threshold.
func NewDockerRunner(cfg Config, observer FailureStreakObserver) *DockerRunner {
	return &DockerRunner{
		cfg:      cfg,
		logger:   slog.Default().With("component", "sandbox"),
		observer: observer,
	}
}

// FailureStreak returns the current process-wide consecutive-failure
// count (observable, not a gate).
func (r *DockerRunner) FailureStreak() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failureStreak
}

// Execute runs req in an ephemeral hardened container and returns the
// classified result. The workspace is always removed before returning,
// including on panic or context cancellation.
func (r *DockerRunner) Execute(ctx context.Context, req Request) (result Result, err error) {
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}

	scriptName := req.ScriptName
	if scriptName == "" {
		scriptName = "script.py"
	}

	workspace, err := createWorkspace(r.cfg.WorkspaceRoot)
	if err != nil {
		return Result{}, fmt.Errorf("%w: create workspace: %v", rerrors.ErrSandboxError, err)
	}
	defer func() {
		if rec := recover(); rec != nil {
			_ = os.RemoveAll(workspace)
			panic(rec)
		}
		_ = os.RemoveAll(workspace)
	}()

	if err := materializeFiles(workspace, scriptName, req.Script, req.Files); err != nil {
		return Result{}, fmt.Errorf("%w: materialize files: %v", rerrors.ErrSandboxError, err)
	}

	timeout := r.cfg.DefaultTimeout
	if req.TimeoutMs > 0 {
		timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := r.buildArgs(workspace, scriptName, req.Args)
	cmd := exec.CommandContext(runCtx, r.cfg.ContainerBinary, args...)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("%w: stdout pipe: %v", rerrors.ErrSandboxError, err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, fmt.Errorf("%w: stderr pipe: %v", rerrors.ErrSandboxError, err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("%w: spawn: %v", rerrors.ErrSandboxError, err)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	var drainWG sync.WaitGroup
	drainWG.Add(2)
	go func() { defer drainWG.Done(); _, _ = io.Copy(&stdoutBuf, stdoutPipe) }()
	go func() { defer drainWG.Done(); _, _ = io.Copy(&stderrBuf, stderrPipe) }()
	drainWG.Wait()

	waitErr := cmd.Wait()
	duration := time.Since(start)
	timedOut := runCtx.Err() == context.DeadlineExceeded

	if timedOut {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		_ = cmd.Wait()
	}

	exitCode := cmd.ProcessState.ExitCode()
	outputs := harvestOutputs(workspace, req.ExpectedOutputs)

	result = Result{
		DurationMs: duration.Milliseconds(),
		Stdout:     stdoutBuf.String(),
		Stderr:     stderrBuf.String(),
		TimedOut:   timedOut,
		Outputs:    outputs,
	}
	if exitCode >= 0 {
		ec := exitCode
		result.ExitCode = &ec
	}

	switch {
	case timedOut:
		result.Status = StatusTimeout
	case waitErr == nil && exitCode == 0:
		result.Status = StatusSuccess
	default:
		result.Status = StatusFailure
	}

	r.recordOutcome(result.Status)
	return result, nil
}

func (r *DockerRunner) recordOutcome(status Status) {
	r.mu.Lock()
	if status == StatusSuccess {
		r.failureStreak = 0
	} else {
		r.failureStreak++
	}
	streak := r.failureStreak
	r.mu.Unlock()

	if streak >= elevatedStreakThreshold {
		r.logger.Warn("sandbox failure streak at elevated threshold",
			"streak", streak, "status", status)
		if r.observer != nil {
			r.observer.ObserveFailureStreak(streak)
		}
	}
}

// buildArgs assembles the full docker invocation: hardening flags first,
// then user, env, and extra args, then the bind mount, working directory,
// image, and entrypoint.
func (r *DockerRunner) buildArgs(workspace, scriptName string, scriptArgs []string) []string {
	args := []string{"run", "--rm",
		"--security-opt", "no-new-privileges",
		"--cap-drop", "ALL",
	}
	for _, cap := range r.cfg.CapAdd {
		args = append(args, "--cap-add", cap)
	}
	if r.cfg.ReadOnlyRoot {
		args = append(args, "--read-only")
	}
	args = append(args,
		"--tmpfs", fmt.Sprintf("/tmp:size=%s", r.cfg.TmpfsSizeBytes),
		"--tmpfs", fmt.Sprintf("/var/tmp:size=%s", r.cfg.TmpfsSizeBytes),
		"--tmpfs", fmt.Sprintf("/run:size=%s", r.cfg.TmpfsSizeBytes),
	)
	if r.cfg.MemoryLimit != "" {
		args = append(args, "--memory", r.cfg.MemoryLimit)
	}
	if r.cfg.CPULimit != "" {
		args = append(args, "--cpus", r.cfg.CPULimit)
	}
	if r.cfg.PidsLimit > 0 {
		args = append(args, "--pids-limit", fmt.Sprintf("%d", r.cfg.PidsLimit))
	}
	if r.cfg.DisableNetwork {
		args = append(args, "--network", "none")
	}
	if r.cfg.User != "" && r.cfg.User != "current" {
		args = append(args, "--user", r.cfg.User)
	} else if r.cfg.User == "current" {
		args = append(args, "--user", fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()))
	}
	for k, v := range r.cfg.Env {
		args = append(args, "--env", fmt.Sprintf("%s=%s", k, v))
	}
	args = append(args, r.cfg.ExtraArgs...)
	args = append(args,
		"-v", fmt.Sprintf("%s:/workspace:rw", workspace),
		"-w", "/workspace",
		r.cfg.Image,
		r.cfg.Interpreter, scriptName,
	)
	return append(args, scriptArgs...)
}
