package sandbox

import "time"

// Config holds the hardened container invocation parameters. DefaultConfig
// returns a fully populated Config; NewDockerRunner uses the Config as
// given and does not fill in zero fields.
type Config struct {
	ContainerBinary string // e.g. "docker"
	Image           string
	WorkspaceRoot   string
	MemoryLimit     string // e.g. "512m"
	CPULimit        string // e.g. "1.0"
	PidsLimit       int
	TmpfsSizeBytes  string // e.g. "64m", applied to /tmp, /var/tmp, /run
	CapAdd          []string
	Env             map[string]string
	ExtraArgs       []string
	ReadOnlyRoot    bool
	DisableNetwork  bool
	Interpreter     string // e.g. "python3"
	User            string // "current" or an explicit "uid:gid"
	DefaultTimeout  time.Duration
}

// DefaultConfig returns the conservative default hardening profile: all
// capabilities dropped bar the chown/setuid/setgid/fowner allow-list,
// read-only root, no network, modest resource caps.
func DefaultConfig() Config {
	return Config{
		ContainerBinary: "docker",
		Image:           "python:3.12-slim",
		WorkspaceRoot:   "/var/lib/deepresearch/sandbox",
		MemoryLimit:     "512m",
		CPULimit:        "1.0",
		PidsLimit:       64,
		TmpfsSizeBytes:  "64m",
		CapAdd:          []string{"CHOWN", "SETUID", "SETGID", "FOWNER"},
		Env:             map[string]string{"MPLBACKEND": "Agg"},
		ReadOnlyRoot:    true,
		DisableNetwork:  true,
		Interpreter:     "python3",
		User:            "current",
		DefaultTimeout:  20 * time.Second,
	}
}
