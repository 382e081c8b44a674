package config

import (
	"fmt"
	"runtime"
	"time"

	"dario.cat/mergo"

	"github.com/deepresearch-go/deepresearch/pkg/sandbox"
	"github.com/deepresearch-go/deepresearch/pkg/tasks"
)

// Config is the fully resolved, defaulted, validated configuration the
// rest of the process is wired from.
type Config struct {
	MaxConcurrency     int
	DefaultEnableTrace bool
	TraceDir           string
	AuthToken          string

	StorageKind string // "in-memory" | "relational"
	StorageURL  string

	Namespace string

	RetrievalKind             string // "stub" | "hybrid"
	RetrievalConcurrencyLimit int

	FactCheck tasks.FactCheckSettings
	Sandbox   sandbox.Config

	LogRetentionDays int

	SlackEnabled      bool
	SlackToken        string
	SlackChannel      string
	SlackDashboardURL string

	PipelineRawDir string
}

// defaultMaxConcurrency falls back to hardware parallelism, or 4 if that
// reports something degenerate.
func defaultMaxConcurrency() int {
	if n := runtime.GOMAXPROCS(0); n > 0 {
		return n
	}
	return 4
}

// Default returns the conservative configuration used when no YAML file
// overrides it.
func Default() *Config {
	return &Config{
		MaxConcurrency:            defaultMaxConcurrency(),
		DefaultEnableTrace:        false,
		TraceDir:                  "",
		StorageKind:               "in-memory",
		RetrievalKind:             "stub",
		RetrievalConcurrencyLimit: 8,
		FactCheck:                 tasks.DefaultFactCheckSettings(),
		Sandbox:                   sandbox.DefaultConfig(),
		LogRetentionDays:          90,
		PipelineRawDir:            "pipeline/raw",
	}
}

func boolOr(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}

// applyYAML overlays non-zero fields from a parsed YAMLConfig onto cfg.
func (cfg *Config) applyYAML(y *YAMLConfig) error {
	if y.Admission != nil && y.Admission.MaxConcurrency > 0 {
		cfg.MaxConcurrency = y.Admission.MaxConcurrency
	}
	if y.Trace != nil {
		cfg.DefaultEnableTrace = y.Trace.DefaultEnableTrace
		if y.Trace.TraceDir != "" {
			cfg.TraceDir = y.Trace.TraceDir
		}
	}
	if y.Auth != nil {
		cfg.AuthToken = y.Auth.AuthToken
	}
	if y.Storage != nil {
		if y.Storage.Kind != "" {
			cfg.StorageKind = y.Storage.Kind
		}
		cfg.StorageURL = y.Storage.URL
	}
	if y.Namespace != "" {
		cfg.Namespace = y.Namespace
	}
	if y.Retrieval != nil {
		if y.Retrieval.Kind != "" {
			cfg.RetrievalKind = y.Retrieval.Kind
		}
		if y.Retrieval.ConcurrencyLimit > 0 {
			cfg.RetrievalConcurrencyLimit = y.Retrieval.ConcurrencyLimit
		}
	}
	if y.FactCheck != nil {
		overlay := tasks.FactCheckSettings{
			MinConfidence:     y.FactCheck.MinConfidence,
			VerificationCount: y.FactCheck.VerificationCount,
			TimeoutMs:         y.FactCheck.TimeoutMs,
		}
		if err := mergo.Merge(&cfg.FactCheck, overlay, mergo.WithOverride); err != nil {
			return fmt.Errorf("merge fact_check config: %w", err)
		}
	}
	if y.Sandbox != nil {
		s := y.Sandbox
		overlay := sandbox.Config{
			ContainerBinary: s.Binary,
			Image:           s.Image,
			WorkspaceRoot:   s.WorkspaceRoot,
			MemoryLimit:     s.MemoryLimit,
			CPULimit:        s.CPULimit,
			PidsLimit:       s.PidsLimit,
			TmpfsSizeBytes:  s.TmpfsSize,
			CapAdd:          s.CapAdd,
			Env:             s.Env,
			ExtraArgs:       s.ExtraArgs,
			Interpreter:     s.Interpreter,
			User:            s.User,
		}
		if s.DefaultTimeoutSec > 0 {
			overlay.DefaultTimeout = time.Duration(s.DefaultTimeoutSec) * time.Second
		}
		if err := mergo.Merge(&cfg.Sandbox, overlay, mergo.WithOverride); err != nil {
			return fmt.Errorf("merge sandbox config: %w", err)
		}
		// ReadOnlyRoot/DisableNetwork are *bool in YAML specifically so an
		// explicit "false" can override a "true" default — mergo would
		// otherwise treat a plain false as an unset zero value.
		cfg.Sandbox.ReadOnlyRoot = boolOr(s.ReadOnlyRoot, cfg.Sandbox.ReadOnlyRoot)
		cfg.Sandbox.DisableNetwork = boolOr(s.DisableNetwork, cfg.Sandbox.DisableNetwork)
	}
	if y.Retention != nil && y.Retention.LogRetentionDays >= 0 {
		cfg.LogRetentionDays = y.Retention.LogRetentionDays
	}
	if y.Slack != nil {
		cfg.SlackEnabled = y.Slack.Enabled
		cfg.SlackChannel = y.Slack.Channel
		cfg.SlackDashboardURL = y.Slack.DashboardURL
		if y.Slack.TokenEnv != "" {
			cfg.SlackToken = envLookup(y.Slack.TokenEnv)
		}
	}
	if y.Pipeline != nil && y.Pipeline.RawDir != "" {
		cfg.PipelineRawDir = y.Pipeline.RawDir
	}
	return nil
}

// Validate rejects a configuration that would leave the process unable
// to start: an unrecognized storage/retrieval kind, or a relational
// storage kind without a connection URL.
func (cfg *Config) Validate() error {
	switch cfg.StorageKind {
	case "in-memory", "relational":
	default:
		return NewValidationError("storage.kind", ErrInvalidValue)
	}
	if cfg.StorageKind == "relational" && cfg.StorageURL == "" {
		return NewValidationError("storage.url", ErrMissingRequiredField)
	}
	switch cfg.RetrievalKind {
	case "stub", "hybrid":
	default:
		return NewValidationError("retrieval.kind", ErrInvalidValue)
	}
	if cfg.MaxConcurrency <= 0 {
		return NewValidationError("admission.max_concurrency", ErrInvalidValue)
	}
	return nil
}
