package config

// YAMLConfig is the top-level shape of deepresearch.yaml.
type YAMLConfig struct {
	Admission *AdmissionYAML `yaml:"admission"`
	Trace     *TraceYAML     `yaml:"trace"`
	Auth      *AuthYAML      `yaml:"auth"`
	Storage   *StorageYAML   `yaml:"storage"`
	Namespace string         `yaml:"namespace"`
	Retrieval *RetrievalYAML `yaml:"retrieval"`
	FactCheck *FactCheckYAML `yaml:"fact_check"`
	Sandbox   *SandboxYAML   `yaml:"sandbox"`
	Retention *RetentionYAML `yaml:"retention"`
	Slack     *SlackYAML     `yaml:"slack"`
	Pipeline  *PipelineYAML  `yaml:"pipeline"`
}

// AdmissionYAML controls the Façade's weighted semaphore.
type AdmissionYAML struct {
	MaxConcurrency int `yaml:"max_concurrency"`
}

// TraceYAML controls default tracing behavior and where trace bundles land.
type TraceYAML struct {
	DefaultEnableTrace bool   `yaml:"default_enable_trace"`
	TraceDir           string `yaml:"trace_dir"`
}

// AuthYAML names the single bearer token the HTTP adapter checks, if any.
type AuthYAML struct {
	AuthToken string `yaml:"auth_token"`
}

// StorageYAML selects the Session Storage backend.
type StorageYAML struct {
	Kind string `yaml:"kind"` // "in-memory" | "relational"
	URL  string `yaml:"url"`
}

// RetrievalYAML selects the Retrieval Layer backend.
type RetrievalYAML struct {
	Kind             string `yaml:"kind"` // "stub" | "hybrid"
	URL              string `yaml:"url"`
	Collection       string `yaml:"collection"`
	ConcurrencyLimit int    `yaml:"concurrency_limit"`
}

// FactCheckYAML tunes the Fact-Checker task. Field types mirror
// tasks.FactCheckSettings directly so the two can be merged with mergo.
type FactCheckYAML struct {
	MinConfidence     float32 `yaml:"min_confidence"`
	VerificationCount int     `yaml:"verification_count"`
	TimeoutMs         int64   `yaml:"timeout_ms"`
}

// SandboxYAML mirrors sandbox.Config's hardened container parameters.
type SandboxYAML struct {
	Image             string            `yaml:"image"`
	Binary            string            `yaml:"binary"`
	WorkspaceRoot     string            `yaml:"workspace_root"`
	MemoryLimit       string            `yaml:"memory_limit"`
	CPULimit          string            `yaml:"cpu_limit"`
	PidsLimit         int               `yaml:"pids_limit"`
	TmpfsSize         string            `yaml:"tmpfs_size"`
	CapAdd            []string          `yaml:"cap_add"`
	Env               map[string]string `yaml:"env"`
	ExtraArgs         []string          `yaml:"extra_args"`
	ReadOnlyRoot      *bool             `yaml:"read_only_root"`
	DisableNetwork    *bool             `yaml:"disable_network"`
	Interpreter       string            `yaml:"interpreter"`
	User              string            `yaml:"user"` // "current" | "uid:gid"
	DefaultTimeoutSec int               `yaml:"default_timeout_sec"`
}

// RetentionYAML configures the Session Log pruner.
type RetentionYAML struct {
	LogRetentionDays int `yaml:"log_retention_days"`
}

// SlackYAML configures the optional failure-streak notifier.
type SlackYAML struct {
	Enabled      bool   `yaml:"enabled"`
	TokenEnv     string `yaml:"token_env"`
	Channel      string `yaml:"channel"`
	DashboardURL string `yaml:"dashboard_url"`
}

// PipelineYAML points at the Pipeline Sink's output directory.
type PipelineYAML struct {
	RawDir string `yaml:"raw_dir"`
}
