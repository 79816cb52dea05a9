package types

// BuildRequest asks the daemon to assemble a base model plus adapters into a
// servable instance.
type BuildRequest struct {
	// Base model identifier from the registry. If empty, the server default
	// is used.
	// example: tinyllama-q4
	Model string `json:"model,omitempty" example:"tinyllama-q4"`
	// Ordered LoRA adapter ids to attach; empty means none.
	// example: ["sql-style"]
	Adapters []string `json:"adapters,omitempty" example:"[\"sql-style\"]"`
	// Request a paged-attention KV cache for this instance.
	// example: true
	PagedAttention bool `json:"paged_attention,omitempty" example:"true"`
	// Maximum concurrent sequences; 0 uses the server default.
	// example: 16
	MaxNumSeqs int `json:"max_num_seqs,omitempty" example:"16"`
	// Prefix cache depth; omitted or null disables prefix caching.
	// example: 4
	PrefixCacheN *int `json:"prefix_cache_n,omitempty" example:"4"`
	// Force the load onto the CPU even when an accelerator is visible.
	// example: false
	ForceCPU bool `json:"force_cpu,omitempty" example:"false"`
}

// BuildResponse reports the outcome of a build.
type BuildResponse struct {
	// Unique instance id assigned to the built model.
	// example: 6eb4f7b2-1c39-4fd0-9a54-30f2a7a1a3a0
	InstanceID string `json:"instance_id" example:"6eb4f7b2-1c39-4fd0-9a54-30f2a7a1a3a0"`
	// Base model id that was built.
	// example: tinyllama-q4
	Model string `json:"model" example:"tinyllama-q4"`
	// Adapter ids attached, in registration order.
	Adapters []string `json:"adapters,omitempty"`
	// Scheduler policy chosen for the instance: default or paged_attention.
	// example: default
	Scheduler string `json:"scheduler" example:"default"`
	// Lifecycle state after the build (normally ready).
	// example: ready
	State string `json:"state" example:"ready"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of available base models.
	Models []Model `json:"models"`
}

// AdaptersResponse wraps the list of adapters returned by GET /adapters.
type AdaptersResponse struct {
	// List of available LoRA adapters.
	Adapters []Adapter `json:"adapters"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: model not found: nope
	Error string `json:"error" example:"model not found: nope"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

// InstanceStatus summarizes a built instance for /status.
type InstanceStatus struct {
	// Unique instance id.
	// example: 6eb4f7b2-1c39-4fd0-9a54-30f2a7a1a3a0
	InstanceID string `json:"instance_id" example:"6eb4f7b2-1c39-4fd0-9a54-30f2a7a1a3a0"`
	// Base model id this instance serves.
	// example: tinyllama-q4
	ModelID string `json:"model_id" example:"tinyllama-q4"`
	// Adapter ids attached to the instance.
	Adapters []string `json:"adapters,omitempty"`
	// Current lifecycle state (loading, ready, draining, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Scheduler policy: default or paged_attention.
	// example: paged_attention
	Scheduler string `json:"scheduler,omitempty" example:"paged_attention"`
	// Last time this instance was touched (unix seconds).
	// example: 1700000000
	LastUsed int64 `json:"last_used_unix" example:"1700000000"`
	// Estimated VRAM usage in MB.
	// example: 1200
	EstVRAMMB int `json:"est_vram_mb" example:"1200"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Built instances.
	Instances []InstanceStatus `json:"instances"`
	// VRAM budget in MB across all instances.
	// example: 8192
	BudgetMB int `json:"budget_mb" example:"8192"`
	// Estimated used VRAM in MB.
	// example: 2048
	UsedMB int `json:"used_est_mb" example:"2048"`
	// Reserved VRAM margin in MB.
	// example: 512
	MarginMB int `json:"margin_mb" example:"512"`
	// Overall manager state (ready, loading, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Total number of evictions performed to free VRAM.
	// example: 5
	EvictionsTotal uint64 `json:"evictions_total" example:"5"`
	// Total number of completed builds.
	// example: 12
	BuildsTotal uint64 `json:"builds_total" example:"12"`
	// Number of builds currently in flight.
	// example: 1
	BuildsInProgress int `json:"builds_in_progress" example:"1"`
}
