package runner

import (
	"sort"

	"assembld/internal/pipeline"
	"assembld/internal/sched"
)

// Runner is the finalized serving runtime: pipeline, scheduler policy,
// callback registry and cache toggles. Safe for concurrent readers once
// built; nothing mutates it afterwards.
type Runner struct {
	pipe              *pipeline.Handle
	policy            sched.Policy
	throughputLogging bool
	searchEmbedModel  *string

	searchCallback         SearchCallback
	toolCallbacks          map[string]ToolCallback
	toolCallbacksWithTools map[string]ToolCallbackWithTool

	noKVCache     bool
	noPrefixCache bool
	prefixCacheN  int
}

// Pipeline returns the underlying pipeline handle.
func (r *Runner) Pipeline() *pipeline.Handle { return r.pipe }

// Policy returns the scheduler policy the runner was built with.
func (r *Runner) Policy() sched.Policy { return r.policy }

// SearchCallback returns the registered search callback, if any.
func (r *Runner) SearchCallback() SearchCallback { return r.searchCallback }

// SearchEmbedModel returns the embedding model id used for search ranking.
func (r *Runner) SearchEmbedModel() *string { return r.searchEmbedModel }

// ToolCallback resolves a plain tool callback by name.
func (r *Runner) ToolCallback(name string) (ToolCallback, bool) {
	cb, ok := r.toolCallbacks[name]
	return cb, ok
}

// ToolCallbackWithTool resolves a tool-bound callback by name.
func (r *Runner) ToolCallbackWithTool(name string) (ToolCallbackWithTool, bool) {
	cb, ok := r.toolCallbacksWithTools[name]
	return cb, ok
}

// ToolNames lists all registered tool callback names, sorted for stable
// output; map order is never exposed.
func (r *Runner) ToolNames() []string {
	names := make([]string, 0, len(r.toolCallbacks)+len(r.toolCallbacksWithTools))
	for name := range r.toolCallbacks {
		names = append(names, name)
	}
	for name := range r.toolCallbacksWithTools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KVCacheEnabled reports whether the KV cache is active.
func (r *Runner) KVCacheEnabled() bool { return !r.noKVCache }

// PrefixCacheEnabled reports whether prefix caching is active.
func (r *Runner) PrefixCacheEnabled() bool { return !r.noPrefixCache }

// PrefixCacheN returns the configured prefix cache depth (0 when disabled).
func (r *Runner) PrefixCacheN() int { return r.prefixCacheN }

// ThroughputLogging reports whether per-step throughput logging is on.
func (r *Runner) ThroughputLogging() bool { return r.throughputLogging }

// Close releases the pipeline.
func (r *Runner) Close() error {
	if r.pipe == nil {
		return nil
	}
	return r.pipe.Close()
}
