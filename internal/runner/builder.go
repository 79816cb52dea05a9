// Package runner finalizes a loaded pipeline plus a scheduler policy into the
// served runtime handle.
package runner

import (
	"context"

	"github.com/rs/zerolog/log"

	"assembld/internal/pipeline"
	"assembld/internal/sched"
)

// Builder accumulates callback registrations and cache toggles before the
// runner is finalized. All registrations are in-memory mutations with no
// failure mode.
type Builder struct {
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

// NewBuilder starts a runner from a pipeline, its scheduler policy, the
// throughput-logging flag and an optional embedding model id for search.
func NewBuilder(pipe *pipeline.Handle, policy sched.Policy, throughputLogging bool, searchEmbedModel *string) *Builder {
	return &Builder{
		pipe:              pipe,
		policy:            policy,
		throughputLogging: throughputLogging,
		searchEmbedModel:  searchEmbedModel,
	}
}

// WithSearchCallback registers the single search callback.
func (b *Builder) WithSearchCallback(cb SearchCallback) *Builder {
	b.searchCallback = cb
	return b
}

// WithToolCallback registers a tool callback under its unique name.
// Registration order carries no meaning.
func (b *Builder) WithToolCallback(name string, cb ToolCallback) *Builder {
	if b.toolCallbacks == nil {
		b.toolCallbacks = make(map[string]ToolCallback)
	}
	b.toolCallbacks[name] = cb
	return b
}

// WithToolCallbackAndTool registers a callback together with the tool
// definition it serves.
func (b *Builder) WithToolCallbackAndTool(name string, cb ToolCallback, tool Tool) *Builder {
	if b.toolCallbacksWithTools == nil {
		b.toolCallbacksWithTools = make(map[string]ToolCallbackWithTool)
	}
	b.toolCallbacksWithTools[name] = ToolCallbackWithTool{Callback: cb, Tool: tool}
	return b
}

// WithNoKVCache disables the KV cache on the finished runner.
func (b *Builder) WithNoKVCache(disable bool) *Builder {
	b.noKVCache = disable
	return b
}

// WithNoPrefixCache disables prefix caching on the finished runner.
func (b *Builder) WithNoPrefixCache(disable bool) *Builder {
	b.noPrefixCache = disable
	return b
}

// WithPrefixCacheN sets the prefix cache depth.
func (b *Builder) WithPrefixCacheN(n int) *Builder {
	b.prefixCacheN = n
	return b
}

// Build finalizes the runner.
func (b *Builder) Build(ctx context.Context) *Runner {
	_ = ctx
	r := &Runner{
		pipe:                   b.pipe,
		policy:                 b.policy,
		throughputLogging:      b.throughputLogging,
		searchEmbedModel:       b.searchEmbedModel,
		searchCallback:         b.searchCallback,
		toolCallbacks:          b.toolCallbacks,
		toolCallbacksWithTools: b.toolCallbacksWithTools,
		noKVCache:              b.noKVCache,
		noPrefixCache:          b.noPrefixCache,
		prefixCacheN:           b.prefixCacheN,
	}
	if b.throughputLogging {
		log.Info().
			Int("tool_callbacks", len(b.toolCallbacks)).
			Int("tool_callbacks_with_tools", len(b.toolCallbacksWithTools)).
			Bool("kv_cache", !b.noKVCache).
			Bool("prefix_cache", !b.noPrefixCache).
			Msg("runner finalized")
	}
	return r
}
