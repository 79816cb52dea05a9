// Package sched derives the scheduling policy for a freshly loaded pipeline
// from its paged-attention metadata.
package sched

import (
	"context"
	"fmt"
	"math"

	"assembld/internal/pipeline"
)

// Policy is the chosen scheduling strategy. It is a closed sum: either
// PagedAttentionMeta or DefaultScheduler.
type Policy interface{ schedulerPolicy() }

// PagedAttentionMeta schedules against a paged KV cache with a sequence cap.
type PagedAttentionMeta struct {
	MaxNumSeqs  int
	CacheConfig pipeline.CacheConfig
}

func (PagedAttentionMeta) schedulerPolicy() {}

// DefaultScheduler serves a fixed number of concurrent sequence slots.
type DefaultScheduler struct {
	FixedSlots uint32
}

func (DefaultScheduler) schedulerPolicy() {}

// ConversionError reports a max-sequence count that does not fit the
// fixed-slot capacity type.
type ConversionError struct{ MaxNumSeqs int }

func (e *ConversionError) Error() string {
	return fmt.Sprintf("max_num_seqs %d does not convert to a positive slot count", e.MaxNumSeqs)
}

// IsConversion reports whether err is a slot-count conversion failure.
func IsConversion(err error) bool {
	_, ok := err.(*ConversionError)
	return ok
}

// Params carries the descriptor-side inputs to policy selection.
type Params struct {
	PagedAttnRequested bool
	MaxNumSeqs         int
	// FallbackOnMissingCache selects what happens when paged attention was
	// requested but the loaded pipeline reports no cache config. Vision
	// models pass true and silently degrade to the default scheduler; text
	// models pass false, and the mismatch is treated as a loader contract
	// violation and panics. The asymmetry is kept for compatibility with the
	// reference behavior and is almost certainly a latent defect there; do
	// not copy it elsewhere.
	FallbackOnMissingCache bool
}

// Select derives the policy for a loaded pipeline. The pipeline metadata is
// read under its scoped lock only when paged attention was requested.
func Select(ctx context.Context, h *pipeline.Handle, p Params) (Policy, error) {
	if !p.PagedAttnRequested {
		return fixedSlots(p.MaxNumSeqs)
	}
	meta, err := h.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	if meta.CacheConfig == nil {
		if !p.FallbackOnMissingCache {
			panic(fmt.Sprintf("sched: pipeline %q loaded with paged attention reports no cache config", meta.ModelID))
		}
		return fixedSlots(p.MaxNumSeqs)
	}
	return PagedAttentionMeta{MaxNumSeqs: p.MaxNumSeqs, CacheConfig: *meta.CacheConfig}, nil
}

func fixedSlots(n int) (Policy, error) {
	if n <= 0 || int64(n) > int64(math.MaxUint32) {
		return nil, &ConversionError{MaxNumSeqs: n}
	}
	return DefaultScheduler{FixedSlots: uint32(n)}, nil
}
