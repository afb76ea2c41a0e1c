// Copyright (c) 2023 The KBase Project and its Contributors
// Copyright (c) 2023 Cohere Consulting, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package loadfiles attributes the files of a manifest to participants,
// samples and tumor/normal pairs, and writes the resulting entity tables.
package loadfiles

import (
	"time"

	"github.com/kbase/gdcloadfiles/gdc"
	"github.com/kbase/gdcloadfiles/metrics"
	"github.com/kbase/gdcloadfiles/resolver"
)

// Outcome describes what happened to a file.
type Outcome string

const (
	// stored on at least one entity
	OutcomeAttributed Outcome = "attributed"
	// set aside for the deferred pass
	OutcomeDeferred Outcome = "deferred"
	// lost every collision, or matched no known case
	OutcomeDiscarded Outcome = "discarded"
	OutcomeSkipped   Outcome = "skipped"
)

// RetryPolicy governs how often a failing file is attempted.
type RetryPolicy struct {
	// total attempts per file (at least 1)
	Attempts int
	// wait after the first failure, doubled after each further failure
	Backoff time.Duration
	// upper bound on the wait (0 for none)
	MaxBackoff time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	Attempts:   5,
	Backoff:    time.Second,
	MaxBackoff: 30 * time.Second,
}

type Options struct {
	// metadata API generation (fields requested, legacy flag)
	Version gdc.APIVersion
	// attach deferred files to every associated case, not only known ones
	AllCases bool
	// supplies file URLs (resolver.DataResolver on the version's root if nil)
	Resolver resolver.Resolver
	Retry    RetryPolicy
	// optional counters
	Metrics *metrics.Recorder
	// called after each manifest entry of the first pass
	Progress func()
}

// Builder builds the entity registry for a run. It owns all per-run state:
// the registry, the access table and the deferred files.
type Builder struct {
	Registry *Registry
	Access   *AccessTable

	service     gdc.Service
	options     Options
	deferred    []DeferredEntry
	deferredIds map[string]bool
	summary     Summary
}

// NewBuilder creates a builder drawing metadata from the given service.
func NewBuilder(service gdc.Service, options Options) *Builder {
	if options.Version.Name == "" {
		options.Version = gdc.Current
	}
	if options.Resolver == nil {
		options.Resolver = resolver.DataResolver{Root: options.Version.Root}
	}
	if options.Retry.Attempts < 1 {
		options.Retry.Attempts = 1
	}
	return &Builder{
		Registry:    NewRegistry(service, options.Version),
		Access:      NewAccessTable(),
		service:     service,
		options:     options,
		deferredIds: make(map[string]bool),
	}
}

// Legacy reports whether the builder works against the legacy archive.
func (b *Builder) Legacy() bool {
	return b.options.Version.Legacy
}

// Deferred returns the files set aside for the deferred pass.
func (b *Builder) Deferred() []DeferredEntry {
	return b.deferred
}

func (b *Builder) deferFile(entry DeferredEntry) {
	if b.deferredIds[entry.FileId] {
		return
	}
	b.deferredIds[entry.FileId] = true
	b.deferred = append(b.deferred, entry)
}
