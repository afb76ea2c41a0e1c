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

// Package metrics counts what happens to the files of a run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the counters of a run on its own registry. A nil Recorder
// records nothing.
type Recorder struct {
	registry   *prometheus.Registry
	files      *prometheus.CounterVec
	collisions *prometheus.CounterVec
}

// NewRecorder creates a recorder with fresh counters.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gdcloadfiles_files_total",
			Help: "Files processed, by outcome.",
		}, []string{"outcome"}),
		collisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gdcloadfiles_collisions_total",
			Help: "Attribute collisions settled, by rule.",
		}, []string{"rule"}),
	}
	r.registry.MustRegister(r.files, r.collisions)
	return r
}

// File counts a file with the given outcome.
func (r *Recorder) File(outcome string) {
	if r == nil {
		return
	}
	r.files.WithLabelValues(outcome).Inc()
}

// Collision counts a collision settled by the given rule.
func (r *Recorder) Collision(rule string) {
	if r == nil {
		return
	}
	r.collisions.WithLabelValues(rule).Inc()
}

// Files returns the counter for the given outcome.
func (r *Recorder) Files(outcome string) prometheus.Counter {
	return r.files.WithLabelValues(outcome)
}

// Collisions returns the counter for the given rule.
func (r *Recorder) Collisions(rule string) prometheus.Counter {
	return r.collisions.WithLabelValues(rule)
}

// Gatherer exposes the recorder's registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the counters in the text exposition format, for
// collection by a node exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
