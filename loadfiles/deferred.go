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

package loadfiles

import (
	"context"

	"github.com/kbase/gdcloadfiles/gdc"
)

// DeferredEntry is a file associated with several cases, set aside until
// every single-case file has been attributed.
type DeferredEntry struct {
	FileId    string
	FileName  string
	CaseCount int
}

// ProcessDeferred attaches a deferred file to each of its cases that is
// already registered (or, in all-cases mode, to each of its cases). Within a
// case listing samples, the file goes to the case's known tumor samples, or
// to the case itself if there are none. No pairs are created.
func (b *Builder) ProcessDeferred(ctx context.Context, entry DeferredEntry) (Outcome, error) {
	record, err := b.service.File(ctx, entry.FileId, b.options.Version.FileAndCaseFields())
	if err != nil {
		return OutcomeSkipped, err
	}
	if err = record.Validate(); err != nil {
		return OutcomeSkipped, err
	}
	ref := b.newRef(record, entry.FileName)
	if entry.CaseCount > ref.CaseCount {
		ref.CaseCount = entry.CaseCount
	}
	name, err := attributeName(record, &ref)
	if err != nil {
		return OutcomeSkipped, err
	}

	outcome := OutcomeDiscarded
	for _, caseRecord := range record.Cases {
		c, known := b.Registry.Cases[caseRecord.CaseId]
		if !known {
			if !b.options.AllCases {
				continue
			}
			c = b.Registry.RegisterCase(ctx, caseRecord)
		}
		for _, t := range b.deferredTargets(c, caseRecord.Samples) {
			stored, err := b.attach(ctx, t, name, ref, record)
			if err != nil {
				return OutcomeSkipped, err
			}
			if stored {
				outcome = OutcomeAttributed
			}
		}
	}
	return outcome, nil
}

func (b *Builder) deferredTargets(c *Case, samples []gdc.Sample) []target {
	var targets []target
	for _, s := range samples {
		if classifySample(s) != Tumor {
			continue
		}
		sample, known := b.Registry.Samples[s.SampleId]
		if !known {
			if !b.options.AllCases {
				continue
			}
			sample = b.Registry.RegisterSample(s, c.Id)
		}
		targets = append(targets, sampleTarget(c, sample))
	}
	if len(targets) == 0 {
		targets = append(targets, caseTarget(c))
	}
	return targets
}
