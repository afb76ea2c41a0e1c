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
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kbase/gdcloadfiles/manifest"
)

// Summary counts what happened to the files of a run.
type Summary struct {
	// manifest entries processed
	Files int
	// files stored on at least one entity (either pass)
	Attributed int
	// files set aside for the deferred pass
	Deferred int
	// files that lost every collision or matched no known case
	Discarded int
	Skipped   int
	// collisions settled
	Collisions int
}

// Run attributes every manifest entry, then processes the deferred files.
// A file that cannot be attributed is logged and skipped; the run stops only
// on a fatal error (see IsFatal) or when ctx is done.
func (b *Builder) Run(ctx context.Context, entries []manifest.Entry) (Summary, error) {
	for i, entry := range entries {
		slog.Info(fmt.Sprintf("%d of %d: %s, %s", i+1, len(entries), entry.Id, entry.FileName))
		outcome, err := b.withRetry(ctx, entry.Id, func() (Outcome, error) {
			record, err := b.service.File(ctx, entry.Id, b.options.Version.FileAndCaseFields())
			if err != nil {
				return OutcomeSkipped, err
			}
			return b.Attribute(ctx, record, entry.FileName)
		})
		b.summary.Files++
		if err = b.tally(ctx, outcome, err); err != nil {
			return b.summary, err
		}
		if b.options.Progress != nil {
			b.options.Progress()
		}
	}

	if len(b.deferred) > 0 {
		slog.Info(fmt.Sprintf("processing %s deferred file(s)", humanize.Comma(int64(len(b.deferred)))))
	}
	for i, entry := range b.deferred {
		slog.Info(fmt.Sprintf("deferred %d of %d: %s, %s (%d cases)",
			i+1, len(b.deferred), entry.FileId, entry.FileName, entry.CaseCount))
		outcome, err := b.withRetry(ctx, entry.FileId, func() (Outcome, error) {
			return b.ProcessDeferred(ctx, entry)
		})
		if err = b.tally(ctx, outcome, err); err != nil {
			return b.summary, err
		}
	}

	slog.Info(fmt.Sprintf("%s file(s): %s attributed, %s deferred, %s discarded, %s skipped, %s collision(s)",
		humanize.Comma(int64(b.summary.Files)), humanize.Comma(int64(b.summary.Attributed)),
		humanize.Comma(int64(b.summary.Deferred)), humanize.Comma(int64(b.summary.Discarded)),
		humanize.Comma(int64(b.summary.Skipped)), humanize.Comma(int64(b.summary.Collisions))))
	return b.summary, nil
}

// Summary returns the counts accumulated so far.
func (b *Builder) Summary() Summary {
	return b.summary
}

// counts an outcome, returning the error if it must stop the run
func (b *Builder) tally(ctx context.Context, outcome Outcome, err error) error {
	if err != nil {
		if ctx.Err() != nil || IsFatal(err) {
			return err
		}
		slog.Warn(err.Error())
		outcome = OutcomeSkipped
	}
	switch outcome {
	case OutcomeAttributed:
		b.summary.Attributed++
	case OutcomeDeferred:
		b.summary.Deferred++
	case OutcomeDiscarded:
		b.summary.Discarded++
	case OutcomeSkipped:
		b.summary.Skipped++
	}
	b.options.Metrics.File(string(outcome))
	return nil
}

// calls attempt until it succeeds, fails in a way retrying can't fix, or runs
// out of attempts, backing off exponentially in between
func (b *Builder) withRetry(ctx context.Context, fileId string,
	attempt func() (Outcome, error)) (Outcome, error) {
	policy := b.options.Retry
	backoff := policy.Backoff
	var err error
	for i := 1; i <= policy.Attempts; i++ {
		var outcome Outcome
		outcome, err = attempt()
		if err == nil {
			return outcome, nil
		}
		if ctx.Err() != nil {
			return OutcomeSkipped, ctx.Err()
		}
		if IsFatal(err) || isSkip(err) {
			return OutcomeSkipped, err
		}
		if i == policy.Attempts {
			break
		}
		slog.Warn(fmt.Sprintf("attempt %d of %d for %s failed (%s); retrying in %s",
			i, policy.Attempts, fileId, err.Error(), backoff))
		select {
		case <-ctx.Done():
			return OutcomeSkipped, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if policy.MaxBackoff > 0 && backoff > policy.MaxBackoff {
			backoff = policy.MaxBackoff
		}
	}
	return OutcomeSkipped, &RetriesExhaustedError{
		FileId:   fileId,
		Attempts: policy.Attempts,
		Err:      err,
	}
}
