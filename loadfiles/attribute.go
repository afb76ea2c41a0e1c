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

	"github.com/kbase/gdcloadfiles/gdc"
)

// data categories whose files describe a tumor/normal pair
var pairedVariantCategories = map[string]bool{
	"Simple Nucleotide Variation": true,
	"Structural Variation":        true,
}

// programs whose paired-variant files may span several specimens of a kind
var poolingPrograms = map[string]bool{
	ProgramTARGET: true,
}

// BAMs under these strategies have no companion index attribute
var rnaStrategies = map[string]bool{
	"RNA-Seq":   true,
	"miRNA-Seq": true,
}

const (
	bamFormat = "BAM"
	baiFormat = "BAI"
)

type entityKind int

const (
	caseEntity entityKind = iota
	sampleEntity
	pairEntity
)

func (k entityKind) String() string {
	switch k {
	case sampleEntity:
		return "sample"
	case pairEntity:
		return "pair"
	default:
		return "participant"
	}
}

// an entity receiving a file
type target struct {
	kind    entityKind
	id      string
	program string
	files   Files
}

func caseTarget(c *Case) target {
	return target{kind: caseEntity, id: c.Id, program: c.Program, files: c.Files}
}

func sampleTarget(c *Case, s *Sample) target {
	return target{kind: sampleEntity, id: s.Id, program: c.Program, files: s.Files}
}

func pairTarget(c *Case, p *Pair) target {
	return target{kind: pairEntity, id: p.Id, program: c.Program, files: p.Files}
}

// Attribute stores the file described by the record on the entity its cases
// and samples call for. Files associated with several cases are deferred.
// If fileName is empty, the record's file name is used.
func (b *Builder) Attribute(ctx context.Context, record gdc.FileRecord, fileName string) (Outcome, error) {
	if err := record.Validate(); err != nil {
		return OutcomeSkipped, err
	}
	ref := b.newRef(record, fileName)
	name, err := attributeName(record, &ref)
	if err != nil {
		return OutcomeSkipped, err
	}

	switch len(record.Cases) {
	case 0:
		return OutcomeSkipped, &SkipError{FileId: record.FileId, Reason: "file has no associated cases"}
	case 1:
	default:
		b.deferFile(DeferredEntry{
			FileId:    record.FileId,
			FileName:  ref.FileName,
			CaseCount: len(record.Cases),
		})
		slog.Debug(fmt.Sprintf("deferring %s: associated with %d cases", record.FileId, len(record.Cases)))
		return OutcomeDeferred, nil
	}

	caseRecord := record.Cases[0]
	c := b.Registry.RegisterCase(ctx, caseRecord)
	t, err := b.targetFor(record, c, caseRecord.Samples)
	if err != nil {
		return OutcomeSkipped, err
	}
	stored, err := b.attach(ctx, t, name, ref, record)
	if err != nil {
		return OutcomeSkipped, err
	}
	if stored {
		return OutcomeAttributed, nil
	}
	return OutcomeDiscarded, nil
}

// chooses (registering as needed) the entity that receives a single-case file
func (b *Builder) targetFor(record gdc.FileRecord, c *Case, samples []gdc.Sample) (target, error) {
	switch {
	case len(samples) == 0:
		return caseTarget(c), nil
	case len(samples) == 1:
		return sampleTarget(c, b.Registry.RegisterSample(samples[0], c.Id)), nil
	case len(samples) == 2:
		first, second := classifySample(samples[0]), classifySample(samples[1])
		if first == second {
			pooled, err := b.Registry.RegisterPooledSample(samples, c.Id)
			if err != nil {
				return target{}, withFileId(err, record.FileId)
			}
			return sampleTarget(c, pooled), nil
		}
		tumor, normal := samples[0], samples[1]
		if first == Normal && second == Tumor {
			tumor, normal = normal, tumor
		} else if first != Tumor || second != Normal {
			return target{}, &InvariantError{
				FileId: record.FileId,
				Message: fmt.Sprintf("samples %s (%s) and %s (%s) are not a tumor/normal pair",
					samples[0].SampleId, first, samples[1].SampleId, second),
			}
		}
		pair := b.Registry.RegisterPair(
			b.Registry.RegisterSample(tumor, c.Id),
			b.Registry.RegisterSample(normal, c.Id))
		return pairTarget(c, pair), nil
	case pairedVariantCategories[record.DataCategory] && poolingPrograms[c.Program]:
		return b.pooledPairTarget(record, c, samples)
	default:
		pooled, err := b.Registry.RegisterPooledSample(samples, c.Id)
		if err != nil {
			return target{}, withFileId(err, record.FileId)
		}
		return sampleTarget(c, pooled), nil
	}
}

// pools the tumor and normal specimens of a paired-variant file separately
// and pairs the results; specimens of other kinds are ignored
func (b *Builder) pooledPairTarget(record gdc.FileRecord, c *Case, samples []gdc.Sample) (target, error) {
	var tumors, normals []gdc.Sample
	for _, s := range samples {
		switch classifySample(s) {
		case Tumor:
			tumors = append(tumors, s)
		case Normal:
			normals = append(normals, s)
		}
	}
	if len(tumors) == 0 {
		return target{}, &InvariantError{
			FileId:  record.FileId,
			Message: fmt.Sprintf("none of the %d samples of case %s is a tumor sample", len(samples), c.Id),
		}
	}
	tumor, err := b.Registry.RegisterPooledSample(tumors, c.Id)
	if err != nil {
		return target{}, withFileId(err, record.FileId)
	}
	if len(normals) == 0 {
		return sampleTarget(c, tumor), nil
	}
	normal, err := b.Registry.RegisterPooledSample(normals, c.Id)
	if err != nil {
		return target{}, withFileId(err, record.FileId)
	}
	return pairTarget(c, b.Registry.RegisterPair(tumor, normal)), nil
}

// stores the file on the target under the given name, settling any
// collision with a different file already there; returns true if the file
// is stored when done
func (b *Builder) attach(ctx context.Context, t target, name string, ref FileRef,
	record gdc.FileRecord) (bool, error) {
	if err := b.Access.Record(name, ref.Access); err != nil {
		return false, err
	}
	existing, occupied := t.files[name]
	if occupied && existing.FileId == ref.FileId {
		// seen before (a retry, or a repeated manifest entry)
		return true, b.attachIndex(ctx, t, record, ref, false)
	}
	if occupied {
		winner, rule, err := b.resolveCollision(ctx, t, record, existing, ref)
		if err != nil {
			return false, err
		}
		b.summary.Collisions++
		b.options.Metrics.Collision(string(rule))
		if winner.FileId != ref.FileId {
			slog.Info(fmt.Sprintf("%s %s: keeping %s over %s for %s (%s)",
				t.kind, t.id, existing.FileId, ref.FileId, name, rule))
			return false, nil
		}
		slog.Info(fmt.Sprintf("%s %s: replacing %s with %s for %s (%s)",
			t.kind, t.id, existing.FileId, ref.FileId, name, rule))
	}
	t.files[name] = ref
	return true, b.attachIndex(ctx, t, record, ref, true)
}

// stores the index of a non-RNA BAM next to it. If replace is set, the BAM
// has just displaced another one, whose index is removed first so that it
// never outlives its BAM; otherwise an index already stored is kept.
func (b *Builder) attachIndex(ctx context.Context, t target, record gdc.FileRecord,
	ref FileRef, replace bool) error {
	if record.DataFormat == nil || *record.DataFormat != bamFormat {
		return nil
	}
	if record.ExperimentalStrategy != nil && rnaStrategies[*record.ExperimentalStrategy] {
		return nil
	}
	format := baiFormat
	name := NameFor(record.ExperimentalStrategy, record.WorkflowType(), record.DataType, &format)
	if replace {
		delete(t.files, name)
	} else if _, found := t.files[name]; found {
		return nil
	}
	indexed, err := b.service.File(ctx, record.FileId, b.options.Version.IndexFields)
	if err != nil {
		return err
	}
	if len(indexed.IndexFiles) == 0 {
		slog.Warn(fmt.Sprintf("BAM file %s has no index file", record.FileId))
		return nil
	}
	index := indexed.IndexFiles[0]
	if err = b.Access.Record(name, ref.Access); err != nil {
		return err
	}
	t.files[name] = FileRef{
		FileId:    index.FileId,
		FileName:  index.FileName,
		URL:       b.options.Resolver.Resolve(index.FileId),
		Access:    ref.Access,
		CaseCount: ref.CaseCount,
	}
	return nil
}

func (b *Builder) newRef(record gdc.FileRecord, fileName string) FileRef {
	if fileName == "" {
		fileName = record.FileName
	}
	return FileRef{
		FileId:    record.FileId,
		FileName:  fileName,
		URL:       b.options.Resolver.Resolve(record.FileId),
		Access:    record.Access,
		CaseCount: len(record.Cases),
	}
}

// derives the file's attribute name, filling in slide details on ref
func attributeName(record gdc.FileRecord, ref *FileRef) (string, error) {
	name := NameFor(record.ExperimentalStrategy, record.WorkflowType(), record.DataType, record.DataFormat)
	if record.DataType != SlideImageType {
		return name, nil
	}
	slide, err := ParseSlideName(ref.FileName)
	if err != nil {
		return "", &SkipError{FileId: record.FileId, Reason: err.Error()}
	}
	ref.Slide = true
	ref.Portion = slide.Portion
	return SlideNameFor(name, slide), nil
}

// tags an invariant error with the offending file
func withFileId(err error, fileId string) error {
	if invariant, ok := err.(*InvariantError); ok && invariant.FileId == "" {
		invariant.FileId = fileId
	}
	return err
}
