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
	"sort"
	"strings"

	"github.com/kbase/gdcloadfiles/gdc"
)

const (
	// joins the tumor and normal sample ids of a pair
	PairSeparator = "_"
	// joins the sorted member ids of a pooled sample
	PoolSeparator = "__"
)

// FileRef is a file stored on an entity under an attribute name.
type FileRef struct {
	FileId   string
	FileName string
	// resolved access URL, or the unresolved sentinel
	URL    string
	Access string
	// number of cases the file is associated with
	CaseCount int
	// portion number parsed from a slide image's name
	Portion int
	// true for slide images
	Slide bool
}

// Files maps attribute base names to the files stored under them.
type Files map[string]FileRef

type Case struct {
	Id          string
	SubmitterId string
	ProjectId   string
	Program     string
	PrimarySite string
	Files       Files
}

type Sample struct {
	Id          string
	SubmitterId string
	CaseId      string
	// raw typing fields, kept for the sample_type column
	SampleType     *string
	SampleTypeCode *string
	TissueType     *string
	Classification Classification
	// ids of the underlying samples of a pooled sample
	Members []string
	Files   Files
}

// ShortCode returns the letter code of the sample's type.
func (s Sample) ShortCode() string {
	return ShortCode(s.SampleType, s.SampleTypeCode)
}

type Pair struct {
	Id       string
	CaseId   string
	TumorId  string
	NormalId string
	Files    Files
}

// Registry holds the cases, samples and pairs built during a run, keyed by
// identifier. Registration is idempotent: registering an entity that already
// exists returns it unchanged.
type Registry struct {
	Cases   map[string]*Case
	Samples map[string]*Sample
	Pairs   map[string]*Pair

	// used to fill in fields missing from case records
	service gdc.Service
	version gdc.APIVersion
}

// NewRegistry creates an empty registry. If service is non-nil, newly
// registered cases lacking a primary site are enriched from it.
func NewRegistry(service gdc.Service, version gdc.APIVersion) *Registry {
	return &Registry{
		Cases:   make(map[string]*Case),
		Samples: make(map[string]*Sample),
		Pairs:   make(map[string]*Pair),
		service: service,
		version: version,
	}
}

// RegisterCase returns the case with the record's id, creating it if needed.
func (r *Registry) RegisterCase(ctx context.Context, record gdc.Case) *Case {
	if c, found := r.Cases[record.CaseId]; found {
		return c
	}
	c := &Case{
		Id:          record.CaseId,
		SubmitterId: record.SubmitterId,
		ProjectId:   record.Project.ProjectId,
		Program:     record.Program(),
		Files:       make(Files),
	}
	if present(record.PrimarySite) {
		c.PrimarySite = *record.PrimarySite
	} else if r.service != nil && len(r.version.EnrichFields) > 0 {
		enriched, err := r.service.Case(ctx, record.CaseId, r.version.EnrichFields)
		if err != nil {
			slog.Warn(fmt.Sprintf("Couldn't fetch primary site for case %s: %s", record.CaseId, err.Error()))
		} else if present(enriched.PrimarySite) {
			c.PrimarySite = *enriched.PrimarySite
		}
	}
	r.Cases[c.Id] = c
	return c
}

// RegisterSample returns the sample with the record's id, creating it (as a
// sample of the given case) if needed.
func (r *Registry) RegisterSample(record gdc.Sample, caseId string) *Sample {
	if s, found := r.Samples[record.SampleId]; found {
		return s
	}
	s := &Sample{
		Id:             record.SampleId,
		SubmitterId:    record.SubmitterId,
		CaseId:         caseId,
		SampleType:     record.SampleType,
		SampleTypeCode: record.SampleTypeId,
		TissueType:     record.TissueType,
		Classification: classifySample(record),
		Files:          make(Files),
	}
	r.Samples[s.Id] = s
	return s
}

// RegisterPooledSample returns the synthetic sample pooling the given records,
// creating it if needed. Its id joins the sorted member ids, so the order of
// the records doesn't matter. All members must agree on their typing fields.
func (r *Registry) RegisterPooledSample(records []gdc.Sample, caseId string) (*Sample, error) {
	if len(records) == 0 {
		return nil, &InvariantError{Message: "a pooled sample needs at least one member"}
	}
	if len(records) == 1 {
		return r.RegisterSample(records[0], caseId), nil
	}
	sorted := make([]gdc.Sample, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SampleId < sorted[j].SampleId })

	first := sorted[0]
	ids := make([]string, len(sorted))
	submitterIds := make([]string, len(sorted))
	for i, member := range sorted {
		if !sameString(member.TissueType, first.TissueType) ||
			!sameString(member.SampleType, first.SampleType) ||
			normalizeCode(member.SampleTypeId) != normalizeCode(first.SampleTypeId) {
			return nil, &InvariantError{
				Message: fmt.Sprintf("samples %s and %s of case %s can't be pooled: their types differ",
					first.SampleId, member.SampleId, caseId),
			}
		}
		ids[i] = member.SampleId
		submitterIds[i] = member.SubmitterId
	}

	id := strings.Join(ids, PoolSeparator)
	if s, found := r.Samples[id]; found {
		return s, nil
	}
	s := &Sample{
		Id:             id,
		SubmitterId:    strings.Join(submitterIds, PoolSeparator),
		CaseId:         caseId,
		SampleType:     first.SampleType,
		SampleTypeCode: first.SampleTypeId,
		TissueType:     first.TissueType,
		Classification: classifySample(first),
		Members:        ids,
		Files:          make(Files),
	}
	r.Samples[id] = s
	return s, nil
}

// RegisterPair returns the pair of the given (registered) tumor and normal
// samples, creating it if needed.
func (r *Registry) RegisterPair(tumor, normal *Sample) *Pair {
	id := tumor.Id + PairSeparator + normal.Id
	if p, found := r.Pairs[id]; found {
		return p
	}
	p := &Pair{
		Id:       id,
		CaseId:   tumor.CaseId,
		TumorId:  tumor.Id,
		NormalId: normal.Id,
		Files:    make(Files),
	}
	r.Pairs[id] = p
	return p
}

func classifySample(record gdc.Sample) Classification {
	return Classify(record.TissueType, record.SampleType, record.SampleTypeId)
}

// compares optional fields, treating absent and empty alike
func sameString(a, b *string) bool {
	return value(a) == value(b)
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
