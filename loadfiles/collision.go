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

// CollisionRule names the rule that settled a collision.
type CollisionRule string

const (
	RuleSlidePortion CollisionRule = "slide_portion"
	RuleCaseCount    CollisionRule = "case_count"
	RuleBarcode      CollisionRule = "barcode"
	RuleArbitrary    CollisionRule = "arbitrary"
)

// data categories in which TARGET marks files with their cohort
var cohortMarkedCategories = map[string]bool{
	"Clinical":    true,
	"Biospecimen": true,
}

// decides which of two different files stored under the same name on the
// same entity is kept; record describes the candidate
func (b *Builder) resolveCollision(ctx context.Context, t target, record gdc.FileRecord,
	existing, candidate FileRef) (FileRef, CollisionRule, error) {
	switch {
	case existing.Slide && candidate.Slide:
		if candidate.Portion > existing.Portion {
			return candidate, RuleSlidePortion, nil
		}
		return existing, RuleSlidePortion, nil
	case existing.CaseCount > 1 || candidate.CaseCount > 1:
		return resolveByCaseCount(t.program, record.DataCategory, existing, candidate), RuleCaseCount, nil
	case t.kind == caseEntity:
		slog.Warn(fmt.Sprintf("participant %s: no rule to choose between %s and %s; keeping %s",
			t.id, existing.FileId, candidate.FileId, existing.FileId))
		return existing, RuleArbitrary, nil
	}
	if _, known := compareBarcodes(t.program, "", ""); !known {
		slog.Warn(fmt.Sprintf("%s %s: no barcode rule for program '%s' to choose between %s and %s; keeping %s",
			t.kind, t.id, t.program, existing.FileId, candidate.FileId, existing.FileId))
		return existing, RuleArbitrary, nil
	}

	existingBarcodes, err := b.barcodes(ctx, t.program, existing.FileId)
	if err != nil {
		return FileRef{}, RuleBarcode, err
	}
	candidateBarcodes, err := b.barcodes(ctx, t.program, candidate.FileId)
	if err != nil {
		return FileRef{}, RuleBarcode, err
	}
	var cmp int
	if t.kind == pairEntity {
		cmp, _ = compareBarcodes(t.program, candidateBarcodes.Tumor, existingBarcodes.Tumor)
		if cmp == 0 {
			cmp, _ = compareBarcodes(t.program, candidateBarcodes.Normal, existingBarcodes.Normal)
		}
	} else {
		cmp, _ = compareBarcodes(t.program, candidateBarcodes.All, existingBarcodes.All)
	}
	if cmp == 0 {
		cmp = strings.Compare(candidate.FileId, existing.FileId)
	}
	if cmp > 0 {
		return candidate, RuleBarcode, nil
	}
	return existing, RuleBarcode, nil
}

// prefers the TARGET discovery cohort over unmarked files over the validation
// cohort, then the file covering more cases, then the greater file id
func resolveByCaseCount(program, dataCategory string, existing, candidate FileRef) FileRef {
	if program == ProgramTARGET && cohortMarkedCategories[dataCategory] {
		if re, rc := cohortRank(existing.FileName), cohortRank(candidate.FileName); re != rc {
			if rc > re {
				return candidate
			}
			return existing
		}
	}
	if candidate.CaseCount != existing.CaseCount {
		if candidate.CaseCount > existing.CaseCount {
			return candidate
		}
		return existing
	}
	if candidate.FileId > existing.FileId {
		return candidate
	}
	return existing
}

func cohortRank(fileName string) int {
	switch {
	case strings.Contains(fileName, "Discovery"):
		return 2
	case strings.Contains(fileName, "Validation"):
		return 0
	default:
		return 1
	}
}

// the preferred specimen barcodes of a file, by sample classification
type fileBarcodes struct {
	Tumor  string
	Normal string
	All    string
}

// fetches the aliquot barcodes (or sample barcodes, for samples without
// aliquots) of a file and reduces each group to its preferred barcode
func (b *Builder) barcodes(ctx context.Context, program, fileId string) (fileBarcodes, error) {
	record, err := b.service.File(ctx, fileId, b.options.Version.BarcodeFields)
	if err != nil {
		return fileBarcodes{}, err
	}
	var tumor, normal, all []string
	for _, c := range record.Cases {
		for _, s := range c.Samples {
			ids := s.AliquotIds()
			if len(ids) == 0 && s.SubmitterId != "" {
				ids = []string{s.SubmitterId}
			}
			switch classifySample(s) {
			case Tumor:
				tumor = append(tumor, ids...)
			case Normal:
				normal = append(normal, ids...)
			}
			all = append(all, ids...)
		}
	}
	return fileBarcodes{
		Tumor:  preferred(program, tumor),
		Normal: preferred(program, normal),
		All:    preferred(program, all),
	}, nil
}

func preferred(program string, barcodes []string) string {
	sort.Strings(barcodes)
	return preferredBarcode(program, barcodes)
}
