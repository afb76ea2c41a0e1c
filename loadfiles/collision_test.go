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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbase/gdcloadfiles/gdc"
	"github.com/kbase/gdcloadfiles/gdctest"
)

// attributes the records in order to a fresh builder and returns the id of
// the file stored under name on the entity found by lookup
func winner(t *testing.T, svc *gdctest.Service, records []gdc.FileRecord,
	lookup func(*Registry) Files, name string) string {
	t.Helper()
	b := newTestBuilder(svc, false)
	for _, record := range records {
		_, err := b.Attribute(context.Background(), record, "")
		require.Nil(t, err)
	}
	return lookup(b.Registry)[name].FileId
}

// asserts that the same file wins whichever order the records arrive in
func assertWinner(t *testing.T, expected string, a, b gdc.FileRecord,
	lookup func(*Registry) Files, name string) {
	t.Helper()
	svc := serviceWith(a, b)
	assert.Equal(t, expected, winner(t, svc, []gdc.FileRecord{a, b}, lookup, name))
	assert.Equal(t, expected, winner(t, svc, []gdc.FileRecord{b, a}, lookup, name))
}

func sampleFiles(id string) func(*Registry) Files {
	return func(r *Registry) Files { return r.Samples[id].Files }
}

func pairFiles(id string) func(*Registry) Files {
	return func(r *Registry) Files { return r.Pairs[id].Files }
}

func caseFiles(id string) func(*Registry) Files {
	return func(r *Registry) Files { return r.Cases[id].Files }
}

const expressionName = "RNAseq__HTSeqCounts__gene_expression_quantification__txt"

func TestSingleSampleCollisionUsesBarcodes(t *testing.T) {
	rna := expressionFile("f-rna", tcgaCase("c1", sample("s1", "01", "TCGA-AA-0001-01A-11R-A001-07")))
	hybrid := expressionFile("f-hybrid", tcgaCase("c1", sample("s1", "01", "TCGA-AA-0001-01A-11H-A002-07")))
	assertWinner(t, "f-hybrid", rna, hybrid, sampleFiles("s1"), expressionName)
}

func TestSingleSampleCollisionFallsBackToSampleBarcodes(t *testing.T) {
	first := expressionFile("f1", tcgaCase("c1", sample("s1", "01")))
	second := expressionFile("f2", tcgaCase("c1", sample("s1", "01")))
	second.Cases[0].Samples[0].SubmitterId = "TCGA-AA-0001-01B"
	first.Cases[0].Samples[0].SubmitterId = "TCGA-AA-0001-01A"
	// the sample id is the same, so the registry keeps the first submitter
	// id; the barcodes come from each file's own record
	assertWinner(t, "f2", first, second, sampleFiles("s1"), expressionName)
}

func TestIdenticalBarcodesPreferGreaterFileId(t *testing.T) {
	barcode := "TCGA-AA-0001-01A-11R-A001-07"
	a := expressionFile("f-a", tcgaCase("c1", sample("s1", "01", barcode)))
	b := expressionFile("f-b", tcgaCase("c1", sample("s1", "01", barcode)))
	assertWinner(t, "f-b", a, b, sampleFiles("s1"), expressionName)
}

func TestPairCollisionComparesTumorThenNormal(t *testing.T) {
	name := "WXS__MuTect2__raw_simple_somatic_mutation__vcf"
	tumor := "TCGA-AA-0001-01A-11D-A001-08"
	first := snvFile("f1", tcgaCase("c1",
		sample("s-t", "01", tumor),
		sample("s-n", "10", "TCGA-AA-0001-10A-01D-A001-08")))
	second := snvFile("f2", tcgaCase("c1",
		sample("s-t", "01", tumor),
		sample("s-n", "10", "TCGA-AA-0001-10A-01W-A001-08")))
	assertWinner(t, "f1", first, second, pairFiles("s-t_s-n"), name)

	// a difference in tumor barcodes decides regardless of the normals
	third := snvFile("f3", tcgaCase("c1",
		sample("s-t", "01", "TCGA-AA-0001-01A-11W-A009-08"),
		sample("s-n", "10", "TCGA-AA-0001-10A-01W-A001-08")))
	assertWinner(t, "f3", first, third, pairFiles("s-t_s-n"), name)
}

func TestTARGETCollisionUsesTARGETRule(t *testing.T) {
	rna := expressionFile("f1", programCase(ProgramTARGET, "c1", sample("s1", "09", "TARGET-20-PADZCG-09A-01R")))
	dna := expressionFile("f2", programCase(ProgramTARGET, "c1", sample("s1", "09", "TARGET-20-PADZCG-09A-01D")))
	assertWinner(t, "f2", rna, dna, sampleFiles("s1"), expressionName)
}

func TestUnknownProgramKeepsExistingFile(t *testing.T) {
	a := expressionFile("f-a", programCase("CPTAC", "c1", sample("s1", "01", "x-1")))
	b := expressionFile("f-b", programCase("CPTAC", "c1", sample("s1", "01", "x-2")))
	svc := serviceWith(a, b)
	assert.Equal(t, "f-a", winner(t, svc, []gdc.FileRecord{a, b}, sampleFiles("s1"), expressionName))
	assert.Equal(t, "f-b", winner(t, svc, []gdc.FileRecord{b, a}, sampleFiles("s1"), expressionName))
	// no lookups were needed
	assert.Equal(t, 0, svc.Calls("f-a"))
}

func TestCaseLevelCollisionKeepsExistingFile(t *testing.T) {
	a := clinicalFile("f-a", tcgaCase("c1"))
	b := clinicalFile("f-b", tcgaCase("c1"))
	svc := serviceWith(a, b)
	assert.Equal(t, "f-a", winner(t, svc, []gdc.FileRecord{a, b}, caseFiles("c1"), "clinical_supplement"))
	assert.Equal(t, "f-b", winner(t, svc, []gdc.FileRecord{b, a}, caseFiles("c1"), "clinical_supplement"))
}

func TestSlideCollisionPrefersHigherPortion(t *testing.T) {
	name := "TissueSlide__slide_image__svs__ts1"
	c := tcgaCase("c1", sample("s1", "01"))
	low := slideFile("f-low", "TCGA-AA-0001-01A-01-TS1.abc.svs", c)
	high := slideFile("f-high", "TCGA-AA-0001-01A-02-TS1.def.svs", c)
	assertWinner(t, "f-high", low, high, sampleFiles("s1"), name)

	// equal portions keep the existing slide
	same := slideFile("f-same", "TCGA-AA-0001-01A-01-TS1.ghi.svs", c)
	svc := serviceWith(low, same)
	assert.Equal(t, "f-low", winner(t, svc, []gdc.FileRecord{low, same}, sampleFiles("s1"), name))
}

func TestResolveByCaseCount(t *testing.T) {
	assert := assert.New(t)
	few := FileRef{FileId: "f-few", FileName: "clinical.xml", CaseCount: 2}
	many := FileRef{FileId: "f-many", FileName: "clinical.xml", CaseCount: 30}
	assert.Equal("f-many", resolveByCaseCount(ProgramTCGA, "Clinical", few, many).FileId)
	assert.Equal("f-many", resolveByCaseCount(ProgramTCGA, "Clinical", many, few).FileId)

	sameA := FileRef{FileId: "f-a", CaseCount: 5}
	sameB := FileRef{FileId: "f-b", CaseCount: 5}
	assert.Equal("f-b", resolveByCaseCount(ProgramTCGA, "Clinical", sameA, sameB).FileId)
	assert.Equal("f-b", resolveByCaseCount(ProgramTCGA, "Clinical", sameB, sameA).FileId)
}

func TestResolveByCohortMarker(t *testing.T) {
	assert := assert.New(t)
	discovery := FileRef{FileId: "f-d", FileName: "TARGET_AML_ClinicalData_Discovery_20160714.xlsx", CaseCount: 5}
	validation := FileRef{FileId: "f-v", FileName: "TARGET_AML_ClinicalData_Validation_20160714.xlsx", CaseCount: 50}
	unmarked := FileRef{FileId: "f-u", FileName: "TARGET_AML_ClinicalData_20160714.xlsx", CaseCount: 1}

	assert.Equal("f-d", resolveByCaseCount(ProgramTARGET, "Clinical", discovery, validation).FileId)
	assert.Equal("f-d", resolveByCaseCount(ProgramTARGET, "Clinical", validation, discovery).FileId)
	assert.Equal("f-u", resolveByCaseCount(ProgramTARGET, "Biospecimen", validation, unmarked).FileId)
	assert.Equal("f-d", resolveByCaseCount(ProgramTARGET, "Biospecimen", unmarked, discovery).FileId)

	// markers mean nothing outside TARGET clinical and biospecimen files
	assert.Equal("f-v", resolveByCaseCount(ProgramTCGA, "Clinical", discovery, validation).FileId)
	assert.Equal("f-v", resolveByCaseCount(ProgramTARGET, "Transcriptome Profiling", discovery, validation).FileId)
}
