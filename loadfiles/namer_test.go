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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameFor(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("clinical_supplement",
		NameFor(nil, nil, "Clinical Supplement", nil))
	assert.Equal("clinical_supplement__bcr_xml",
		NameFor(nil, nil, "Clinical Supplement", str("BCR XML")))
	assert.Equal("WXS__BWAMDupCoClean__aligned_reads__bam",
		NameFor(str("WXS"), str("BWA with Mark Duplicates and Cocleaning"), "Aligned Reads", str("BAM")))
	assert.Equal("RNAseq__HTSeqCounts__gene_expression_quantification__txt",
		NameFor(str("RNA-Seq"), str("HTSeq - Counts"), "Gene Expression Quantification", str("TXT")))
	assert.Equal("MethArray__Lift__methylation_beta_value",
		NameFor(str("Methylation Array"), str("Liftover"), "Methylation Beta Value", nil))

	// empty optional fields are treated as absent
	assert.Equal("clinical_supplement", NameFor(str(""), str(""), "Clinical Supplement", str("")))
}

func TestNameForFallsBackToSanitizedNames(t *testing.T) {
	assert.Equal(t, "ATACSeq__GenomicFeatures20__open_chromatin",
		NameFor(str("ATAC-Seq"), str("Genomic_Features 2.0"), "Open Chromatin", nil))
}

func TestNameForIsDeterministicAndSeparatesDataTypes(t *testing.T) {
	first := NameFor(str("WXS"), str("MuTect2"), "Raw Simple Somatic Mutation", str("VCF"))
	second := NameFor(str("WXS"), str("MuTect2"), "Raw Simple Somatic Mutation", str("VCF"))
	other := NameFor(str("WXS"), str("MuTect2"), "Annotated Somatic Mutation", str("VCF"))
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestAggregationWorkflowsHaveDistinctNames(t *testing.T) {
	names := make(map[string]bool)
	for _, workflow := range []string{
		"MuSE Variant Aggregation and Masking",
		"MuTect2 Variant Aggregation and Masking",
		"SomaticSniper Variant Aggregation and Masking",
		"VarScan2 Variant Aggregation and Masking",
	} {
		names[NameFor(str("WXS"), str(workflow), "Masked Somatic Mutation", str("MAF"))] = true
	}
	assert.Len(t, names, 4)
}

func TestParseSlideName(t *testing.T) {
	assert := assert.New(t)
	slide, err := ParseSlideName("TCGA-AA-0001-01A-01-TS1.2F52DD63-1234-4C8E.svs")
	assert.Nil(err)
	assert.Equal(Slide{Code: "ts1", Portion: 1}, slide)

	slide, err = ParseSlideName("TCGA-AA-0001-01Z-00-DX1.svs")
	assert.Nil(err)
	assert.Equal(Slide{Code: "dx1", Portion: 0}, slide)

	_, err = ParseSlideName("slide.svs")
	assert.NotNil(err)
	_, err = ParseSlideName("TCGA-AA-BS1.svs")
	assert.NotNil(err)
	_, err = ParseSlideName("TCGA-AA-01-.svs")
	assert.NotNil(err)
}

func TestSlideNameFor(t *testing.T) {
	base := NameFor(str("Tissue Slide"), nil, SlideImageType, str("SVS"))
	assert.Equal(t, "TissueSlide__slide_image__svs__ts1", SlideNameFor(base, Slide{Code: "ts1", Portion: 1}))
}
