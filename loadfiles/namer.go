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
	"fmt"
	"strconv"
	"strings"
)

const (
	// joins the components of an attribute name
	Separator = "__"
	// suffix of the column holding "<file id>/<filename>"
	UUIDAndFilenameSuffix = "__uuid_and_filename"
	// suffix of the column holding the file's access URL
	URLSuffix = "__gdc_url"
	// data type of whole-slide images, whose names carry a section code
	SlideImageType = "Slide Image"
)

var experimentalStrategyAbbreviations = map[string]string{
	"WXS":               "WXS",
	"RNA-Seq":           "RNAseq",
	"miRNA-Seq":         "miRNAseq",
	"Genotyping Array":  "GeneArray",
	"Methylation Array": "MethArray",
}

var workflowTypeAbbreviations = map[string]string{
	"SomaticSniper":                                 "SomSnip",
	"MuTect2":                                       "MuTect2",
	"VarScan2":                                      "VarScan2",
	"MuSE":                                          "MuSE",
	"SomaticSniper Annotation":                      "SomSnipAnnot",
	"MuTect2 Annotation":                            "MuTect2Annot",
	"VarScan2 Annotation":                           "VarScan2Annot",
	"MuSE Annotation":                               "MuSEAnnot",
	"MuSE Variant Aggregation and Masking":          "MuSEAggrMask",
	"MuTect2 Variant Aggregation and Masking":       "MuTect2AggrMask",
	"SomaticSniper Variant Aggregation and Masking": "SomSnipAggrMask",
	"VarScan2 Variant Aggregation and Masking":      "VarScan2AggrMask",
	"BCGSC miRNA Profiling":                         "BCGSCmiRNA",
	"HTSeq - Counts":                                "HTSeqCounts",
	"HTSeq - FPKM":                                  "HTSeqFPKM",
	"HTSeq - FPKM-UQ":                               "HTSEQFPKMUQ",
	"DNAcopy":                                       "DNACopy",
	"BWA with Mark Duplicates and Cocleaning":       "BWAMDupCoClean",
	"STAR 2-Pass":                                   "STAR2Pass",
	"BWA-aln":                                       "BWAaln",
	"Liftover":                                      "Lift",
}

var unwantedCharacters = strings.NewReplacer(".", "", "-", "", " ", "", "_", "")

// returns the table's abbreviation for the name or, failing that, the name
// with punctuation and whitespace stripped
func abbreviate(table map[string]string, name string) string {
	if abbreviation, found := table[name]; found {
		return abbreviation
	}
	return unwantedCharacters.Replace(name)
}

// lower-cases a data type or format and replaces its spaces with underscores
func snakeCase(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "_")
}

// NameFor derives the attribute base name under which a file with the given
// experimental context is stored on an entity. Absent (nil or empty) optional
// components are omitted.
func NameFor(experimentalStrategy, workflowType *string, dataType string, dataFormat *string) string {
	var b strings.Builder
	if experimentalStrategy != nil && *experimentalStrategy != "" {
		b.WriteString(abbreviate(experimentalStrategyAbbreviations, *experimentalStrategy))
		b.WriteString(Separator)
	}
	if workflowType != nil && *workflowType != "" {
		b.WriteString(abbreviate(workflowTypeAbbreviations, *workflowType))
		b.WriteString(Separator)
	}
	b.WriteString(snakeCase(dataType))
	if dataFormat != nil && *dataFormat != "" {
		b.WriteString(Separator)
		b.WriteString(snakeCase(*dataFormat))
	}
	return b.String()
}

// Slide holds what a slide image's filename says about its section.
type Slide struct {
	// section code (e.g. "ts1", "bs2"), lower-cased
	Code string
	// portion number
	Portion int
}

// ParseSlideName extracts the section code and portion number from a slide
// image filename such as "TCGA-AA-0001-01A-01-TS1.2F52DD63.svs".
func ParseSlideName(filename string) (Slide, error) {
	barcode := strings.Split(filename, ".")[0]
	tokens := strings.Split(barcode, "-")
	if len(tokens) < 2 || tokens[len(tokens)-1] == "" {
		return Slide{}, fmt.Errorf("slide image name '%s' has no section code", filename)
	}
	portion, err := strconv.Atoi(tokens[len(tokens)-2])
	if err != nil {
		return Slide{}, fmt.Errorf("slide image name '%s' has no portion number", filename)
	}
	return Slide{
		Code:    strings.ToLower(tokens[len(tokens)-1]),
		Portion: portion,
	}, nil
}

// SlideNameFor returns the attribute name of a slide image given the base
// name of its experimental context.
func SlideNameFor(base string, slide Slide) string {
	return base + Separator + slide.Code
}
