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
	"strings"
)

// Classification is the tumor/normal label of a sample.
type Classification string

const (
	Tumor   Classification = "tumor"
	Normal  Classification = "normal"
	Other   Classification = "other"
	Unknown Classification = "unknown"
)

type sampleType struct {
	Description    string
	LetterCode     string
	Classification Classification
}

// numeric sample type codes used by the legacy archive and in barcodes
var sampleTypes = map[string]sampleType{
	"01": {"Primary Solid Tumor", "TP", Tumor},
	"02": {"Recurrent Solid Tumor", "TR", Tumor},
	"03": {"Primary Blood Derived Cancer - Peripheral Blood", "TB", Tumor},
	"04": {"Recurrent Blood Derived Cancer - Bone Marrow", "TRBM", Tumor},
	"05": {"Additional - New Primary", "TAP", Tumor},
	"06": {"Metastatic", "TM", Tumor},
	"07": {"Additional Metastatic", "TAM", Tumor},
	"08": {"Human Tumor Original Cells", "THOC", Tumor},
	"09": {"Primary Blood Derived Cancer - Bone Marrow", "TBM", Tumor},
	"10": {"Blood Derived Normal", "NB", Normal},
	"11": {"Solid Tissue Normal", "NT", Normal},
	"12": {"Buccal Cell Normal", "NBC", Normal},
	"13": {"EBV Immortalized Normal", "NEBV", Normal},
	"14": {"Bone Marrow Normal", "NBM", Normal},
	"15": {"sample type 15", "15SH", Other},
	"16": {"sample type 16", "16SH", Other},
	"20": {"Control Analyte", "CELLC", Other},
	"40": {"Recurrent Blood Derived Cancer - Peripheral Blood", "TRB", Tumor},
	"41": {"Blood Derived Cancer - Bone Marrow, Post-treatment", "TBD", Tumor},
	"42": {"Blood Derived Cancer - Peripheral Blood, Post-treatment", "TBD", Tumor},
	"50": {"Cell Lines", "CELL", Other},
	"60": {"Primary Xenograft Tissue", "XP", Other},
	"61": {"Cell Line Derived Xenograft Tissue", "XCL", Other},
	"99": {"sample type 99", "99SH", Other},
}

// letter codes indexed by description, for records that carry only the
// freeform sample type
var letterCodes = func() map[string]string {
	codes := make(map[string]string)
	for _, t := range sampleTypes {
		codes[t.Description] = t.LetterCode
	}
	return codes
}()

var tissueTypes = map[string]Classification{
	"Tumor":        Tumor,
	"Normal":       Normal,
	"Abnormal":     Other,
	"Peritumoral":  Other,
	"Unknown":      Unknown,
	"Not Reported": Unknown,
}

// normalizes a sample type code to two digits, returning "" if absent
func normalizeCode(code *string) string {
	if code == nil {
		return ""
	}
	c := strings.TrimSpace(*code)
	if len(c) == 1 {
		c = "0" + c
	}
	return c
}

func present(s *string) bool {
	return s != nil && *s != ""
}

// Classify labels a sample from whichever of its typing fields are present.
// A numeric sample type code takes precedence over the tissue type, which
// takes precedence over the freeform sample type.
func Classify(tissueType, sampleType, sampleTypeCode *string) Classification {
	if code := normalizeCode(sampleTypeCode); code != "" {
		if t, found := sampleTypes[code]; found {
			return t.Classification
		}
		return Unknown
	}
	if present(tissueType) {
		if c, found := tissueTypes[*tissueType]; found {
			return c
		}
		return Unknown
	}
	if present(sampleType) {
		if strings.Contains(*sampleType, "Normal") {
			return Normal
		}
		return Tumor
	}
	return Unknown
}

// ShortCode returns the letter code written to the sample_type column.
func ShortCode(sampleType, sampleTypeCode *string) string {
	if code := normalizeCode(sampleTypeCode); code != "" {
		if t, found := sampleTypes[code]; found {
			return t.LetterCode
		}
	}
	if present(sampleType) {
		if letters, found := letterCodes[*sampleType]; found {
			return letters
		}
		return abbreviate(nil, strings.NewReplacer(",", "", "(", "", ")", "").Replace(*sampleType))
	}
	return "NA"
}
