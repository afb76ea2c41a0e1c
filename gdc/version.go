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

package gdc

import (
	"fmt"
)

// APIVersion adapts the rest of the system to one generation of the metadata
// service: its root URL and the field names that generation understands.
// Records from every generation decode into the same types.
type APIVersion struct {
	// short name ("current" or "legacy")
	Name string
	// default root URL
	Root string
	// true for the legacy service, whose samples carry numeric type codes
	Legacy bool
	// file-level fields fetched first for every manifest entry
	FileFields []string
	// case and sample fields fetched for every manifest entry
	CaseFields []string
	// sample and aliquot barcode fields used to settle collisions
	BarcodeFields []string
	// fields locating a file's companion index
	IndexFields []string
	// fields fetched from the cases endpoint to enrich a new case
	EnrichFields []string
}

var fileFields = []string{
	"file_name",
	"data_category",
	"data_type",
	"data_format",
	"access",
	"experimental_strategy",
	"analysis.workflow_type",
}

var Current = APIVersion{
	Name:       "current",
	Root:       "https://api.gdc.cancer.gov",
	FileFields: fileFields,
	CaseFields: []string{
		"cases.case_id",
		"cases.submitter_id",
		"cases.primary_site",
		"cases.project.project_id",
		"cases.project.program.name",
		"cases.samples.sample_id",
		"cases.samples.submitter_id",
		"cases.samples.sample_type",
		"cases.samples.sample_type_id",
		"cases.samples.tissue_type",
	},
	BarcodeFields: []string{
		"cases.samples.sample_id",
		"cases.samples.submitter_id",
		"cases.samples.sample_type",
		"cases.samples.sample_type_id",
		"cases.samples.tissue_type",
		"cases.samples.portions.analytes.aliquots.submitter_id",
	},
	IndexFields:  []string{"index_files.file_id", "index_files.file_name", "index_files.data_format"},
	EnrichFields: []string{"primary_site"},
}

var Legacy = APIVersion{
	Name:       "legacy",
	Root:       "https://api.gdc.cancer.gov/legacy",
	Legacy:     true,
	FileFields: fileFields,
	CaseFields: []string{
		"cases.case_id",
		"cases.submitter_id",
		"cases.project.project_id",
		"cases.project.program.name",
		"cases.samples.sample_id",
		"cases.samples.submitter_id",
		"cases.samples.sample_type",
		"cases.samples.sample_type_id",
	},
	BarcodeFields: []string{
		"cases.samples.sample_id",
		"cases.samples.submitter_id",
		"cases.samples.sample_type",
		"cases.samples.sample_type_id",
		"cases.samples.portions.analytes.aliquots.submitter_id",
	},
	IndexFields:  []string{"index_files.file_id", "index_files.file_name", "index_files.data_format"},
	EnrichFields: []string{"primary_site"},
}

// VersionNamed returns the API version with the given name.
func VersionNamed(name string) (APIVersion, error) {
	switch name {
	case Current.Name, "":
		return Current, nil
	case Legacy.Name:
		return Legacy, nil
	default:
		return APIVersion{}, fmt.Errorf("Unknown metadata API version: '%s' (must be 'current' or 'legacy')", name)
	}
}

// FileAndCaseFields returns the union of the file-level and case-level fields,
// for callers that want everything in a single request.
func (v APIVersion) FileAndCaseFields() []string {
	fields := make([]string, 0, len(v.FileFields)+len(v.CaseFields))
	fields = append(fields, v.FileFields...)
	return append(fields, v.CaseFields...)
}
