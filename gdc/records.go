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
	"github.com/google/uuid"
)

// access levels reported for files
const (
	AccessOpen       = "open"
	AccessControlled = "controlled"
)

// FileRecord holds the file-level metadata returned by the files endpoint.
// Optional fields are pointers so that an absent field is distinguishable from
// an empty one.
type FileRecord struct {
	FileId               string      `json:"file_id,omitempty"`
	FileName             string      `json:"file_name,omitempty"`
	DataCategory         string      `json:"data_category,omitempty"`
	DataType             string      `json:"data_type,omitempty"`
	DataFormat           *string     `json:"data_format,omitempty"`
	Access               string      `json:"access,omitempty"`
	ExperimentalStrategy *string     `json:"experimental_strategy,omitempty"`
	Analysis             *Analysis   `json:"analysis,omitempty"`
	Cases                []Case      `json:"cases,omitempty"`
	IndexFiles           []IndexFile `json:"index_files,omitempty"`
}

type Analysis struct {
	WorkflowType *string `json:"workflow_type,omitempty"`
}

type IndexFile struct {
	FileId     string  `json:"file_id"`
	FileName   string  `json:"file_name,omitempty"`
	DataFormat *string `json:"data_format,omitempty"`
}

// Case is a participant as described by the metadata service.
type Case struct {
	CaseId      string   `json:"case_id"`
	SubmitterId string   `json:"submitter_id,omitempty"`
	PrimarySite *string  `json:"primary_site,omitempty"`
	Project     Project  `json:"project,omitempty"`
	Samples     []Sample `json:"samples,omitempty"`
}

type Project struct {
	ProjectId string  `json:"project_id,omitempty"`
	Program   Program `json:"program,omitempty"`
}

type Program struct {
	Name string `json:"name,omitempty"`
}

// Sample is a biological specimen. Which of the typing fields are populated
// depends on the API version and on the age of the record.
type Sample struct {
	SampleId     string    `json:"sample_id"`
	SubmitterId  string    `json:"submitter_id,omitempty"`
	SampleType   *string   `json:"sample_type,omitempty"`
	SampleTypeId *string   `json:"sample_type_id,omitempty"`
	TissueType   *string   `json:"tissue_type,omitempty"`
	Portions     []Portion `json:"portions,omitempty"`
}

type Portion struct {
	SubmitterId string    `json:"submitter_id,omitempty"`
	Analytes    []Analyte `json:"analytes,omitempty"`
}

type Analyte struct {
	SubmitterId string    `json:"submitter_id,omitempty"`
	Aliquots    []Aliquot `json:"aliquots,omitempty"`
}

type Aliquot struct {
	SubmitterId string `json:"submitter_id,omitempty"`
}

// WorkflowType returns the analysis workflow type, or nil if absent.
func (f FileRecord) WorkflowType() *string {
	if f.Analysis == nil {
		return nil
	}
	return f.Analysis.WorkflowType
}

// Validate checks that the mandatory fields of a file record are present.
func (f FileRecord) Validate() error {
	if f.DataCategory == "" {
		return &SchemaError{ResourceId: f.FileId, Field: "data_category"}
	}
	if f.DataType == "" {
		return &SchemaError{ResourceId: f.FileId, Field: "data_type"}
	}
	switch f.Access {
	case AccessOpen, AccessControlled:
	case "":
		return &SchemaError{ResourceId: f.FileId, Field: "access"}
	default:
		return &SchemaError{ResourceId: f.FileId, Field: "access (" + f.Access + ")"}
	}
	return nil
}

// Program returns the name of the program owning the case.
func (c Case) Program() string {
	return c.Project.Program.Name
}

// AliquotIds returns the submitter ids of all aliquots drawn from the sample,
// in the order reported.
func (s Sample) AliquotIds() []string {
	ids := make([]string, 0)
	for _, portion := range s.Portions {
		for _, analyte := range portion.Analytes {
			for _, aliquot := range analyte.Aliquots {
				if aliquot.SubmitterId != "" {
					ids = append(ids, aliquot.SubmitterId)
				}
			}
		}
	}
	return ids
}

// ValidateId makes sure the given identifier is a UUID, which is the form of
// every file and case identifier the service issues.
func ValidateId(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &InvalidIdError{Id: id}
	}
	return nil
}
