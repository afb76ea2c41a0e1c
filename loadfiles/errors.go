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
	"errors"
	"fmt"

	"github.com/kbase/gdcloadfiles/gdc"
)

// this error type is returned when metadata violates an assumption the
// entity model depends on (e.g. a sample pair without exactly one tumor and
// one normal member); it aborts the run
type InvariantError struct {
	FileId  string
	Message string
}

func (e InvariantError) Error() string {
	if e.FileId == "" {
		return fmt.Sprintf("Modeling invariant violated: %s", e.Message)
	}
	return fmt.Sprintf("Modeling invariant violated by file %s: %s", e.FileId, e.Message)
}

// this error type is returned when a file would change the access level
// already recorded for its attribute name; it aborts the run
type AccessLevelError struct {
	Attribute string
	Recorded  string
	Requested string
}

func (e AccessLevelError) Error() string {
	return fmt.Sprintf("Attribute %s has access level '%s' and cannot be given access level '%s'",
		e.Attribute, e.Recorded, e.Requested)
}

// this error type is returned when a file cannot be attributed for a reason
// that retrying will not fix
type SkipError struct {
	FileId string
	Reason string
}

func (e SkipError) Error() string {
	return fmt.Sprintf("Skipping file %s: %s", e.FileId, e.Reason)
}

// this error type is returned when a file still fails after every attempt
type RetriesExhaustedError struct {
	FileId   string
	Attempts int
	Err      error
}

func (e RetriesExhaustedError) Error() string {
	return fmt.Sprintf("Giving up on file %s after %d attempts: %s", e.FileId, e.Attempts, e.Err.Error())
}

func (e RetriesExhaustedError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error must abort the run.
func IsFatal(err error) bool {
	var invariant *InvariantError
	var access *AccessLevelError
	return errors.As(err, &invariant) || errors.As(err, &access)
}

// reports whether the error means the file should be skipped without retry
func isSkip(err error) bool {
	var skip *SkipError
	var schema *gdc.SchemaError
	var notFound *gdc.ResourceNotFoundError
	var invalid *gdc.InvalidIdError
	return errors.As(err, &skip) || errors.As(err, &schema) ||
		errors.As(err, &notFound) || errors.As(err, &invalid)
}
