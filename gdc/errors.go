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

// indicates that the metadata service exists but is currently unavailable
type UnavailableError struct {
	Service string
}

func (e UnavailableError) Error() string {
	return fmt.Sprintf("Cannot reach metadata service '%s': unavailable", e.Service)
}

// this error type is returned when a file or case is requested and is not found
type ResourceNotFoundError struct {
	Service, ResourceId string
}

func (e ResourceNotFoundError) Error() string {
	return fmt.Sprintf("Can't access resource '%s' in metadata service '%s': not found",
		e.ResourceId, e.Service)
}

// this error type is returned when the metadata service answers a request with
// an unexpected status
type RequestError struct {
	Service, Resource string
	Status            int
	Message           string
}

func (e RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("Request for '%s' to metadata service '%s' failed (%d): %s",
			e.Resource, e.Service, e.Status, e.Message)
	}
	return fmt.Sprintf("Request for '%s' to metadata service '%s' failed (%d)",
		e.Resource, e.Service, e.Status)
}

// this error type is emitted if an endpoint redirects an HTTPS request to an
// HTTP endpoint
type DowngradedRedirectError struct {
	Endpoint string
}

func (e DowngradedRedirectError) Error() string {
	return fmt.Sprintf("The endpoint %s is attempting to downgrade an HTTPS request to HTTP",
		e.Endpoint)
}

// this error type is returned when a metadata record lacks a field that every
// record must carry
type SchemaError struct {
	ResourceId, Field string
}

func (e SchemaError) Error() string {
	return fmt.Sprintf("Metadata record for '%s' is missing mandatory field '%s'",
		e.ResourceId, e.Field)
}

// this error type is returned when an identifier is not a valid UUID
type InvalidIdError struct {
	Id string
}

func (e InvalidIdError) Error() string {
	return fmt.Sprintf("'%s' is not a valid metadata service identifier", e.Id)
}

// indicates that an access token could not be read or decrypted
type TokenError struct {
	Path, Message string
}

func (e TokenError) Error() string {
	return fmt.Sprintf("Unable to read access token from '%s': %s", e.Path, e.Message)
}

// indicates that the on-disk metadata cache could not be opened or closed
type CacheError struct {
	Path, Message string
}

func (e CacheError) Error() string {
	return fmt.Sprintf("Metadata cache '%s': %s", e.Path, e.Message)
}
