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

// This package contains testing utilities for gdcloadfiles: an in-memory
// metadata service, a fake metadata HTTP API, and record builders.
package gdctest

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/kbase/gdcloadfiles/gdc"
)

// Enables DEBUG log messages for the structured log (slog).
func EnableDebugLogging() {
	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelDebug)
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
}

// Ptr returns a pointer to a copy of the given value, for populating the
// optional fields of metadata records.
func Ptr[T any](v T) *T {
	return &v
}

// Service is an in-memory metadata service (implements gdc.Service). Failures
// can be queued per identifier to simulate a flaky remote service.
type Service struct {
	mu       sync.Mutex
	files    map[string]gdc.FileRecord
	cases    map[string]gdc.Case
	failures map[string][]error
	calls    map[string]int
}

// NewService creates an empty in-memory service.
func NewService() *Service {
	return &Service{
		files:    make(map[string]gdc.FileRecord),
		cases:    make(map[string]gdc.Case),
		failures: make(map[string][]error),
		calls:    make(map[string]int),
	}
}

// AddFile adds (or replaces) a file record.
func (s *Service) AddFile(record gdc.FileRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[record.FileId] = record
}

// AddCase adds (or replaces) a case record served by the cases endpoint.
func (s *Service) AddCase(record gdc.Case) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[record.CaseId] = record
}

// FailNext queues errors returned, one per request, for the given identifier
// before its record is served again.
func (s *Service) FailNext(id string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[id] = append(s.failures[id], errs...)
}

// Calls returns the number of requests made for the given identifier.
func (s *Service) Calls(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

func (s *Service) File(ctx context.Context, fileId string, fields []string) (gdc.FileRecord, error) {
	if err := s.request(ctx, fileId); err != nil {
		return gdc.FileRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, found := s.files[fileId]
	if !found {
		return gdc.FileRecord{}, &gdc.ResourceNotFoundError{Service: "gdctest", ResourceId: fileId}
	}
	return record, nil
}

func (s *Service) Case(ctx context.Context, caseId string, fields []string) (gdc.Case, error) {
	if err := s.request(ctx, caseId); err != nil {
		return gdc.Case{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, found := s.cases[caseId]
	if !found {
		return gdc.Case{}, &gdc.ResourceNotFoundError{Service: "gdctest", ResourceId: caseId}
	}
	return record, nil
}

// counts the request and pops any queued failure
func (s *Service) request(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[id]++
	if queued := s.failures[id]; len(queued) > 0 {
		s.failures[id] = queued[1:]
		return queued[0]
	}
	return nil
}
