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

// Package manifest reads the tab-delimited file manifests exported by the
// data portal.
package manifest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// required column names
const (
	IdColumn       = "id"
	FileNameColumn = "filename"
)

// Entry is a file listed in a manifest.
type Entry struct {
	Id       string
	FileName string
}

// this error type is returned when a manifest lacks a required column
type MissingColumnError struct {
	Column string
}

func (e MissingColumnError) Error() string {
	return fmt.Sprintf("manifest has no '%s' column", e.Column)
}

// ReadFile reads the manifest at the given path.
func ReadFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	entries, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Read reads a manifest whose first row names its columns. Rows with an
// invalid or repeated file id are logged and dropped.
func Read(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	idCol, nameCol := -1, -1
	entries := make([]Entry, 0)
	seen := make(map[string]bool)
	for line := 1; ; line++ {
		cols, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}

		if line == 1 {
			for k, col := range cols {
				switch strings.TrimSpace(col) {
				case IdColumn:
					idCol = k
				case FileNameColumn:
					nameCol = k
				}
			}
			if idCol < 0 {
				return nil, &MissingColumnError{Column: IdColumn}
			}
			if nameCol < 0 {
				return nil, &MissingColumnError{Column: FileNameColumn}
			}
			continue
		}

		if len(cols) <= idCol || len(cols) <= nameCol {
			slog.Warn(fmt.Sprintf("manifest line %d: too few columns; ignoring", line))
			continue
		}
		id := strings.TrimSpace(cols[idCol])
		if _, err := uuid.Parse(id); err != nil {
			slog.Warn(fmt.Sprintf("manifest line %d: '%s' is not a file id; ignoring", line, id))
			continue
		}
		if seen[id] {
			slog.Warn(fmt.Sprintf("manifest line %d: file %s listed again; ignoring", line, id))
			continue
		}
		seen[id] = true
		entries = append(entries, Entry{
			Id:       id,
			FileName: strings.TrimSpace(cols[nameCol]),
		})
	}
	if idCol < 0 {
		return nil, &MissingColumnError{Column: IdColumn}
	}
	return entries, nil
}

// Prefix returns the prefix of the load files generated from the manifest at
// the given path: its base name without extension.
func Prefix(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
