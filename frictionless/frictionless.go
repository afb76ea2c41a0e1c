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

package frictionless

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/frictionlessdata/datapackage-go/datapackage"
	"github.com/frictionlessdata/datapackage-go/validator"
)

// a Frictionless data package describing a set of related resources
// (https://specs.frictionlessdata.io/data-package/)
type DataPackage struct {
	// a timestamp indicated when the package was created
	Created string `json:"created,omitempty"`
	// a Markdown description of the data package
	Description string `json:"description,omitempty"`
	// an array of string keywords to assist users searching for the data package
	// in catalogs
	Keywords []string `json:"keywords,omitempty"`
	// the name of the data package
	Name string `json:"name"`
	// the profile of this descriptor per the DataPackage profiles specification
	// (https://specs.frictionlessdata.io/profiles/#language)
	Profile string `json:"profile,omitempty"`
	// a list of resources that belong to the package
	Resources []DataResource `json:"resources"`
	// a list identifying the sources for this resource (optional)
	Sources []DataSource `json:"sources,omitempty"`
	// a title or one sentence description for the data package
	Title string `json:"title,omitempty"`
}

// a Frictionless tabular data resource describing one load file
// (https://specs.frictionlessdata.io/tabular-data-resource/)
type DataResource struct {
	// the size of the resource's file in bytes
	Bytes int `json:"bytes"`
	// a description of the resource (optional)
	Description string `json:"description,omitempty"`
	// the CSV dialect of the resource's file
	Dialect Dialect `json:"dialect"`
	// the character encoding for the resource's file (optional, default: UTF-8)
	Encoding string `json:"encoding,omitempty"`
	// indicates the format of the resource's file, often used as an extension
	Format string `json:"format"`
	// the hash for the resource's file (algorithms other than MD5 are indicated
	// with a prefix to the hash delimited by a colon)
	Hash string `json:"hash"`
	// the mediatype/mimetype of the resource (optional, e.g. "test/csv")
	MediaType string `json:"mediatype,omitempty"`
	// the name of the resource, lower case
	Name string `json:"name"`
	// a relative path to the resource's file within a data package directory
	Path string `json:"path"`
	// the profile of the resource
	Profile string `json:"profile"`
	// the columns of the resource's file
	Schema TableSchema `json:"schema"`
	// a title or label for the resource (optional)
	Title string `json:"title,omitempty"`
}

// the delimiter and header conventions of a tabular file
type Dialect struct {
	Delimiter string `json:"delimiter"`
	Header    bool   `json:"header"`
}

// the fields of a tabular file (https://specs.frictionlessdata.io/table-schema/)
type TableSchema struct {
	Fields []Field `json:"fields"`
}

type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// information about the source of a DataResource
type DataSource struct {
	// a URI or relative path pointing to the source (optional)
	Path string `json:"path,omitempty"`
	// a descriptive title for the source
	Title string `json:"title"`
}

// Table describes a tab-delimited file written to a directory.
type Table struct {
	// resource name (lower case, e.g. "participants")
	Name string
	// file name within the directory
	FileName string
	// column names, in order
	Columns     []string
	Description string
}

// NewResource describes the given table, whose file must exist in dir.
func NewResource(dir string, table Table) (DataResource, error) {
	size, hash, err := digest(filepath.Join(dir, table.FileName))
	if err != nil {
		return DataResource{}, err
	}
	fields := make([]Field, len(table.Columns))
	for i, column := range table.Columns {
		fields[i] = Field{Name: column, Type: "string"}
	}
	return DataResource{
		Bytes:       size,
		Description: table.Description,
		Dialect:     Dialect{Delimiter: "\t", Header: true},
		Encoding:    "utf-8",
		Format:      "tsv",
		Hash:        hash,
		MediaType:   "text/tab-separated-values",
		Name:        table.Name,
		Path:        table.FileName,
		Profile:     "tabular-data-resource",
		Schema:      TableSchema{Fields: fields},
	}, nil
}

// WritePackage writes a validated data package descriptor for the given
// tables to dir/fileName and returns the descriptor.
func WritePackage(dir, fileName string, pkg DataPackage, tables []Table) (DataPackage, error) {
	pkg.Resources = make([]DataResource, 0, len(tables))
	for _, table := range tables {
		resource, err := NewResource(dir, table)
		if err != nil {
			return DataPackage{}, err
		}
		pkg.Resources = append(pkg.Resources, resource)
	}
	if pkg.Created == "" {
		pkg.Created = time.Now().Format(time.RFC3339)
	}
	if pkg.Profile == "" {
		pkg.Profile = "tabular-data-package"
	}

	data, err := json.Marshal(pkg)
	if err != nil {
		return DataPackage{}, err
	}
	var descriptor map[string]any
	if err = json.Unmarshal(data, &descriptor); err != nil {
		return DataPackage{}, err
	}
	validated, err := datapackage.New(descriptor, dir, validator.InMemoryLoader())
	if err != nil {
		return DataPackage{}, fmt.Errorf("invalid data package descriptor: %w", err)
	}
	if err = validated.SaveDescriptor(filepath.Join(dir, fileName)); err != nil {
		return DataPackage{}, fmt.Errorf("writing data package descriptor: %w", err)
	}
	return pkg, nil
}

// returns the size and MD5 hash of the file at the given path
func digest(path string) (int, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer file.Close()
	hash := md5.New()
	size, err := io.Copy(hash, file)
	if err != nil {
		return 0, "", err
	}
	return int(size), hex.EncodeToString(hash.Sum(nil)), nil
}
