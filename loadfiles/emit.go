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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/kbase/gdcloadfiles/frictionless"
	"github.com/kbase/gdcloadfiles/resolver"
)

// written in place of an attribute an entity lacks
const Absent = resolver.Unresolved

// set every entity belongs to
const AllSet = "ALL"

// Result is the final state of a run, as handed to an Emitter.
type Result struct {
	Registry *Registry
	Access   *AccessTable
	// true if the metadata came from the legacy archive
	Legacy bool
}

// Result returns the builder's entities.
func (b *Builder) Result() Result {
	return Result{
		Registry: b.Registry,
		Access:   b.Access,
		Legacy:   b.Legacy(),
	}
}

// Emitter writes the entities of a finished run.
type Emitter interface {
	Emit(result Result) error
}

// TSVEmitter writes the tab-delimited load files (and optionally a data
// package descriptor) to a directory. After Emit, Written lists the paths of
// the files written.
type TSVEmitter struct {
	Directory   string
	Prefix      string
	DataPackage bool
	// path of the manifest the tables came from, listed as the package's
	// source (optional)
	Source  string
	Written []string
}

var (
	participantColumns = []string{"entity:participant_id", "submitter_id", "project_id", "primary_site"}
	sampleColumns      = []string{"entity:sample_id", "participant_id", "submitter_id", "sample_type"}
	pairColumns        = []string{"entity:pair_id", "participant_id", "case_sample_id", "control_sample_id",
		"tumor_submitter_id", "normal_submitter_id", "tumor_type", "normal_type"}
)

// an entity flattened for output
type row struct {
	id     string
	fields []string
	files  Files
}

func (e *TSVEmitter) Emit(result Result) error {
	if err := os.MkdirAll(e.Directory, 0755); err != nil {
		return err
	}
	e.Written = nil
	tables := make([]frictionless.Table, 0)

	reg := result.Registry
	participants := make([]row, 0, len(reg.Cases))
	for _, c := range reg.Cases {
		participants = append(participants, row{
			id:     c.Id,
			fields: []string{c.SubmitterId, c.ProjectId, c.PrimarySite},
			files:  c.Files,
		})
	}
	written, err := e.writeEntities("participant", participantColumns, participants, result.Access)
	if err != nil {
		return err
	}
	tables = append(tables, written...)

	if len(reg.Samples) > 0 {
		samples := make([]row, 0, len(reg.Samples))
		for _, s := range reg.Samples {
			samples = append(samples, row{
				id:     s.Id,
				fields: []string{s.CaseId, s.SubmitterId, s.ShortCode()},
				files:  s.Files,
			})
		}
		written, err = e.writeEntities("sample", sampleColumns, samples, result.Access)
		if err != nil {
			return err
		}
		tables = append(tables, written...)
	}

	if len(reg.Pairs) > 0 {
		pairs := make([]row, 0, len(reg.Pairs))
		for _, p := range reg.Pairs {
			tumor, normal := reg.Samples[p.TumorId], reg.Samples[p.NormalId]
			pairs = append(pairs, row{
				id: p.Id,
				fields: []string{p.CaseId, p.TumorId, p.NormalId,
					tumor.SubmitterId, normal.SubmitterId, tumor.ShortCode(), normal.ShortCode()},
				files: p.Files,
			})
		}
		written, err = e.writeEntities("pair", pairColumns, pairs, result.Access)
		if err != nil {
			return err
		}
		tables = append(tables, written...)
	}

	table, err := e.writeWorkspaceAttributes(result.Legacy)
	if err != nil {
		return err
	}
	tables = append(tables, table)

	if e.DataPackage {
		fileName := e.Prefix + "_datapackage.json"
		pkg := frictionless.DataPackage{
			Name:        packageName(e.Prefix),
			Title:       fmt.Sprintf("Workspace load files for %s", e.Prefix),
			Keywords:    []string{"gdc", "load files"},
			Description: "Participants, samples and pairs attributed from a GDC manifest",
		}
		if e.Source != "" {
			pkg.Sources = []frictionless.DataSource{{Title: "GDC manifest", Path: filepath.Base(e.Source)}}
		}
		_, err = frictionless.WritePackage(e.Directory, fileName, pkg, tables)
		if err != nil {
			return err
		}
		e.Written = append(e.Written, filepath.Join(e.Directory, fileName))
	}
	for _, path := range e.Written {
		slog.Info(fmt.Sprintf("wrote %s", path))
	}
	return nil
}

// writes the entity table and the set membership table of one entity kind
func (e *TSVEmitter) writeEntities(kind string, columns []string, rows []row,
	access *AccessTable) ([]frictionless.Table, error) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].id < rows[j].id })

	nameSet := make(map[string]bool)
	for _, r := range rows {
		for name := range r.files {
			nameSet[name] = true
		}
	}
	names := make([]string, 0, len(nameSet))
	for name := range nameSet {
		names = append(names, name)
	}
	sort.Strings(names)

	header := append([]string{}, columns...)
	for _, name := range names {
		header = append(header, name+UUIDAndFilenameSuffix, name+URLSuffix)
	}
	entityRows := make([][]string, 0, len(rows))
	membershipRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		record := append([]string{r.id}, r.fields...)
		for _, name := range names {
			if ref, found := r.files[name]; found {
				record = append(record, ref.FileId+"/"+ref.FileName, ref.URL)
				membershipRows = append(membershipRows, []string{access.Prefix(name) + name, r.id})
			} else {
				record = append(record, Absent, Absent)
			}
		}
		entityRows = append(entityRows, record)
		membershipRows = append(membershipRows, []string{AllSet, r.id})
	}

	entityTable := frictionless.Table{
		Name:        kind + "s",
		FileName:    fmt.Sprintf("%s_%ss.txt", e.Prefix, kind),
		Columns:     header,
		Description: fmt.Sprintf("%s entities", kind),
	}
	membershipTable := frictionless.Table{
		Name:        kind + "-sets-membership",
		FileName:    fmt.Sprintf("%s_%s_sets_membership.txt", e.Prefix, kind),
		Columns:     []string{fmt.Sprintf("membership:%s_set_id", kind), kind + "_id"},
		Description: fmt.Sprintf("%s set membership", kind),
	}
	if err := e.writeTable(entityTable, entityRows); err != nil {
		return nil, err
	}
	if err := e.writeTable(membershipTable, membershipRows); err != nil {
		return nil, err
	}
	return []frictionless.Table{entityTable, membershipTable}, nil
}

func (e *TSVEmitter) writeTable(table frictionless.Table, rows [][]string) error {
	path := filepath.Join(e.Directory, table.FileName)
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := csv.NewWriter(file)
	writer.Comma = '\t'
	if err = writer.Write(table.Columns); err != nil {
		return err
	}
	if err = writer.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	e.Written = append(e.Written, path)
	return file.Close()
}

type columnOrder struct {
	Shown []string `json:"shown"`
}

// the platform's default column ordering per entity kind
type columnDefaults struct {
	Participant columnOrder `json:"participant"`
	Sample      columnOrder `json:"sample"`
	Pair        columnOrder `json:"pair"`
}

func shown(columns []string) columnOrder {
	order := columnOrder{Shown: make([]string, len(columns))}
	for i, column := range columns {
		order.Shown[i] = strings.TrimPrefix(column, "entity:")
	}
	return order
}

// writes the single header/value row pair of workspace attributes
func (e *TSVEmitter) writeWorkspaceAttributes(legacy bool) (frictionless.Table, error) {
	defaults, err := json.Marshal(columnDefaults{
		Participant: shown(participantColumns),
		Sample:      shown(sampleColumns),
		Pair:        shown(pairColumns),
	})
	if err != nil {
		return frictionless.Table{}, err
	}
	table := frictionless.Table{
		Name:        "workspace-attributes",
		FileName:    e.Prefix + "_workspace_attributes.txt",
		Columns:     []string{"workspace:legacy_flag", "workspace-column-defaults"},
		Description: "workspace attributes",
	}
	path := filepath.Join(e.Directory, table.FileName)
	content := fmt.Sprintf("%s\n%t\t%s\n", strings.Join(table.Columns, "\t"), legacy, defaults)
	if err = os.WriteFile(path, []byte(content), 0644); err != nil {
		return frictionless.Table{}, err
	}
	e.Written = append(e.Written, path)
	return table, nil
}

var invalidPackageNameCharacters = regexp.MustCompile(`[^-a-z0-9._/]+`)

// data package names are restricted to lower-case letters, digits and -._/
func packageName(prefix string) string {
	name := invalidPackageNameCharacters.ReplaceAllString(strings.ToLower(prefix), "-")
	if name == "" {
		name = "load-files"
	}
	return name
}
