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
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResource(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	require.Nil(t, os.WriteFile(filepath.Join(dir, "m_participants.txt"),
		[]byte("entity:participant_id\tsubmitter_id\nc1\tTCGA-AA-0001\n"), 0644))

	resource, err := NewResource(dir, Table{
		Name:     "participants",
		FileName: "m_participants.txt",
		Columns:  []string{"entity:participant_id", "submitter_id"},
	})
	require.Nil(t, err)
	assert.Equal(51, resource.Bytes)
	assert.Len(resource.Hash, 32)
	assert.Equal("\t", resource.Dialect.Delimiter)
	assert.Equal("submitter_id", resource.Schema.Fields[1].Name)

	_, err = NewResource(dir, Table{Name: "samples", FileName: "missing.txt"})
	assert.NotNil(err)
}

func TestWritePackage(t *testing.T) {
	dir := t.TempDir()
	require.Nil(t, os.WriteFile(filepath.Join(dir, "m_participants.txt"),
		[]byte("entity:participant_id\nc1\n"), 0644))
	require.Nil(t, os.WriteFile(filepath.Join(dir, "m_participant_sets_membership.txt"),
		[]byte("membership:participant_set_id\tparticipant_id\nALL\tc1\n"), 0644))

	pkg, err := WritePackage(dir, "m_datapackage.json", DataPackage{Name: "m-load-files"}, []Table{
		{Name: "participants", FileName: "m_participants.txt", Columns: []string{"entity:participant_id"}},
		{
			Name:     "participant-sets-membership",
			FileName: "m_participant_sets_membership.txt",
			Columns:  []string{"membership:participant_set_id", "participant_id"},
		},
	})
	require.Nil(t, err)
	assert.Len(t, pkg.Resources, 2)
	assert.Equal(t, "tabular-data-package", pkg.Profile)

	data, err := os.ReadFile(filepath.Join(dir, "m_datapackage.json"))
	require.Nil(t, err)
	var written map[string]any
	require.Nil(t, json.Unmarshal(data, &written))
	assert.Equal(t, "m-load-files", written["name"])
	assert.Len(t, written["resources"], 2)
}
