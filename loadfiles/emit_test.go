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
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbase/gdcloadfiles/gdc"
)

// a result with two cases, two samples and a pair, built without a service
func emitResult(t *testing.T) Result {
	t.Helper()
	reg := NewRegistry(nil, gdc.Current)
	access := NewAccessTable()
	reg.Cases["c2"] = &Case{Id: "c2", SubmitterId: "TCGA-02", ProjectId: "TCGA-TEST",
		PrimarySite: "Colon", Files: Files{}}
	reg.Cases["c1"] = &Case{Id: "c1", SubmitterId: "TCGA-01", ProjectId: "TCGA-TEST",
		PrimarySite: "Colon", Files: Files{
			"clinical_supplement": {FileId: "f1", FileName: "f1.xml", URL: "https://gdc.test/data/f1"},
		}}
	reg.Samples["s-t"] = &Sample{Id: "s-t", CaseId: "c1", SubmitterId: "TCGA-01-01A",
		SampleTypeCode: str("01"), Files: Files{}}
	reg.Samples["s-n"] = &Sample{Id: "s-n", CaseId: "c1", SubmitterId: "TCGA-01-10A",
		SampleTypeCode: str("10"), Files: Files{}}
	reg.Pairs["s-t_s-n"] = &Pair{Id: "s-t_s-n", CaseId: "c1", TumorId: "s-t", NormalId: "s-n",
		Files: Files{"maf": {FileId: "f2", FileName: "f2.maf", URL: Absent}}}
	require.Nil(t, access.Record("clinical_supplement", gdc.AccessOpen))
	require.Nil(t, access.Record("maf", gdc.AccessControlled))
	return Result{Registry: reg, Access: access}
}

func TestEmitParticipants(t *testing.T) {
	assert := assert.New(t)
	emitter := &TSVEmitter{Directory: t.TempDir(), Prefix: "cohort"}
	require.Nil(t, emitter.Emit(emitResult(t)))

	rows := readTable(t, filepath.Join(emitter.Directory, "cohort_participants.txt"))
	assert.Equal([][]string{
		{"entity:participant_id", "submitter_id", "project_id", "primary_site",
			"clinical_supplement__uuid_and_filename", "clinical_supplement__gdc_url"},
		{"c1", "TCGA-01", "TCGA-TEST", "Colon", "f1/f1.xml", "https://gdc.test/data/f1"},
		{"c2", "TCGA-02", "TCGA-TEST", "Colon", Absent, Absent},
	}, rows)

	membership := readTable(t, filepath.Join(emitter.Directory, "cohort_participant_sets_membership.txt"))
	assert.Equal([][]string{
		{"membership:participant_set_id", "participant_id"},
		{"OA__clinical_supplement", "c1"},
		{"ALL", "c1"},
		{"ALL", "c2"},
	}, membership)
}

func TestEmitSamplesAndPairs(t *testing.T) {
	assert := assert.New(t)
	emitter := &TSVEmitter{Directory: t.TempDir(), Prefix: "cohort"}
	require.Nil(t, emitter.Emit(emitResult(t)))

	samples := readTable(t, filepath.Join(emitter.Directory, "cohort_samples.txt"))
	assert.Equal([][]string{
		{"entity:sample_id", "participant_id", "submitter_id", "sample_type"},
		{"s-n", "c1", "TCGA-01-10A", "NB"},
		{"s-t", "c1", "TCGA-01-01A", "TP"},
	}, samples)

	pairs := readTable(t, filepath.Join(emitter.Directory, "cohort_pairs.txt"))
	assert.Equal([][]string{
		{"entity:pair_id", "participant_id", "case_sample_id", "control_sample_id",
			"tumor_submitter_id", "normal_submitter_id", "tumor_type", "normal_type",
			"maf__uuid_and_filename", "maf__gdc_url"},
		{"s-t_s-n", "c1", "s-t", "s-n", "TCGA-01-01A", "TCGA-01-10A", "TP", "NB", "f2/f2.maf", Absent},
	}, pairs)

	membership := readTable(t, filepath.Join(emitter.Directory, "cohort_pair_sets_membership.txt"))
	assert.Equal([][]string{
		{"membership:pair_set_id", "pair_id"},
		{"CA__maf", "s-t_s-n"},
		{"ALL", "s-t_s-n"},
	}, membership)
}

func TestEmitOmitsEmptySamplesAndPairs(t *testing.T) {
	result := emitResult(t)
	result.Registry.Samples = map[string]*Sample{}
	result.Registry.Pairs = map[string]*Pair{}
	emitter := &TSVEmitter{Directory: t.TempDir(), Prefix: "cohort"}
	require.Nil(t, emitter.Emit(result))

	assert.NoFileExists(t, filepath.Join(emitter.Directory, "cohort_samples.txt"))
	assert.NoFileExists(t, filepath.Join(emitter.Directory, "cohort_pairs.txt"))
	assert.Len(t, emitter.Written, 3)
}

func TestEmitWorkspaceAttributes(t *testing.T) {
	assert := assert.New(t)
	result := emitResult(t)
	result.Legacy = true
	emitter := &TSVEmitter{Directory: t.TempDir(), Prefix: "cohort"}
	require.Nil(t, emitter.Emit(result))

	data, err := os.ReadFile(filepath.Join(emitter.Directory, "cohort_workspace_attributes.txt"))
	require.Nil(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal("workspace:legacy_flag\tworkspace-column-defaults", lines[0])
	values := strings.SplitN(lines[1], "\t", 2)
	assert.Equal("true", values[0])

	var defaults map[string]map[string][]string
	require.Nil(t, json.Unmarshal([]byte(values[1]), &defaults))
	assert.Equal([]string{"participant_id", "submitter_id", "project_id", "primary_site"},
		defaults["participant"]["shown"])
	assert.Equal("sample_id", defaults["sample"]["shown"][0])
	assert.Equal("pair_id", defaults["pair"]["shown"][0])
}

func TestEmitDataPackage(t *testing.T) {
	assert := assert.New(t)
	emitter := &TSVEmitter{Directory: t.TempDir(), Prefix: "My Cohort", DataPackage: true,
		Source: "/downloads/My Cohort.txt"}
	require.Nil(t, emitter.Emit(emitResult(t)))

	path := filepath.Join(emitter.Directory, "My Cohort_datapackage.json")
	assert.Contains(emitter.Written, path)
	data, err := os.ReadFile(path)
	require.Nil(t, err)

	var descriptor struct {
		Name    string `json:"name"`
		Sources []struct {
			Path string `json:"path"`
		} `json:"sources"`
		Resources []struct {
			Name  string `json:"name"`
			Path  string `json:"path"`
			Bytes int    `json:"bytes"`
		} `json:"resources"`
	}
	require.Nil(t, json.Unmarshal(data, &descriptor))
	assert.Equal("my-cohort", descriptor.Name)
	require.Len(t, descriptor.Sources, 1)
	assert.Equal("My Cohort.txt", descriptor.Sources[0].Path)
	names := make([]string, len(descriptor.Resources))
	for i, resource := range descriptor.Resources {
		names[i] = resource.Name
		info, err := os.Stat(filepath.Join(emitter.Directory, resource.Path))
		require.Nil(t, err)
		assert.Equal(int(info.Size()), resource.Bytes, resource.Path)
	}
	assert.Equal([]string{"participants", "participant-sets-membership", "samples",
		"sample-sets-membership", "pairs", "pair-sets-membership", "workspace-attributes"}, names)
}

func TestPackageName(t *testing.T) {
	assert.Equal(t, "tcga-coad", packageName("TCGA_COAD"))
	assert.Equal(t, "gdc-manifest.2024", packageName("gdc manifest.2024"))
	assert.Equal(t, "load-files", packageName(""))
}
