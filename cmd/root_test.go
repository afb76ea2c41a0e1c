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

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbase/gdcloadfiles/config"
	"github.com/kbase/gdcloadfiles/gdc"
	"github.com/kbase/gdcloadfiles/gdctest"
)

const (
	clinicalId = "0c3e5b9a-6d8e-4c59-9f0b-9f3b1a2c4d5e"
	caseId     = "4f2a8b1c-3d5e-4a6b-8c7d-9e0f1a2b3c4d"
)

func testService() *gdctest.Service {
	svc := gdctest.NewService()
	svc.AddFile(gdc.FileRecord{
		FileId:       clinicalId,
		FileName:     "clinical.xml",
		DataCategory: "Clinical",
		DataType:     "Clinical Supplement",
		Access:       gdc.AccessOpen,
		Cases: []gdc.Case{{
			CaseId:      caseId,
			SubmitterId: "TCGA-AA-0001",
			Project: gdc.Project{
				ProjectId: "TCGA-COAD",
				Program:   gdc.Program{Name: "TCGA"},
			},
		}},
	})
	return svc
}

// writes a manifest and a configuration pointing at the given server root,
// returning their paths; gdcExtra is appended to the gdc section
func writeInputs(t *testing.T, root, gdcExtra string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "gdc_manifest.txt")
	require.Nil(t, os.WriteFile(manifestPath, []byte(
		"id\tfilename\tmd5\tsize\tstate\n"+
			clinicalId+"\tclinical.xml\t0123\t42\treleased\n"), 0644))
	configPath := filepath.Join(dir, "config.yaml")
	require.Nil(t, os.WriteFile(configPath, []byte(fmt.Sprintf(`gdc:
  roots:
    current: %s
    legacy: %s
%sretry:
  attempts: 2
  backoff: 1
  max_backoff: 2
logging:
  level: warn
`, root, root, gdcExtra)), 0644))
	return manifestPath, configPath
}

func execute(args ...string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestRunWritesLoadFiles(t *testing.T) {
	assert := assert.New(t)
	server := gdctest.NewServer(testService(), "")
	defer server.Close()
	manifestPath, configPath := writeInputs(t, server.URL, "")
	output := t.TempDir()
	metricsPath := filepath.Join(t.TempDir(), "gdcloadfiles.prom")

	err := execute("--config", configPath, "-o", output, "--metrics-file", metricsPath, manifestPath)
	require.Nil(t, err)

	participants, err := os.ReadFile(filepath.Join(output, "gdc_manifest_participants.txt"))
	require.Nil(t, err)
	assert.Contains(string(participants), caseId+"\tTCGA-AA-0001\tTCGA-COAD")
	assert.Contains(string(participants), server.URL+"/data/"+clinicalId)
	assert.FileExists(filepath.Join(output, "gdc_manifest_participant_sets_membership.txt"))
	assert.FileExists(filepath.Join(output, "gdc_manifest_workspace_attributes.txt"))
	assert.FileExists(filepath.Join(output, "gdc_manifest_datapackage.json"))

	exposition, err := os.ReadFile(metricsPath)
	require.Nil(t, err)
	assert.Contains(string(exposition), `gdcloadfiles_files_total{outcome="attributed"} 1`)
}

func TestRunWithoutDataPackage(t *testing.T) {
	server := gdctest.NewServer(testService(), "")
	defer server.Close()
	manifestPath, configPath := writeInputs(t, server.URL, "")
	output := t.TempDir()

	err := execute("--config", configPath, "-o", output, "--datapackage=false", manifestPath)
	require.Nil(t, err)
	assert.FileExists(t, filepath.Join(output, "gdc_manifest_participants.txt"))
	assert.NoFileExists(t, filepath.Join(output, "gdc_manifest_datapackage.json"))
}

func TestRunWithEncryptedToken(t *testing.T) {
	server := gdctest.NewServer(testService(), "secret-token")
	defer server.Close()

	var key fernet.Key
	require.Nil(t, key.Generate())
	sealed, err := fernet.EncryptAndSign([]byte("secret-token"), &key)
	require.Nil(t, err)
	tokenPath := filepath.Join(t.TempDir(), "token")
	require.Nil(t, os.WriteFile(tokenPath, sealed, 0600))
	t.Setenv("GDCLOAD_TOKEN_KEY", key.Encode())

	manifestPath, configPath := writeInputs(t, server.URL,
		fmt.Sprintf("  token_file: %s\n", tokenPath))
	output := t.TempDir()

	err = execute("--config", configPath, "-o", output, manifestPath)
	require.Nil(t, err)
	assert.FileExists(t, filepath.Join(output, "gdc_manifest_participants.txt"))
}

func TestFlagsAndEnvironmentOverrideConfig(t *testing.T) {
	assert := assert.New(t)
	server := gdctest.NewServer(testService(), "")
	defer server.Close()
	manifestPath, configPath := writeInputs(t, server.URL, "")
	output := t.TempDir()
	t.Setenv("GDCLOAD_ALL_CASES", "true")

	err := execute("--config", configPath, "--legacy", "--output", output,
		"--log-level", "error", manifestPath)
	require.Nil(t, err)
	assert.Equal("legacy", config.GDC.API)
	assert.True(config.Output.AllCases)
	assert.Equal(output, config.Output.Directory)
	assert.Equal("error", config.Logging.Level)
}

func TestLegacyFalseSelectsCurrentAPI(t *testing.T) {
	server := gdctest.NewServer(testService(), "")
	defer server.Close()
	manifestPath, configPath := writeInputs(t, server.URL, "  api: legacy\n")

	err := execute("--config", configPath, "-o", t.TempDir(), "--legacy=false", manifestPath)
	require.Nil(t, err)
	assert.Equal(t, "current", config.GDC.API)

	t.Setenv("GDCLOAD_LEGACY", "false")
	err = execute("--config", configPath, "-o", t.TempDir(), manifestPath)
	require.Nil(t, err)
	assert.Equal(t, "current", config.GDC.API)
}

func TestRunRejectsBadInput(t *testing.T) {
	server := gdctest.NewServer(testService(), "")
	defer server.Close()
	manifestPath, configPath := writeInputs(t, server.URL, "")

	assert.NotNil(t, execute("--config", configPath))
	assert.NotNil(t, execute("--config", configPath, "--log-level", "loud", manifestPath))
	assert.NotNil(t, execute("--config", filepath.Join(t.TempDir(), "missing.yaml"), manifestPath))
	assert.NotNil(t, execute("--config", configPath, filepath.Join(t.TempDir(), "missing.txt")))
}

func TestRunWithMetadataCache(t *testing.T) {
	svc := testService()
	server := gdctest.NewServer(svc, "")
	defer server.Close()
	manifestPath, configPath := writeInputs(t, server.URL, "")
	cachePath := filepath.Join(t.TempDir(), "metadata.db")

	for i := 0; i < 2; i++ {
		err := execute("--config", configPath, "-o", t.TempDir(), "--cache", cachePath, manifestPath)
		require.Nil(t, err)
	}
	assert.FileExists(t, cachePath)
	assert.Equal(t, 1, svc.Calls(clinicalId))
}
