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

package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataResolver(t *testing.T) {
	r := DataResolver{Root: "https://api.gdc.cancer.gov/"}
	assert.Equal(t, "https://api.gdc.cancer.gov/data/abc", r.Resolve("abc"))
	assert.Equal(t, Unresolved, r.Resolve(""))
}

func TestTableResolver(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	table := filepath.Join(dir, "urls.tsv")
	require.Nil(t, os.WriteFile(table, []byte(
		"# id\turl\n"+
			"id-1\tgs://bucket/one.bam\n"+
			"id-2\tgs://bucket/two.bam\n"), 0644))
	cache := filepath.Join(dir, "cache.db")

	r, err := NewTableResolver(table, cache)
	require.Nil(t, err)
	assert.Equal("gs://bucket/one.bam", r.Resolve("id-1"))
	assert.Equal("gs://bucket/two.bam", r.Resolve("id-2"))
	assert.Equal(Unresolved, r.Resolve("id-3"))
	require.Nil(t, r.Close())

	// the cache survives without the table
	r, err = NewTableResolver("", cache)
	require.Nil(t, err)
	defer r.Close()
	assert.Equal("gs://bucket/two.bam", r.Resolve("id-2"))
}

func TestTableResolverRejectsShortRows(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "urls.tsv")
	require.Nil(t, os.WriteFile(table, []byte("id-1\n"), 0644))
	_, err := NewTableResolver(table, filepath.Join(dir, "cache.db"))
	assert.NotNil(t, err)
}

func TestTableResolverMissingTable(t *testing.T) {
	dir := t.TempDir()
	_, err := NewTableResolver(filepath.Join(dir, "nope.tsv"), filepath.Join(dir, "cache.db"))
	assert.NotNil(t, err)
}
