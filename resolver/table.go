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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// TableResolver looks URLs up in a sqlite table populated from a two-column
// (id, url) tab-delimited file. The table persists between runs, so a cache
// loaded once can be reused without the file.
type TableResolver struct {
	conn *sqlite.Conn
}

// NewTableResolver opens (creating if needed) the sqlite cache at cachePath
// and, if tablePath is non-empty, loads the file's rows into it, replacing
// any cached URLs for the same ids.
func NewTableResolver(tablePath, cachePath string) (*TableResolver, error) {
	conn, err := sqlite.OpenConn(cachePath, sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("Couldn't open resolver cache %s: %w", cachePath, err)
	}
	err = sqlitex.ExecuteTransient(conn,
		`CREATE TABLE IF NOT EXISTS urls (id TEXT PRIMARY KEY, url TEXT NOT NULL);`, nil)
	if err != nil {
		conn.Close()
		return nil, err
	}
	r := &TableResolver{conn: conn}
	if tablePath != "" {
		if err = r.load(tablePath); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return r, nil
}

// loads the rows of the given file inside a single savepoint
func (r *TableResolver) load(tablePath string) (err error) {
	file, err := os.Open(tablePath)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	defer sqlitex.Save(r.conn)(&err)
	numRows := 0
	for {
		record, rerr := reader.Read()
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return fmt.Errorf("Couldn't read URL table %s: %w", tablePath, rerr)
		}
		if len(record) < 2 {
			return fmt.Errorf("URL table %s: line %d has %d column(s), need 2", tablePath, numRows+1, len(record))
		}
		id, url := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
		err = sqlitex.Execute(r.conn, `INSERT OR REPLACE INTO urls (id, url) VALUES (?, ?);`,
			&sqlitex.ExecOptions{Args: []any{id, url}})
		if err != nil {
			return err
		}
		numRows++
	}
	slog.Debug(fmt.Sprintf("loaded %d URLs from %s", numRows, tablePath))
	return nil
}

func (r *TableResolver) Resolve(fileId string) string {
	url := Unresolved
	err := sqlitex.Execute(r.conn, `SELECT url FROM urls WHERE id = ?;`, &sqlitex.ExecOptions{
		Args: []any{fileId},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			url = stmt.ColumnText(0)
			return nil
		},
	})
	if err != nil {
		slog.Warn(fmt.Sprintf("Couldn't resolve URL for %s: %s", fileId, err.Error()))
		return Unresolved
	}
	return url
}

// Close closes the cache.
func (r *TableResolver) Close() error {
	return r.conn.Close()
}
