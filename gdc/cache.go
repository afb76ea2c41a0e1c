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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	filesBucket = []byte("files")
	casesBucket = []byte("cases")
)

// CachedService answers record requests from a bolt database on disk,
// falling back to (and filling it from) another Service. Records are keyed by
// identifier and requested fields, so entries written for one API version are
// never returned for another. Failures are never cached.
type CachedService struct {
	Service Service
	path    string
	db      *bolt.DB
}

// NewCachedService opens (creating if needed) the cache database at path.
func NewCachedService(service Service, path string) (*CachedService, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, &CacheError{Path: path, Message: err.Error()}
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{filesBucket, casesBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, &CacheError{Path: path, Message: err.Error()}
	}
	return &CachedService{Service: service, path: path, db: db}, nil
}

func (s *CachedService) File(ctx context.Context, fileId string, fields []string) (FileRecord, error) {
	return cached(s, filesBucket, fileId, fields, func() (FileRecord, error) {
		return s.Service.File(ctx, fileId, fields)
	})
}

func (s *CachedService) Case(ctx context.Context, caseId string, fields []string) (Case, error) {
	return cached(s, casesBucket, caseId, fields, func() (Case, error) {
		return s.Service.Case(ctx, caseId, fields)
	})
}

// Close closes the cache database.
func (s *CachedService) Close() error {
	if err := s.db.Close(); err != nil {
		return &CacheError{Path: s.path, Message: err.Error()}
	}
	return nil
}

func cacheKey(id string, fields []string) []byte {
	return []byte(id + "?" + strings.Join(fields, ","))
}

// returns the cached record for the key, or fetches and stores it
func cached[T any](s *CachedService, bucket []byte, id string, fields []string,
	fetch func() (T, error)) (T, error) {
	key := cacheKey(id, fields)
	var record T
	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get(key); v != nil {
			// values are only valid for the life of the transaction
			data = append([]byte{}, v...)
		}
		return nil
	})
	if data != nil {
		if err := json.Unmarshal(data, &record); err == nil {
			slog.Debug(fmt.Sprintf("cache hit: %s/%s", bucket, id))
			return record, nil
		}
		slog.Warn(fmt.Sprintf("discarding unreadable cache entry for %s/%s", bucket, id))
	}

	record, err := fetch()
	if err != nil {
		return record, err
	}
	data, err = json.Marshal(record)
	if err == nil {
		err = s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucket).Put(key, data)
		})
	}
	if err != nil {
		slog.Warn(fmt.Sprintf("couldn't cache %s/%s: %s", bucket, id, err.Error()))
	}
	return record, nil
}
