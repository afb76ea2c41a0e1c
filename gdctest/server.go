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

package gdctest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gorilla/mux"

	"github.com/kbase/gdcloadfiles/gdc"
)

// NewServer starts an HTTP server that answers the files and cases endpoints
// of the metadata API from the given in-memory service, wrapping records in
// the service's response envelope. If token is non-empty, requests lacking a
// matching X-Auth-Token header are refused with 403. Queued failures of type
// *gdc.UnavailableError are served as 503.
func NewServer(svc *Service, token string) *httptest.Server {
	router := mux.NewRouter()
	router.HandleFunc("/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		record, err := svc.File(r.Context(), mux.Vars(r)["id"], nil)
		respond(w, record, err)
	}).Methods(http.MethodGet)
	router.HandleFunc("/cases/{id}", func(w http.ResponseWriter, r *http.Request) {
		record, err := svc.Case(r.Context(), mux.Vars(r)["id"], nil)
		respond(w, record, err)
	}).Methods(http.MethodGet)
	if token != "" {
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("X-Auth-Token") != token {
					http.Error(w, "invalid token", http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
			})
		})
	}
	return httptest.NewServer(router)
}

func respond(w http.ResponseWriter, record any, err error) {
	if err != nil {
		var notFound *gdc.ResourceNotFoundError
		var unavailable *gdc.UnavailableError
		switch {
		case errors.As(err, &notFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.As(err, &unavailable):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"data":     record,
		"warnings": map[string]any{},
	})
}
