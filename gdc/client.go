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
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Service is the key-value query interface the load-file builder needs from
// the metadata service: given an identifier and a list of dotted field paths,
// return the (nested) record.
type Service interface {
	// fetches the requested fields of the file with the given ID
	File(ctx context.Context, fileId string, fields []string) (FileRecord, error)
	// fetches the requested fields of the case with the given ID
	Case(ctx context.Context, caseId string, fields []string) (Case, error)
}

// Client talks to the metadata service over HTTPS
// (implements the Service interface)
type Client struct {
	// HTTP client with per-request timeout
	Client *http.Client
	// root URL of the service, e.g. https://api.gdc.cancer.gov
	Root string
	// optional authorization token for controlled-access metadata
	Token string
}

// NewClient creates a client for the given API root with the given
// per-request timeout.
func NewClient(root string, timeout time.Duration) *Client {
	return &Client{
		Client: SecureHttpClient(timeout),
		Root:   strings.TrimSuffix(root, "/"),
	}
}

func (c *Client) File(ctx context.Context, fileId string, fields []string) (FileRecord, error) {
	var record FileRecord
	if err := ValidateId(fileId); err != nil {
		return record, err
	}
	err := c.getRecord(ctx, "files", fileId, fields, &record)
	if err == nil && record.FileId == "" {
		record.FileId = fileId
	}
	return record, err
}

func (c *Client) Case(ctx context.Context, caseId string, fields []string) (Case, error) {
	var record Case
	if err := ValidateId(caseId); err != nil {
		return record, err
	}
	err := c.getRecord(ctx, "cases", caseId, fields, &record)
	if err == nil && record.CaseId == "" {
		record.CaseId = caseId
	}
	return record, err
}

//====================
// Internal machinery
//====================

const serviceName = "gdc"

// every response wraps its record in an envelope
type envelope struct {
	Data     json.RawMessage `json:"data"`
	Warnings map[string]any  `json:"warnings,omitempty"`
}

// fetches /{endpoint}/{id}?fields=... and decodes the enveloped record
func (c *Client) getRecord(ctx context.Context, endpoint, id string, fields []string, record any) error {
	values := url.Values{}
	if len(fields) > 0 {
		values.Set("fields", strings.Join(fields, ","))
	}
	body, err := c.get(ctx, fmt.Sprintf("%s/%s", endpoint, id), values)
	if err != nil {
		return err
	}
	var env envelope
	if err = json.Unmarshal(body, &env); err != nil {
		return err
	}
	if len(env.Warnings) > 0 {
		slog.Debug(fmt.Sprintf("metadata service warnings for %s: %v", id, env.Warnings))
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &ResourceNotFoundError{Service: serviceName, ResourceId: id}
	}
	return json.Unmarshal(env.Data, record)
}

// performs a GET request on the given resource, returning the resulting
// response body and/or error
func (c *Client) get(ctx context.Context, resource string, values url.Values) ([]byte, error) {
	res, err := url.Parse(c.Root)
	if err != nil {
		return nil, err
	}
	res.Path = strings.TrimSuffix(res.Path, "/") + "/" + resource
	res.RawQuery = values.Encode()
	slog.Debug(fmt.Sprintf("GET: %s", res.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, res.String(), http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("X-Auth-Token", c.Token)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case 200:
		return io.ReadAll(resp.Body)
	case 404:
		return nil, &ResourceNotFoundError{
			Service:    serviceName,
			ResourceId: resource,
		}
	case 503:
		return nil, &UnavailableError{
			Service: serviceName,
		}
	default:
		data, _ := io.ReadAll(resp.Body)
		return nil, &RequestError{
			Service:  serviceName,
			Resource: resource,
			Status:   resp.StatusCode,
			Message:  strings.TrimSpace(string(data)),
		}
	}
}
