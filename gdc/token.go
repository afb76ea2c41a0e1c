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
	"bytes"
	"os"

	"github.com/fernet/fernet-go"
)

// ReadToken reads an access token for controlled-access metadata from the
// given file. If key is non-empty, the file holds a Fernet token encrypted
// with that (base64-encoded) key and is decrypted first.
func ReadToken(path, key string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &TokenError{Path: path, Message: err.Error()}
	}
	data = bytes.TrimSpace(data)
	if key != "" {
		k, err := fernet.DecodeKey(key)
		if err != nil {
			return "", &TokenError{Path: path, Message: "invalid decryption key"}
		}
		// no TTL: tokens are stored, not exchanged
		data = fernet.VerifyAndDecrypt(data, 0, []*fernet.Key{k})
		if data == nil {
			return "", &TokenError{Path: path, Message: "token could not be decrypted"}
		}
		data = bytes.TrimSpace(data)
	}
	if len(data) == 0 {
		return "", &TokenError{Path: path, Message: "file is empty"}
	}
	return string(data), nil
}
