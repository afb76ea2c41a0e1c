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
	"github.com/kbase/gdcloadfiles/gdc"
)

// membership set prefixes by access level
const (
	OpenAccessPrefix       = "OA__"
	ControlledAccessPrefix = "CA__"
)

// AccessTable records the single access level of each attribute base name
// seen during a run. The first file stored under a name fixes its level.
type AccessTable struct {
	levels map[string]string
}

func NewAccessTable() *AccessTable {
	return &AccessTable{levels: make(map[string]string)}
}

// Record associates the access level with the attribute name, returning an
// AccessLevelError if the name already has a different level.
func (t *AccessTable) Record(attribute, access string) error {
	if recorded, found := t.levels[attribute]; found {
		if recorded != access {
			return &AccessLevelError{
				Attribute: attribute,
				Recorded:  recorded,
				Requested: access,
			}
		}
		return nil
	}
	t.levels[attribute] = access
	return nil
}

// Level returns the recorded access level of the attribute name, or "".
func (t *AccessTable) Level(attribute string) string {
	return t.levels[attribute]
}

// Prefix returns the membership set prefix for the attribute name.
func (t *AccessTable) Prefix(attribute string) string {
	if t.levels[attribute] == gdc.AccessControlled {
		return ControlledAccessPrefix
	}
	return OpenAccessPrefix
}
