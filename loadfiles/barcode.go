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
	"strconv"
	"strings"
)

// programs with known barcode layouts
const (
	ProgramTCGA   = "TCGA"
	ProgramTARGET = "TARGET"
)

// compares two specimen barcodes under the given program's rules, returning
// a positive number if a is preferred, a negative number if b is preferred,
// and 0 if they are identical. ok is false if the program has no rule.
func compareBarcodes(program, a, b string) (cmp int, ok bool) {
	switch program {
	case ProgramTCGA:
		return compareTCGABarcodes(a, b), true
	case ProgramTARGET:
		return compareTARGETBarcodes(a, b), true
	default:
		return 0, false
	}
}

// picks the preferred barcode among several
func preferredBarcode(program string, barcodes []string) string {
	best := ""
	for i, barcode := range barcodes {
		if i == 0 {
			best = barcode
			continue
		}
		if cmp, ok := compareBarcodes(program, barcode, best); ok && cmp > 0 {
			best = barcode
		} else if !ok && barcode > best {
			best = barcode
		}
	}
	return best
}

//------
// TCGA
//------

// TCGA aliquot barcodes look like TCGA-AA-0001-01A-11D-A000-01: the fifth
// token ends with the analyte code and the sixth is the plate.

var tcgaRNAAnalyteRanks = map[byte]int{'H': 3, 'R': 2, 'T': 1}

var tcgaDNAAnalytes = map[byte]bool{'D': true, 'G': true, 'W': true, 'X': true}

type tcgaBarcode struct {
	Analyte byte
	Plate   string
}

func parseTCGABarcode(barcode string) (tcgaBarcode, bool) {
	tokens := strings.Split(barcode, "-")
	if len(tokens) < 6 || tokens[4] == "" {
		return tcgaBarcode{}, false
	}
	return tcgaBarcode{
		Analyte: tokens[4][len(tokens[4])-1],
		Plate:   tokens[5],
	}, true
}

func compareTCGABarcodes(a, b string) int {
	if a == b {
		return 0
	}
	pa, okA := parseTCGABarcode(a)
	pb, okB := parseTCGABarcode(b)
	if okA && okB && pa.Analyte != pb.Analyte {
		rankA, rnaA := tcgaRNAAnalyteRanks[pa.Analyte]
		rankB, rnaB := tcgaRNAAnalyteRanks[pb.Analyte]
		if rnaA && rnaB {
			return rankA - rankB
		}
		if tcgaDNAAnalytes[pa.Analyte] && tcgaDNAAnalytes[pb.Analyte] {
			// D is preferred unless the other aliquot is on a later plate
			if pa.Analyte == 'D' {
				if pb.Plate > pa.Plate {
					return -1
				}
				return 1
			}
			if pb.Analyte == 'D' {
				if pa.Plate > pb.Plate {
					return 1
				}
				return -1
			}
		}
	}
	return strings.Compare(a, b)
}

//--------
// TARGET
//--------

// TARGET barcodes look like TARGET-20-PADZCG-04A-01D: the fifth token is the
// portion number followed by the analyte code.

var targetAnalyteRanks = map[byte]int{'D': 5, 'E': 4, 'X': 3, 'Y': 2, 'W': 1}

type targetBarcode struct {
	Analyte byte
	Portion int
}

func parseTARGETBarcode(barcode string) (targetBarcode, bool) {
	tokens := strings.Split(barcode, "-")
	if len(tokens) < 5 || len(tokens[4]) < 2 {
		return targetBarcode{}, false
	}
	token := tokens[4]
	portion, err := strconv.Atoi(token[:len(token)-1])
	if err != nil {
		return targetBarcode{}, false
	}
	return targetBarcode{
		Analyte: token[len(token)-1],
		Portion: portion,
	}, true
}

func compareTARGETBarcodes(a, b string) int {
	if a == b {
		return 0
	}
	pa, okA := parseTARGETBarcode(a)
	pb, okB := parseTARGETBarcode(b)
	if okA && okB {
		if rankA, rankB := targetAnalyteRanks[pa.Analyte], targetAnalyteRanks[pb.Analyte]; rankA != rankB {
			return rankA - rankB
		}
		if pa.Portion != pb.Portion {
			return pa.Portion - pb.Portion
		}
	}
	return strings.Compare(a, b)
}
