/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/milovec/pdftext/common"
	"github.com/milovec/pdftext/core"
)

// PdfFunction interface represents the common methods of a tint-transform function in PDF.
// Construction resolves a function dictionary/stream into one of the supported
// variants; Evaluate is part of the interface contract but is never invoked by
// the text-extraction path, which only records colorspace/function identity.
type PdfFunction interface {
	Evaluate([]float64) ([]float64, error)
}

// newPdfFunctionFromPdfObject loads a PdfFunction from a PdfObject (stream or
// dictionary, possibly indirect). Only FunctionType 0 (sampled) and 2
// (exponential interpolation) are supported; types 3 (stitching) and 4
// (PostScript calculator) are outside the supported subset and panic, since a
// text-extraction path never has a legitimate reason to evaluate either.
func newPdfFunctionFromPdfObject(obj core.PdfObject) (PdfFunction, error) {
	obj = core.ResolveReference(obj)

	var dict *core.PdfObjectDictionary
	stream, isStream := obj.(*core.PdfObjectStream)
	if isStream {
		dict = stream.PdfObjectDictionary
	} else if d, ok := core.TraceToDirectObject(obj).(*core.PdfObjectDictionary); ok {
		dict = d
	} else {
		common.Log.Debug("Function Type error: %#v", obj)
		return nil, errors.New("type error")
	}

	ftype, ok := core.GetInt(dict.Get("FunctionType"))
	if !ok {
		common.Log.Error("FunctionType number missing")
		return nil, errors.New("invalid parameter or missing")
	}

	switch *ftype {
	case 0:
		if !isStream {
			return nil, errors.New("type 0 function must be a stream")
		}
		return newPdfFunctionType0FromStream(stream)
	case 2:
		return newPdfFunctionType2FromPdfObject(dict)
	case 3, 4:
		panic(fmt.Sprintf("unsupported function type %d", *ftype))
	default:
		return nil, errors.New("invalid function type")
	}
}

// interpolate implements the PDF-manual linear interpolation formula used to
// map a function's Encode/Decode ranges. Preserved verbatim including its
// divide-by-(x-x_min) quirk: this is NOT the standard linear-interpolation
// formula (which divides by x_max-x_min) and is effectively a no-op that
// returns y_max whenever x != x_min. Unused by the text-extraction path; kept
// as a faithful, known-broken stub rather than "fixed" to the textbook formula.
func interpolate(x, xMin, xMax, yMin, yMax float64) float64 {
	divisor := x - xMin
	if divisor != 0 {
		return yMin + (x-xMin)*((yMax-yMin)/divisor)
	}
	return yMin
}

// PdfFunctionType0 uses a sequence of sample values (contained in a stream) to
// provide an approximation for functions whose domains and ranges are bounded.
type PdfFunctionType0 struct {
	Domain []float64 // required; 2*m length, m = number of input values
	Range  []float64 // required; 2*n length, n = number of output values

	Size          []int
	BitsPerSample int
	Encode        []float64
	Decode        []float64

	Contents []byte
}

func newPdfFunctionType0FromStream(stream *core.PdfObjectStream) (*PdfFunctionType0, error) {
	fun := &PdfFunctionType0{}
	dict := stream.PdfObjectDictionary

	domainArr, has := core.TraceToDirectObject(dict.Get("Domain")).(*core.PdfObjectArray)
	if !has || domainArr.Len()%2 != 0 {
		return nil, errors.New("Domain missing or invalid")
	}
	domain, err := domainArr.ToFloat64Array()
	if err != nil {
		return nil, err
	}
	fun.Domain = domain
	numInputs := domainArr.Len() / 2

	rangeArr, has := core.TraceToDirectObject(dict.Get("Range")).(*core.PdfObjectArray)
	if !has || rangeArr.Len()%2 != 0 {
		return nil, errors.New("Range missing or invalid")
	}
	rang, err := rangeArr.ToFloat64Array()
	if err != nil {
		return nil, err
	}
	fun.Range = rang

	sizeArr, has := core.TraceToDirectObject(dict.Get("Size")).(*core.PdfObjectArray)
	if !has {
		return nil, errors.New("Size missing")
	}
	sizeInts, err := sizeArr.ToIntegerArray()
	if err != nil {
		return nil, err
	}
	fun.Size = sizeInts

	bps, ok := core.GetInt(dict.Get("BitsPerSample"))
	if !ok {
		return nil, errors.New("BitsPerSample missing")
	}
	fun.BitsPerSample = int(*bps)

	if encArr, has := core.TraceToDirectObject(dict.Get("Encode")).(*core.PdfObjectArray); has {
		enc, err := encArr.ToFloat64Array()
		if err != nil {
			return nil, err
		}
		fun.Encode = enc
	} else {
		// Default: pairs [0, Size[i]-1] for each dimension.
		fun.Encode = make([]float64, 0, 2*numInputs)
		for i := 0; i < numInputs && i < len(fun.Size); i++ {
			fun.Encode = append(fun.Encode, 0, float64(fun.Size[i]-1))
		}
	}

	if decArr, has := core.TraceToDirectObject(dict.Get("Decode")).(*core.PdfObjectArray); has {
		dec, err := decArr.ToFloat64Array()
		if err != nil {
			return nil, err
		}
		fun.Decode = dec
	} else {
		fun.Decode = fun.Range
	}

	data, err := core.DecodeStream(stream)
	if err != nil {
		return nil, err
	}
	fun.Contents = data

	return fun, nil
}

// Evaluate is part of the PdfFunction contract but is not implemented: sampled
// function evaluation is never exercised on the text-extraction path, which
// only records colorspace/tint-transform identity.
func (f *PdfFunctionType0) Evaluate(x []float64) ([]float64, error) {
	return nil, errors.New("PdfFunctionType0.Evaluate not implemented")
}

// PdfFunctionType2 is an exponential interpolation function:
// f(x) = C0 + x^N * (C1 - C0).
type PdfFunctionType2 struct {
	Domain []float64
	Range  []float64

	C0 []float64
	C1 []float64
	N  float64
}

func newPdfFunctionType2FromPdfObject(dict *core.PdfObjectDictionary) (*PdfFunctionType2, error) {
	fun := &PdfFunctionType2{}

	domainArr, has := core.TraceToDirectObject(dict.Get("Domain")).(*core.PdfObjectArray)
	if !has || domainArr.Len()%2 != 0 {
		return nil, errors.New("Domain missing or invalid")
	}
	domain, err := domainArr.ToFloat64Array()
	if err != nil {
		return nil, err
	}
	fun.Domain = domain

	if rangeArr, has := core.TraceToDirectObject(dict.Get("Range")).(*core.PdfObjectArray); has {
		if rangeArr.Len()%2 != 0 {
			return nil, errors.New("invalid range")
		}
		rang, err := rangeArr.ToFloat64Array()
		if err != nil {
			return nil, err
		}
		fun.Range = rang
	}

	if c0Arr, has := core.TraceToDirectObject(dict.Get("C0")).(*core.PdfObjectArray); has {
		c0, err := c0Arr.ToFloat64Array()
		if err != nil {
			return nil, err
		}
		fun.C0 = c0
	} else {
		fun.C0 = []float64{0}
	}

	if c1Arr, has := core.TraceToDirectObject(dict.Get("C1")).(*core.PdfObjectArray); has {
		c1, err := c1Arr.ToFloat64Array()
		if err != nil {
			return nil, err
		}
		fun.C1 = c1
	} else {
		fun.C1 = []float64{1}
	}

	if len(fun.C0) != len(fun.C1) {
		common.Log.Error("C0 and C1 not matching")
		return nil, core.ErrRangeError
	}

	n, err := core.GetNumberAsFloat(core.TraceToDirectObject(dict.Get("N")))
	if err != nil {
		common.Log.Error("N missing or invalid, dict: %s", dict.String())
		return nil, err
	}
	fun.N = n

	return fun, nil
}

// Evaluate computes f(x) = C0 + x^N * (C1 - C0), component-wise.
func (f *PdfFunctionType2) Evaluate(x []float64) ([]float64, error) {
	if len(x) != 1 {
		return nil, errors.New("type 2 function takes a single input value")
	}
	xn := math.Pow(x[0], f.N)

	out := make([]float64, len(f.C0))
	for i := range f.C0 {
		out[i] = f.C0[i] + xn*(f.C1[i]-f.C0[i])
	}
	return out, nil
}
