package model

import (
	"math"
	"testing"

	"github.com/milovec/pdftext/common"
	"github.com/milovec/pdftext/core"
)

func init() {
	common.SetLogger(common.DummyLogger{})
}

func TestType2FunctionExponential(t *testing.T) {
	rawText := `
10 0 obj
<<
	/FunctionType 2
	/Domain [ 0.0 1.0 ]
	/C0 [ 0.1 0.2 ]
	/C1 [ 0.9 0.8 ]
	/N 1.0
>>
endobj
`
	parser := core.NewParserFromString(rawText)
	obj, err := parser.ParseIndirectObject()
	if err != nil {
		t.Fatalf("Failed to parse indirect obj (%s)", err)
	}

	fun, err := newPdfFunctionFromPdfObject(obj)
	if err != nil {
		t.Fatalf("Failed: %v", err)
	}

	out, err := fun.Evaluate([]float64{0.5})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	expected := []float64{0.5, 0.5}
	for i := range expected {
		if math.Abs(out[i]-expected[i]) > 1e-9 {
			t.Errorf("component %d: got %v, want %v", i, out[i], expected[i])
		}
	}
}

func TestType0FunctionDefaultEncode(t *testing.T) {
	rawText := `
10 0 obj
<<
	/FunctionType 0
	/Domain [ 0.0 1.0 0.0 1.0 ]
	/Range [ 0.0 1.0 ]
	/Size [ 4 4 ]
	/BitsPerSample 8
	/Length 16
>>
stream
0123456789012345endstream
endobj
`
	parser := core.NewParserFromString(rawText)
	obj, err := parser.ParseIndirectObject()
	if err != nil {
		t.Fatalf("Failed to parse indirect obj (%s)", err)
	}

	fun, err := newPdfFunctionFromPdfObject(obj)
	if err != nil {
		t.Fatalf("Failed: %v", err)
	}

	f0, ok := fun.(*PdfFunctionType0)
	if !ok {
		t.Fatalf("expected *PdfFunctionType0, got %T", fun)
	}

	// With no Encode entry, the default is [0, Size[i]-1] for each dimension.
	expected := []float64{0, 3, 0, 3}
	if len(f0.Encode) != len(expected) {
		t.Fatalf("Encode length = %d, want %d", len(f0.Encode), len(expected))
	}
	for i := range expected {
		if f0.Encode[i] != expected[i] {
			t.Errorf("Encode[%d] = %v, want %v", i, f0.Encode[i], expected[i])
		}
	}
}

func TestUnsupportedFunctionTypePanics(t *testing.T) {
	rawText := `
10 0 obj
<<
	/FunctionType 4
	/Domain [ -1.0 1.0 -1.0 1.0]
	/Range [ -1.0 1.0 ]
	/Length 10
>>
stream
360 mul endstream
endobj
`
	parser := core.NewParserFromString(rawText)
	obj, err := parser.ParseIndirectObject()
	if err != nil {
		t.Fatalf("Failed to parse indirect obj (%s)", err)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic constructing a type 4 function")
		}
	}()

	_, _ = newPdfFunctionFromPdfObject(obj)
}

func TestInterpolateKnownBrokenStub(t *testing.T) {
	// Preserves the source behavior: dividing by (x-xMin) rather than
	// (xMax-xMin) means the result is yMax whenever x != xMin.
	got := interpolate(0.5, 0, 1, 0, 10)
	if math.Abs(got-10) > 1e-9 {
		t.Errorf("interpolate(0.5,0,1,0,10) = %v, want 10 (known-broken behavior)", got)
	}
	if got := interpolate(0, 0, 1, 3, 10); got != 3 {
		t.Errorf("interpolate(0,0,1,3,10) = %v, want 3 (x==xMin short-circuit)", got)
	}
}
