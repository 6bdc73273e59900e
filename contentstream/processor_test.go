/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package contentstream_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milovec/pdftext/contentstream"
	"github.com/milovec/pdftext/core"
	"github.com/milovec/pdftext/internal/transform"
	"github.com/milovec/pdftext/model"
)

// recordingHandler captures every event delivered by the processor, for assertions.
type recordingHandler struct {
	words      int
	lines      int
	characters []charEvent
	strokes    []contentstream.Path
	fills      []contentstream.Path
}

type charEvent struct {
	trm      transform.Matrix
	width    float64
	spacing  float64
	fontSize float64
	text     string
}

func (h *recordingHandler) BeginWord() { h.words++ }
func (h *recordingHandler) EndWord()   {}
func (h *recordingHandler) EndLine()   { h.lines++ }
func (h *recordingHandler) OutputCharacter(trm transform.Matrix, width, spacing, fontSize float64, text string) {
	h.characters = append(h.characters, charEvent{trm, width, spacing, fontSize, text})
}
func (h *recordingHandler) Stroke(_ transform.Matrix, _ model.PdfColorspace, _ []float64, path contentstream.Path) {
	h.strokes = append(h.strokes, path)
}
func (h *recordingHandler) Fill(_ transform.Matrix, _ model.PdfColorspace, _ []float64, path contentstream.Path) {
	h.fills = append(h.fills, path)
}

func mustParse(t *testing.T, content string) contentstream.ContentStreamOperations {
	parser := contentstream.NewContentStreamParser(content)
	ops, err := parser.Parse()
	require.NoError(t, err)
	return *ops
}

func courierResources(t *testing.T) *model.PdfPageResources {
	courier := core.MakeDict()
	courier.Set("Type", core.MakeName("Font"))
	courier.Set("Subtype", core.MakeName("Type1"))
	courier.Set("BaseFont", core.MakeName("Courier"))

	fontDict := core.MakeDict()
	fontDict.Set("F1", courier)

	resources := model.NewPdfPageResources()
	resources.Font = fontDict
	return resources
}

// TestTextMatrixTranslation exercises Td moving the text line matrix and verifies the
// rendering matrix delivered to OutputCharacter reflects the translation applied first, as
// required by the show-text algorithm (Trm = Tsm x Tm x CTM).
func TestTextMatrixTranslation(t *testing.T) {
	resources := courierResources(t)
	ops := mustParse(t, `BT /F1 12 Tf 10 20 Td (A) Tj ET`)

	proc := contentstream.NewContentStreamProcessor(ops)
	h := &recordingHandler{}
	proc.Output = h

	err := proc.Process(resources)
	require.NoError(t, err)

	require.Len(t, h.characters, 1)
	x, y := h.characters[0].trm.Transform(0, 0)
	require.InDelta(t, 10, x, 1e-9)
	require.InDelta(t, 20, y, 1e-9)
}

// TestTDSetsLeadingAndTranslates checks that TD both moves the line matrix and sets leading to
// -ty, so a following T* advances by the same ty.
func TestTDSetsLeadingAndTranslates(t *testing.T) {
	resources := courierResources(t)
	ops := mustParse(t, `BT /F1 12 Tf 0 -15 TD (A) Tj T* (B) Tj ET`)

	proc := contentstream.NewContentStreamProcessor(ops)
	h := &recordingHandler{}
	proc.Output = h

	err := proc.Process(resources)
	require.NoError(t, err)

	require.Len(t, h.characters, 2)
	_, y0 := h.characters[0].trm.Transform(0, 0)
	_, y1 := h.characters[1].trm.Transform(0, 0)
	require.InDelta(t, -15, y0, 1e-9)
	require.InDelta(t, -30, y1, 1e-9)
}

// TestShowTextAdvance verifies that successive glyphs in a Tj advance the text matrix by the
// glyph's width scaled by font size, per §4.7's tx formula, with no other spacing in play.
func TestShowTextAdvance(t *testing.T) {
	resources := courierResources(t)
	ops := mustParse(t, `BT /F1 1000 Tf (AB) Tj ET`)

	proc := contentstream.NewContentStreamProcessor(ops)
	h := &recordingHandler{}
	proc.Output = h

	err := proc.Process(resources)
	require.NoError(t, err)

	require.Len(t, h.characters, 2)
	x0, _ := h.characters[0].trm.Transform(0, 0)
	x1, _ := h.characters[1].trm.Transform(0, 0)
	// Courier is a fixed-width font: every glyph advances by the same amount (600/1000 * 1000).
	require.InDelta(t, 0, x0, 1e-9)
	require.InDelta(t, 600, x1, 1e-9)
}

// TestTJNumericAdjustment checks that a numeric element in a TJ array shifts the following glyph
// by -adj/1000*fontSize*hscale, on top of the glyph-width advance.
func TestTJNumericAdjustment(t *testing.T) {
	resources := courierResources(t)
	ops := mustParse(t, `BT /F1 1000 Tf [(A) -200 (B)] TJ ET`)

	proc := contentstream.NewContentStreamProcessor(ops)
	h := &recordingHandler{}
	proc.Output = h

	err := proc.Process(resources)
	require.NoError(t, err)

	require.Len(t, h.characters, 2)
	x0, _ := h.characters[0].trm.Transform(0, 0)
	x1, _ := h.characters[1].trm.Transform(0, 0)
	// Glyph A advances 600 (Courier width), plus an extra 200 from the TJ adjustment.
	require.InDelta(t, 0, x0, 1e-9)
	require.InDelta(t, 800, x1, 1e-9)
}

// TestCMPrependsTransform checks that cm concatenates the new matrix to the left of the existing
// CTM, per PDF §8.3.4 (CTM' = M x CTM): a translation applied after a scale must still land at
// the scaled position, not translate in un-scaled units.
func TestCMPrependsTransform(t *testing.T) {
	resources := courierResources(t)
	ops := mustParse(t, `2 0 0 2 0 0 cm 1 0 0 1 10 0 cm BT /F1 1 Tf (A) Tj ET`)

	proc := contentstream.NewContentStreamProcessor(ops)
	h := &recordingHandler{}
	proc.Output = h

	err := proc.Process(resources)
	require.NoError(t, err)

	require.Len(t, h.characters, 1)
	x, _ := h.characters[0].trm.Transform(0, 0)
	// Translate-then-scale composition: the 10-unit shift happens in the pre-scale frame, so it
	// shows up scaled by 2 in the final coordinate.
	require.InDelta(t, 20, x, 1e-9)
}

// TestQQRestoresGraphicsStateNotTextMatrix checks that q/Q saves and restores CTM and text state
// but does not affect tm/tlm, which are interpreter-level and reset only by BT.
func TestQQRestoresGraphicsStateNotTextMatrix(t *testing.T) {
	resources := courierResources(t)
	ops := mustParse(t, `BT /F1 12 Tf 5 0 Td q 2 0 0 2 0 0 cm Q (A) Tj ET`)

	proc := contentstream.NewContentStreamProcessor(ops)
	h := &recordingHandler{}
	proc.Output = h

	err := proc.Process(resources)
	require.NoError(t, err)

	require.Len(t, h.characters, 1)
	x, _ := h.characters[0].trm.Transform(0, 0)
	require.InDelta(t, 5, x, 1e-9)
}

// TestCmArityMismatchPanics checks the deliberate fatal-error policy: a malformed cm operand
// panics rather than being silently ignored.
func TestCmArityMismatchPanics(t *testing.T) {
	ops := mustParse(t, `1 0 0 1 0 cm`)
	proc := contentstream.NewContentStreamProcessor(ops)
	require.Panics(t, func() {
		_ = proc.Process(model.NewPdfPageResources())
	})
}

// TestTdArityMismatchPanics mirrors TestCmArityMismatchPanics for Td.
func TestTdArityMismatchPanics(t *testing.T) {
	ops := mustParse(t, `BT 5 Td ET`)
	proc := contentstream.NewContentStreamProcessor(ops)
	require.Panics(t, func() {
		_ = proc.Process(model.NewPdfPageResources())
	})
}

// TestTmArityMismatchPanics mirrors TestCmArityMismatchPanics for Tm.
func TestTmArityMismatchPanics(t *testing.T) {
	ops := mustParse(t, `BT 1 0 0 1 0 Tm ET`)
	proc := contentstream.NewContentStreamProcessor(ops)
	require.Panics(t, func() {
		_ = proc.Process(model.NewPdfPageResources())
	})
}

// TestTjMalformedOperandPanics checks that Tj with a non-string operand panics.
func TestTjMalformedOperandPanics(t *testing.T) {
	ops := mustParse(t, `BT /F1 12 Tf 1 Tj ET`)
	proc := contentstream.NewContentStreamProcessor(ops)
	require.Panics(t, func() {
		_ = proc.Process(courierResources(t))
	})
}

// TestPathConstructionAndFill builds a rectangle via re and checks that a fill delivers the
// expanded four-point-plus-close path, since this trimmed model has no distinct Rect op.
func TestPathConstructionAndFill(t *testing.T) {
	ops := mustParse(t, `0 0 100 50 re f`)
	proc := contentstream.NewContentStreamProcessor(ops)
	h := &recordingHandler{}
	proc.Output = h

	err := proc.Process(model.NewPdfPageResources())
	require.NoError(t, err)

	require.Len(t, h.fills, 1)
	path := h.fills[0]
	require.Len(t, path, 5)
	require.Equal(t, byte(contentstream.PathOpMoveTo), path[0].Op)
	require.Equal(t, byte(contentstream.PathOpClose), path[4].Op)
}

// TestStrokeAndFillBothEmitted checks that B emits both a fill and a stroke event from the same
// path, and that the path is cleared afterward.
func TestStrokeAndFillBothEmitted(t *testing.T) {
	ops := mustParse(t, `0 0 m 10 10 l B 20 20 m 30 30 l S`)
	proc := contentstream.NewContentStreamProcessor(ops)
	h := &recordingHandler{}
	proc.Output = h

	err := proc.Process(model.NewPdfPageResources())
	require.NoError(t, err)

	require.Len(t, h.fills, 1)
	require.Len(t, h.strokes, 2)
	// The second stroke comes from the bare "S" after the path was reset by B.
	require.Len(t, h.strokes[1], 2)
}

// TestColorCaptureRGB checks that rg records the raw operand vector without evaluating it to a
// device color, per §4.8.
func TestColorCaptureRGB(t *testing.T) {
	ops := mustParse(t, `0.1 0.2 0.3 rg`)
	proc := contentstream.NewContentStreamProcessor(ops)
	var captured []float64
	proc.AddHandler(contentstream.HandlerConditionEnumOperand, "rg",
		func(_ *contentstream.ContentStreamOperation, gs contentstream.GraphicsState, _ *model.PdfPageResources) error {
			captured = gs.ColorNonStroking
			return nil
		})

	err := proc.Process(model.NewPdfPageResources())
	require.NoError(t, err)
	require.Equal(t, []float64{0.1, 0.2, 0.3}, captured)
}

// TestBMCEMCBalance checks that unbalanced EMC is tolerated (logged, not fatal) per the
// recoverable-error policy for malformed marked-content nesting.
func TestBMCEMCBalance(t *testing.T) {
	ops := mustParse(t, `EMC BMC EMC`)
	proc := contentstream.NewContentStreamProcessor(ops)

	err := proc.Process(model.NewPdfPageResources())
	require.NoError(t, err)
}
