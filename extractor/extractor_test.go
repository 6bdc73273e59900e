/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milovec/pdftext/core"
	"github.com/milovec/pdftext/extractor"
	"github.com/milovec/pdftext/model"
)

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

// TestExtractTextPlain checks that two words on the same baseline, spaced well beyond the glyph
// advance, are separated by exactly one space in the plain-text sink's output.
func TestExtractTextPlain(t *testing.T) {
	resources := courierResources(t)
	content := `BT /F1 12 Tf 0 0 Td (Hello) Tj 200 0 Td (World) Tj ET`

	ext, err := extractor.NewFromContents(content, resources)
	require.NoError(t, err)

	text, err := ext.ExtractText()
	require.NoError(t, err)
	require.Contains(t, text, "Hello")
	require.Contains(t, text, "World")
	require.Equal(t, "Hello World", text)
}

// TestExtractTextNewlineOnLargeYJump checks that a line far below the previous one produces a
// newline rather than a space, per the plain-text sink's geometric heuristic.
func TestExtractTextNewlineOnLargeYJump(t *testing.T) {
	resources := courierResources(t)
	content := `BT /F1 12 Tf 0 100 Td (Top) Tj 0 -100 Td (Bottom) Tj ET`

	ext, err := extractor.NewFromContents(content, resources)
	require.NoError(t, err)

	text, err := ext.ExtractText()
	require.NoError(t, err)
	require.Contains(t, text, "\n")
}

// TestExtractTextToSinkSVG checks that a filled rectangle produces a well-formed SVG path inside
// the expected document structure.
func TestExtractTextToSinkSVG(t *testing.T) {
	resources := model.NewPdfPageResources()
	content := `0 0 100 50 re f`

	ext, err := extractor.NewFromContents(content, resources)
	require.NoError(t, err)

	sink := extractor.NewSVGOutput()
	err = ext.ExtractTextToSink(sink)
	require.NoError(t, err)

	pages := sink.Pages()
	require.Len(t, pages, 1)
	require.Contains(t, pages[0], "<svg")
	require.Contains(t, pages[0], "<path")
}

// TestExtractTextToSinkHTML checks that glyphs sharing a rendering matrix are coalesced into one
// run, and that a run of interior spaces is rendered as &nbsp;.
func TestExtractTextToSinkHTML(t *testing.T) {
	resources := courierResources(t)
	content := `BT /F1 12 Tf 0 0 Td (Hello  World) Tj ET`

	ext, err := extractor.NewFromContents(content, resources)
	require.NoError(t, err)

	sink := extractor.NewHTMLOutput()
	err = ext.ExtractTextToSink(sink)
	require.NoError(t, err)

	pages := sink.Pages()
	require.Len(t, pages, 1)
	require.Contains(t, pages[0], ">Hello&nbsp;&nbsp;World</div>")
}

// TestExtractTextUnknownFontResourceIsRecoverable checks that a Tf referencing a font resource
// name absent from the resource dictionary surfaces as a plain error, not a panic, since it is
// not in the deliberate fatal-operator list.
func TestExtractTextUnknownFontResourceIsRecoverable(t *testing.T) {
	resources := model.NewPdfPageResources()
	content := `BT /NoSuchFont 12 Tf (A) Tj ET`

	ext, err := extractor.NewFromContents(content, resources)
	require.NoError(t, err)

	_, err = ext.ExtractText()
	require.Error(t, err)
}
