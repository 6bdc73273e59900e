/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package extractor

import (
	"fmt"
	"math"
	"strings"

	"github.com/milovec/pdftext/contentstream"
	"github.com/milovec/pdftext/internal/transform"
	"github.com/milovec/pdftext/model"
)

// OutputDev is the capability set a sink exposes to the extraction engine: page
// bracketing on top of the content-stream-level event set contentstream.OutputHandler
// already defines (characters, words, lines, stroke and fill).
type OutputDev interface {
	contentstream.OutputHandler
	BeginPage(mediaBox model.PdfRectangle)
	EndPage()
}

// matrixApproxEqual reports whether a and b are equal within a small numerical tolerance,
// guarding against the fact that trm is recomputed from scratch for every glyph.
func matrixApproxEqual(a, b transform.Matrix) bool {
	const tol = 1e-4
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// effectiveFontSize returns sqrt(|vx·vy|) for the vector (fontSize,fontSize) transformed by
// trm, the geometric heuristic used by the plain-text and HTML sinks to convert text space
// font size into the output device's units.
func effectiveFontSize(trm transform.Matrix, fontSize float64) float64 {
	vx, vy := trm.TransformVector(fontSize, fontSize)
	return math.Sqrt(math.Abs(vx * vy))
}

// PlainTextOutput accumulates extracted text into one string per page using only geometric
// hints (relative glyph position) to decide where to insert spaces and newlines; it never
// relies on text-state operators such as Td/T* to signal word or line boundaries.
type PlainTextOutput struct {
	buf       strings.Builder
	pages     []string
	flipCTM   transform.Matrix
	lastEnd   float64
	lastY     float64
	firstChar bool
}

// NewPlainTextOutput returns a PlainTextOutput ready to receive BeginPage.
func NewPlainTextOutput() *PlainTextOutput {
	return &PlainTextOutput{}
}

// BeginPage resets per-page accumulation state and derives the y-flip transform from the
// page's MediaBox.
func (o *PlainTextOutput) BeginPage(mediaBox model.PdfRectangle) {
	o.flipCTM = transform.NewMatrix(1, 0, 0, -1, 0, mediaBox.Ury-mediaBox.Lly)
	o.lastEnd = 1e5
	o.lastY = 0
	o.firstChar = false
}

// EndPage finalizes the current page's buffer, trimming trailing whitespace.
func (o *PlainTextOutput) EndPage() {
	o.pages = append(o.pages, strings.TrimRight(o.buf.String(), " \t\r\n"))
	o.buf.Reset()
}

// BeginWord marks the next output_character as the first of a word, the only trigger point
// for the geometric newline/space heuristic.
func (o *PlainTextOutput) BeginWord() { o.firstChar = true }
func (o *PlainTextOutput) EndWord()   {}
func (o *PlainTextOutput) EndLine()   {}

// OutputCharacter implements the plain-text sink's geometric heuristic.
func (o *PlainTextOutput) OutputCharacter(trm transform.Matrix, width, spacing, fontSize float64, text string) {
	composed := o.flipCTM
	composed.Concat(trm)
	x, y := composed.Transform(0, 0)
	s := effectiveFontSize(trm, fontSize)

	if o.firstChar {
		switch {
		case math.Abs(y-o.lastY) > 1.5*s:
			o.buf.WriteByte('\n')
		case x < o.lastEnd && math.Abs(y-o.lastY) > 0.5*s:
			o.buf.WriteByte('\n')
		case x > o.lastEnd+0.1*s:
			o.buf.WriteByte(' ')
		}
	}

	o.buf.WriteString(text)
	o.lastY = y
	o.lastEnd = x + width*s
	o.firstChar = false
}

func (o *PlainTextOutput) Stroke(transform.Matrix, model.PdfColorspace, []float64, contentstream.Path) {}
func (o *PlainTextOutput) Fill(transform.Matrix, model.PdfColorspace, []float64, contentstream.Path)   {}

// Pages returns the accumulated text of each page processed so far.
func (o *PlainTextOutput) Pages() []string { return o.pages }

// Text returns all pages' text joined by the conventional form-feed page separator.
func (o *PlainTextOutput) Text() string {
	return strings.Join(o.pages, "\n\f\n")
}

// htmlRun is a sequence of glyphs sharing a common rendering matrix, flushed as a single
// absolutely-positioned <div> once a glyph with a different matrix arrives.
type htmlRun struct {
	ctm      transform.Matrix
	fontSize float64
	text     strings.Builder
}

// HTMLOutput renders each page as a <div> of absolutely-positioned runs, one run per
// contiguous sequence of glyphs that share the same rendering matrix.
type HTMLOutput struct {
	buf      strings.Builder
	pages    []string
	flipCTM  transform.Matrix
	lastCTM  transform.Matrix
	run      *htmlRun
	pageW    float64
	pageH    float64
}

// NewHTMLOutput returns an HTMLOutput ready to receive BeginPage.
func NewHTMLOutput() *HTMLOutput {
	return &HTMLOutput{lastCTM: transform.IdentityMatrix()}
}

// BeginPage resets per-page accumulation and opens the page's wrapping <div>.
func (o *HTMLOutput) BeginPage(mediaBox model.PdfRectangle) {
	o.flipCTM = transform.NewMatrix(1, 0, 0, -1, 0, mediaBox.Ury-mediaBox.Lly)
	o.lastCTM = transform.IdentityMatrix()
	o.run = nil
	o.pageW = mediaBox.Urx - mediaBox.Llx
	o.pageH = mediaBox.Ury - mediaBox.Lly
	fmt.Fprintf(&o.buf, "<div style=\"position:relative; width:%gpx; height:%gpx; border:1px solid black\">\n", o.pageW, o.pageH)
}

// EndPage flushes any pending run and closes the page's <div>.
func (o *HTMLOutput) EndPage() {
	o.flushRun()
	o.buf.WriteString("</div>\n")
	o.pages = append(o.pages, o.buf.String())
	o.buf.Reset()
}

func (o *HTMLOutput) flushRun() {
	if o.run == nil || o.run.text.Len() == 0 {
		o.run = nil
		return
	}
	composed := o.flipCTM
	composed.Concat(o.run.ctm)
	x, y := composed.Transform(0, 0)
	s := effectiveFontSize(o.run.ctm, o.run.fontSize)
	fmt.Fprintf(&o.buf, "<div style=\"position:absolute; left:%gpx; top:%gpx; font-size:%gpx\">%s</div>\n",
		x, y, s, insertNbsp(o.run.text.String()))
	o.run = nil
}

// insertNbsp replaces with &nbsp; every space that does not directly follow a word, directly
// precedes another space, or ends the run, so internal whitespace is not collapsed by HTML
// rendering. A single space between two words is kept as a plain space.
func insertNbsp(s string) string {
	var b strings.Builder
	runes := []rune(s)
	wordEnd := false
	for i, c := range runes {
		if c == ' ' {
			last := i == len(runes)-1
			nextIsSpace := !last && runes[i+1] == ' '
			if !wordEnd || last || nextIsSpace {
				b.WriteString("&nbsp;")
			} else {
				b.WriteByte(' ')
			}
			wordEnd = false
		} else {
			wordEnd = true
			b.WriteRune(c)
		}
	}
	return b.String()
}

func (o *HTMLOutput) BeginWord() {}
func (o *HTMLOutput) EndWord()   {}
func (o *HTMLOutput) EndLine()   {}

// OutputCharacter appends `text` to the current run if its rendering matrix matches the run
// in progress (within tolerance), otherwise flushes the prior run and starts a new one.
func (o *HTMLOutput) OutputCharacter(trm transform.Matrix, width, spacing, fontSize float64, text string) {
	if o.run == nil || !matrixApproxEqual(trm, o.lastCTM) {
		o.flushRun()
		o.run = &htmlRun{ctm: trm, fontSize: fontSize}
	}
	o.run.text.WriteString(text)

	advance := transform.TranslationMatrix(width*fontSize+spacing, 0)
	advance.Concat(trm)
	o.lastCTM = advance
}

func (o *HTMLOutput) Stroke(transform.Matrix, model.PdfColorspace, []float64, contentstream.Path) {}
func (o *HTMLOutput) Fill(transform.Matrix, model.PdfColorspace, []float64, contentstream.Path)   {}

// Pages returns the accumulated HTML markup of each page processed so far.
func (o *HTMLOutput) Pages() []string { return o.pages }

// SVGOutput renders each page as a standalone <svg> document: a single y-flip <g> wraps one
// nested <g transform="matrix(...)"><path d="..."/></g> per fill/stroke call.
type SVGOutput struct {
	buf   strings.Builder
	pages []string
}

// NewSVGOutput returns an SVGOutput ready to receive BeginPage.
func NewSVGOutput() *SVGOutput {
	return &SVGOutput{}
}

// BeginPage opens the page's <svg> element and y-flip group.
func (o *SVGOutput) BeginPage(mediaBox model.PdfRectangle) {
	width := mediaBox.Urx - mediaBox.Llx
	height := mediaBox.Ury - mediaBox.Lly
	fmt.Fprintf(&o.buf, "<svg width=\"%g\" height=\"%g\" xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"%g %g %g %g\">\n",
		width, height, mediaBox.Llx, mediaBox.Lly, width, height)
	fmt.Fprintf(&o.buf, "<g transform=\"matrix(1 0 0 -1 0 %g)\">\n", height)
}

// EndPage closes the y-flip group and the <svg> element.
func (o *SVGOutput) EndPage() {
	o.buf.WriteString("</g>\n</svg>")
	o.pages = append(o.pages, o.buf.String())
	o.buf.Reset()
}

func (o *SVGOutput) BeginWord()                                                                  {}
func (o *SVGOutput) EndWord()                                                                     {}
func (o *SVGOutput) EndLine()                                                                     {}
func (o *SVGOutput) OutputCharacter(transform.Matrix, float64, float64, float64, string) {}

// Stroke and Fill both render `path` the same way: an SVG <path> nested in a <g> carrying the
// CTM, since the sink never evaluates color and has no notion of fill vs. stroke styling.
func (o *SVGOutput) Stroke(ctm transform.Matrix, cs model.PdfColorspace, color []float64, path contentstream.Path) {
	o.emitPath(ctm, path)
}

func (o *SVGOutput) Fill(ctm transform.Matrix, cs model.PdfColorspace, color []float64, path contentstream.Path) {
	o.emitPath(ctm, path)
}

func (o *SVGOutput) emitPath(ctm transform.Matrix, path contentstream.Path) {
	if len(path) == 0 {
		return
	}
	fmt.Fprintf(&o.buf, "<g transform=\"matrix(%g %g %g %g %g %g)\">\n",
		ctm[0], ctm[1], ctm[3], ctm[4], ctm[6], ctm[7])

	var d strings.Builder
	for i, op := range path {
		if i > 0 {
			d.WriteByte(' ')
		}
		switch op.Op {
		case contentstream.PathOpMoveTo:
			fmt.Fprintf(&d, "M%g %g", op.Points[0].X, op.Points[0].Y)
		case contentstream.PathOpLineTo:
			fmt.Fprintf(&d, "L%g %g", op.Points[0].X, op.Points[0].Y)
		case contentstream.PathOpCurveTo:
			p := op.Points
			fmt.Fprintf(&d, "C%g %g %g %g %g %g", p[0].X, p[0].Y, p[1].X, p[1].Y, p[2].X, p[2].Y)
		case contentstream.PathOpClose:
			d.WriteByte('Z')
		}
	}
	fmt.Fprintf(&o.buf, "<path d=\"%s\" />\n", d.String())
	o.buf.WriteString("</g>\n")
}

// Pages returns the accumulated SVG markup of each page processed so far.
func (o *SVGOutput) Pages() []string { return o.pages }
