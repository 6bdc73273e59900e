/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package extractor

import (
	"fmt"

	"github.com/milovec/pdftext/contentstream"
	"github.com/milovec/pdftext/model"
)

// Extractor stores and offers functionality for extracting content from PDF pages.
type Extractor struct {
	// stream contents and resources for page
	contents  string
	resources *model.PdfPageResources
	mediaBox  model.PdfRectangle
}

// New returns an Extractor instance for extracting content from the input PDF page.
func New(page *model.PdfPage) (*Extractor, error) {
	contents, err := page.GetAllContentStreams()
	if err != nil {
		return nil, err
	}

	mediaBox, err := page.GetMediaBox()
	if err != nil {
		return nil, fmt.Errorf("extractor requires mediaBox: %w", err)
	}

	e := &Extractor{
		contents:  contents,
		resources: page.Resources,
		mediaBox:  *mediaBox,
	}
	return e, nil
}

// NewFromContents creates a new extractor from contents and page resources. No MediaBox is
// available in this path, so output sinks that need one for their y-flip transform (plain-text,
// HTML, SVG) receive a zero-valued box in BeginPage.
func NewFromContents(contents string, resources *model.PdfPageResources) (*Extractor, error) {
	e := &Extractor{
		contents:  contents,
		resources: resources,
	}
	return e, nil
}

// ExtractTextToSink runs the content-stream interpreter over the extractor's content stream,
// delivering character and path events to `output`, which brackets the run with
// BeginPage/EndPage.
func (e *Extractor) ExtractTextToSink(output OutputDev) error {
	parser := contentstream.NewContentStreamParser(e.contents)
	ops, err := parser.Parse()
	if err != nil {
		return fmt.Errorf("failed to parse content stream: %w", err)
	}

	proc := contentstream.NewContentStreamProcessor(*ops)
	proc.Output = output

	output.BeginPage(e.mediaBox)
	err = proc.Process(e.resources)
	output.EndPage()

	return err
}

// ExtractText returns the page's text using the plain-text sink's geometric heuristic.
func (e *Extractor) ExtractText() (string, error) {
	output := NewPlainTextOutput()
	if err := e.ExtractTextToSink(output); err != nil {
		return "", err
	}
	pages := output.Pages()
	if len(pages) == 0 {
		return "", nil
	}
	return pages[0], nil
}
