/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package extractor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/milovec/pdftext/model"
)

// ExtractText returns the concatenated text of every page of the PDF file at `path`.
func ExtractText(path string) (string, error) {
	return extractTextFromPath(path, nil)
}

// ExtractTextByPages returns the text of each page of the PDF file at `path`, in order.
func ExtractTextByPages(path string) ([]string, error) {
	return extractTextByPagesFromPath(path, nil)
}

// ExtractTextWithPassword is ExtractText for an encrypted document.
func ExtractTextWithPassword(path string, password []byte) (string, error) {
	return extractTextFromPath(path, password)
}

// ExtractTextByPagesWithPassword is ExtractTextByPages for an encrypted document.
func ExtractTextByPagesWithPassword(path string, password []byte) ([]string, error) {
	return extractTextByPagesFromPath(path, password)
}

// ExtractTextFromBytes is ExtractText for a PDF file already loaded into memory.
func ExtractTextFromBytes(data []byte) (string, error) {
	return extractText(bytes.NewReader(data), nil)
}

// ExtractTextFromBytesByPages is ExtractTextByPages for a PDF file already loaded into memory.
func ExtractTextFromBytesByPages(data []byte) ([]string, error) {
	return extractTextByPages(bytes.NewReader(data), nil)
}

// ExtractTextFromBytesWithPassword is ExtractTextFromBytes for an encrypted document.
func ExtractTextFromBytesWithPassword(data []byte, password []byte) (string, error) {
	return extractText(bytes.NewReader(data), password)
}

// ExtractTextFromBytesByPagesWithPassword is ExtractTextFromBytesByPages for an encrypted document.
func ExtractTextFromBytesByPagesWithPassword(data []byte, password []byte) ([]string, error) {
	return extractTextByPages(bytes.NewReader(data), password)
}

func extractTextFromPath(path string, password []byte) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return extractText(f, password)
}

func extractTextByPagesFromPath(path string, password []byte) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return extractTextByPages(f, password)
}

func extractText(rs io.ReadSeeker, password []byte) (string, error) {
	pages, err := extractTextByPages(rs, password)
	return strings.Join(pages, "\n\f\n"), err
}

// extractTextByPages loads the document, authenticates it if encrypted, and extracts text from
// each page in order. Per-page failures (whether a returned error or a recovered panic, see
// package contentstream's fatal-error policy) halt extraction and are returned alongside the
// text of the pages extracted so far.
func extractTextByPages(rs io.ReadSeeker, password []byte) ([]string, error) {
	reader, err := model.NewPdfReader(rs)
	if err != nil {
		return nil, err
	}

	isEncrypted, err := reader.IsEncrypted()
	if err != nil {
		return nil, err
	}
	if isEncrypted {
		ok, err := reader.Decrypt(password)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, model.ErrIncorrectPassword
		}
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		text, err := extractPageText(reader, i)
		if err != nil {
			return pages, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// extractPageText extracts one page's text, converting a panic from the content-stream
// interpreter's deliberate fatal-error policy into a plain error so a single malformed page
// cannot crash a multi-page batch extraction.
func extractPageText(reader *model.PdfReader, pageNum int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	page, err := reader.GetPage(pageNum)
	if err != nil {
		return "", err
	}
	ext, err := New(page)
	if err != nil {
		return "", err
	}
	return ext.ExtractText()
}
