/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package model

import (
	"github.com/milovec/pdftext/common"
	"github.com/milovec/pdftext/core"
)

// PdfPageResources is a Page resources model, holding the sub-dictionaries a
// content stream interpreter resolves named resources against.
type PdfPageResources struct {
	ExtGState  core.PdfObject
	ColorSpace core.PdfObject
	XObject    core.PdfObject
	Font       core.PdfObject

	// Loaded objects.
	colorspace *PdfPageResourcesColorspaces
}

// NewPdfPageResources returns a new, empty PdfPageResources object.
func NewPdfPageResources() *PdfPageResources {
	return &PdfPageResources{}
}

// NewPdfPageResourcesFromDict creates and returns a new PdfPageResources object
// from the input dictionary.
func NewPdfPageResourcesFromDict(dict *core.PdfObjectDictionary) (*PdfPageResources, error) {
	r := NewPdfPageResources()

	if obj := dict.Get("ExtGState"); obj != nil {
		r.ExtGState = obj
	}
	if obj := dict.Get("ColorSpace"); obj != nil && !core.IsNullObject(obj) {
		r.ColorSpace = obj
	}
	if obj := dict.Get("XObject"); obj != nil {
		r.XObject = obj
	}
	if obj := core.ResolveReference(dict.Get("Font")); obj != nil {
		r.Font = obj
	}

	return r, nil
}

// GetColorspaces loads PdfPageResourcesColorspaces from `r.ColorSpace` and returns an error if there
// is a problem loading. Once loaded, the same object is returned on multiple calls.
func (r *PdfPageResources) GetColorspaces() (*PdfPageResourcesColorspaces, error) {
	if r.colorspace != nil {
		return r.colorspace, nil
	}
	if r.ColorSpace == nil {
		return nil, nil
	}

	colorspaces, err := newPdfPageResourcesColorspacesFromPdfObject(r.ColorSpace)
	if err != nil {
		return nil, err
	}
	r.colorspace = colorspaces
	return r.colorspace, nil
}

// GetExtGState gets the ExtGState specified by keyName. Returns a bool
// indicating whether it was found or not.
func (r *PdfPageResources) GetExtGState(keyName core.PdfObjectName) (core.PdfObject, bool) {
	if r.ExtGState == nil {
		return nil, false
	}

	dict, ok := core.TraceToDirectObject(r.ExtGState).(*core.PdfObjectDictionary)
	if !ok {
		common.Log.Debug("ERROR: Invalid ExtGState entry - not a dict (got %T)", r.ExtGState)
		return nil, false
	}
	if obj := dict.Get(keyName); obj != nil {
		return obj, true
	}

	return nil, false
}

// GetFontByName gets the font specified by keyName. Returns the PdfObject which
// the entry refers to. Returns a bool value indicating whether or not the entry was found.
func (r *PdfPageResources) GetFontByName(keyName core.PdfObjectName) (core.PdfObject, bool) {
	if r.Font == nil {
		return nil, false
	}

	fontDict, has := core.TraceToDirectObject(r.Font).(*core.PdfObjectDictionary)
	if !has {
		common.Log.Debug("ERROR: Font not a dictionary! (got %T)", core.TraceToDirectObject(r.Font))
		return nil, false
	}
	if obj := fontDict.Get(keyName); obj != nil {
		return obj, true
	}

	return nil, false
}

// GetColorspaceByName returns the colorspace with the specified name from the page resources.
func (r *PdfPageResources) GetColorspaceByName(keyName core.PdfObjectName) (PdfColorspace, bool) {
	colorspace, err := r.GetColorspaces()
	if err != nil {
		common.Log.Debug("ERROR getting colorspace: %v", err)
		return nil, false
	}
	if colorspace == nil {
		return nil, false
	}

	cs, has := colorspace.Colorspaces[string(keyName)]
	return cs, has
}

// XObjectType represents the type of an XObject.
type XObjectType int

// XObject types.
const (
	XObjectTypeUndefined XObjectType = iota
	XObjectTypeImage
	XObjectTypeForm
)

// GetXObjectByName returns the XObject stream with the specified keyName and its type.
// Image XObjects are returned (but never decoded) so callers can account for the
// `Do` operator consuming the operand without attempting to extract text from them.
func (r *PdfPageResources) GetXObjectByName(keyName core.PdfObjectName) (*core.PdfObjectStream, XObjectType) {
	if r.XObject == nil {
		return nil, XObjectTypeUndefined
	}

	xresDict, has := core.TraceToDirectObject(r.XObject).(*core.PdfObjectDictionary)
	if !has {
		common.Log.Debug("ERROR: XObject not a dictionary! (got %T)", core.TraceToDirectObject(r.XObject))
		return nil, XObjectTypeUndefined
	}

	obj := xresDict.Get(keyName)
	if obj == nil {
		return nil, XObjectTypeUndefined
	}

	stream, ok := core.GetStream(obj)
	if !ok {
		common.Log.Debug("XObject not pointing to a stream %T", obj)
		return nil, XObjectTypeUndefined
	}
	dict := stream.PdfObjectDictionary

	name, ok := core.TraceToDirectObject(dict.Get("Subtype")).(*core.PdfObjectName)
	if !ok {
		common.Log.Debug("XObject Subtype not a Name, dict: %s", dict.String())
		return nil, XObjectTypeUndefined
	}

	switch *name {
	case "Image":
		return stream, XObjectTypeImage
	case "Form":
		return stream, XObjectTypeForm
	default:
		common.Log.Debug("XObject Subtype not known (%s)", *name)
		return nil, XObjectTypeUndefined
	}
}

// XObjectForm represents a Form XObject (8.10.2): a self-contained content
// stream with its own coordinate system (Matrix), bounding box and, optionally,
// its own resource dictionary that shadows the invoking page's resources.
type XObjectForm struct {
	Resources *PdfPageResources
	BBox      core.PdfObject
	Matrix    core.PdfObject
	Contents  []byte
}

// NewXObjectFormFromStream decodes a Form XObject from its underlying stream.
func NewXObjectFormFromStream(stream *core.PdfObjectStream) (*XObjectForm, error) {
	xform := &XObjectForm{}
	dict := stream.PdfObjectDictionary

	if obj := dict.Get("Resources"); obj != nil && !core.IsNullObject(obj) {
		resDict, ok := core.GetDict(obj)
		if ok {
			resources, err := NewPdfPageResourcesFromDict(resDict)
			if err != nil {
				return nil, err
			}
			xform.Resources = resources
		}
	}

	xform.BBox = dict.Get("BBox")
	xform.Matrix = dict.Get("Matrix")

	data, err := core.DecodeStream(stream)
	if err != nil {
		return nil, err
	}
	xform.Contents = data

	return xform, nil
}

// GetXObjectFormByName returns the XObjectForm with the specified name from the
// page resources, if it exists.
func (r *PdfPageResources) GetXObjectFormByName(keyName core.PdfObjectName) (*XObjectForm, error) {
	stream, xtype := r.GetXObjectByName(keyName)
	if stream == nil || xtype != XObjectTypeForm {
		return nil, nil
	}

	return NewXObjectFormFromStream(stream)
}
