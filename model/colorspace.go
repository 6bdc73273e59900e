/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package model

import (
	"github.com/milovec/pdftext/common"
	"github.com/milovec/pdftext/core"
)

// PdfColorspace records the identity of a PDF colorspace. The text-extraction
// path never evaluates colors to device pixels; it only needs to know how many
// numeric components an `SC`/`SCN`/`sc`/`scn` operator's color vector carries
// and, for Separation, which tint-transform function produced it.
//
// Device based colorspace, specified by name:
//   - /DeviceGray, /DeviceRGB, /DeviceCMYK
//
// CIE based colorspace, specified by [name dict]:
//   - [/CalGray dict], [/CalRGB dict], [/Lab dict], [/ICCBased stream]
//
// Special colorspaces:
//   - /Pattern
//   - [/Separation name alternateSpace tintTransform]
type PdfColorspace interface {
	// String returns the PdfColorspace's name.
	String() string
	// GetNumComponents returns the number of components in the PdfColorspace.
	GetNumComponents() int
}

// NewPdfColorspaceFromPdfObject loads a PdfColorspace from a PdfObject. Returns
// an error if there is a failure in loading; an array whose first element names an
// unsupported colorspace family panics.
func NewPdfColorspaceFromPdfObject(obj core.PdfObject) (PdfColorspace, error) {
	obj = core.TraceToDirectObject(obj)

	// 8.6.3 (PDF32000_2008): a colour space is defined either by a name
	// directly (for families requiring no parameters) or by an array whose
	// first element is the family name.
	switch t := obj.(type) {
	case *core.PdfObjectName:
		switch *t {
		case "DeviceGray":
			return NewPdfColorspaceDeviceGray(), nil
		case "DeviceRGB":
			return NewPdfColorspaceDeviceRGB(), nil
		case "DeviceCMYK":
			return NewPdfColorspaceDeviceCMYK(), nil
		case "Pattern":
			return NewPdfColorspaceSpecialPattern(), nil
		default:
			common.Log.Debug("ERROR: Unknown colorspace %s", *t)
			return nil, errRangeError
		}
	case *core.PdfObjectArray:
		if t.Len() == 0 {
			return nil, ErrTypeCheck
		}
		name, found := core.GetName(t.Get(0))
		if !found {
			common.Log.Debug("Array with invalid name: %s", t.String())
			return nil, ErrTypeCheck
		}

		switch name.String() {
		case "DeviceGray":
			return NewPdfColorspaceDeviceGray(), nil
		case "DeviceRGB":
			return NewPdfColorspaceDeviceRGB(), nil
		case "DeviceCMYK":
			return NewPdfColorspaceDeviceCMYK(), nil
		case "CalGray":
			return newPdfColorspaceCalGrayFromPdfObject(t)
		case "CalRGB":
			return newPdfColorspaceCalRGBFromPdfObject(t)
		case "Lab":
			return newPdfColorspaceLabFromPdfObject(t)
		case "ICCBased":
			return newPdfColorspaceICCBasedFromPdfObject(t)
		case "Pattern":
			return NewPdfColorspaceSpecialPattern(), nil
		case "Separation":
			return newPdfColorspaceSeparationFromPdfObject(t)
		default:
			common.Log.Debug("Unsupported colorspace name inside array: %s", name.String())
			panic("unsupported colorspace name inside array: " + name.String())
		}
	}

	common.Log.Debug("PDF File Error: Colorspace type error: %s", obj.String())
	return nil, ErrTypeCheck
}

// PdfColorspaceDeviceGray is the DeviceGray colorspace identity (1 component).
type PdfColorspaceDeviceGray struct{}

// NewPdfColorspaceDeviceGray returns a new DeviceGray colorspace.
func NewPdfColorspaceDeviceGray() *PdfColorspaceDeviceGray { return &PdfColorspaceDeviceGray{} }

func (cs *PdfColorspaceDeviceGray) String() string        { return "DeviceGray" }
func (cs *PdfColorspaceDeviceGray) GetNumComponents() int { return 1 }

// PdfColorspaceDeviceRGB is the DeviceRGB colorspace identity (3 components).
type PdfColorspaceDeviceRGB struct{}

// NewPdfColorspaceDeviceRGB returns a new DeviceRGB colorspace.
func NewPdfColorspaceDeviceRGB() *PdfColorspaceDeviceRGB { return &PdfColorspaceDeviceRGB{} }

func (cs *PdfColorspaceDeviceRGB) String() string        { return "DeviceRGB" }
func (cs *PdfColorspaceDeviceRGB) GetNumComponents() int { return 3 }

// PdfColorspaceDeviceCMYK is the DeviceCMYK colorspace identity (4 components).
type PdfColorspaceDeviceCMYK struct{}

// NewPdfColorspaceDeviceCMYK returns a new DeviceCMYK colorspace.
func NewPdfColorspaceDeviceCMYK() *PdfColorspaceDeviceCMYK { return &PdfColorspaceDeviceCMYK{} }

func (cs *PdfColorspaceDeviceCMYK) String() string        { return "DeviceCMYK" }
func (cs *PdfColorspaceDeviceCMYK) GetNumComponents() int { return 4 }

// PdfColorspaceCalGray is the CIE-based CalGray colorspace identity.
type PdfColorspaceCalGray struct {
	WhitePoint []float64
	BlackPoint []float64
	Gamma      float64
}

func newPdfColorspaceCalGrayFromPdfObject(arr *core.PdfObjectArray) (*PdfColorspaceCalGray, error) {
	cs := &PdfColorspaceCalGray{Gamma: 1}
	if arr.Len() < 2 {
		return cs, nil
	}
	dict, ok := core.GetDict(arr.Get(1))
	if !ok {
		return nil, ErrTypeCheck
	}
	if wp, has := core.TraceToDirectObject(dict.Get("WhitePoint")).(*core.PdfObjectArray); has {
		vals, err := wp.ToFloat64Array()
		if err != nil {
			return nil, err
		}
		cs.WhitePoint = vals
	}
	if bp, has := core.TraceToDirectObject(dict.Get("BlackPoint")).(*core.PdfObjectArray); has {
		vals, err := bp.ToFloat64Array()
		if err != nil {
			return nil, err
		}
		cs.BlackPoint = vals
	}
	if g, err := core.GetNumberAsFloat(dict.Get("Gamma")); err == nil {
		cs.Gamma = g
	}
	return cs, nil
}

func (cs *PdfColorspaceCalGray) String() string        { return "CalGray" }
func (cs *PdfColorspaceCalGray) GetNumComponents() int { return 1 }

// PdfColorspaceCalRGB is the CIE-based CalRGB colorspace identity.
type PdfColorspaceCalRGB struct {
	WhitePoint []float64
	BlackPoint []float64
	Gamma      []float64
	Matrix     []float64
}

func newPdfColorspaceCalRGBFromPdfObject(arr *core.PdfObjectArray) (*PdfColorspaceCalRGB, error) {
	cs := &PdfColorspaceCalRGB{}
	if arr.Len() < 2 {
		return cs, nil
	}
	dict, ok := core.GetDict(arr.Get(1))
	if !ok {
		return nil, ErrTypeCheck
	}
	if wp, has := core.TraceToDirectObject(dict.Get("WhitePoint")).(*core.PdfObjectArray); has {
		vals, err := wp.ToFloat64Array()
		if err != nil {
			return nil, err
		}
		cs.WhitePoint = vals
	}
	if bp, has := core.TraceToDirectObject(dict.Get("BlackPoint")).(*core.PdfObjectArray); has {
		vals, err := bp.ToFloat64Array()
		if err != nil {
			return nil, err
		}
		cs.BlackPoint = vals
	}
	if g, has := core.TraceToDirectObject(dict.Get("Gamma")).(*core.PdfObjectArray); has {
		vals, err := g.ToFloat64Array()
		if err != nil {
			return nil, err
		}
		cs.Gamma = vals
	}
	if m, has := core.TraceToDirectObject(dict.Get("Matrix")).(*core.PdfObjectArray); has {
		vals, err := m.ToFloat64Array()
		if err != nil {
			return nil, err
		}
		cs.Matrix = vals
	}
	return cs, nil
}

func (cs *PdfColorspaceCalRGB) String() string        { return "CalRGB" }
func (cs *PdfColorspaceCalRGB) GetNumComponents() int { return 3 }

// PdfColorspaceLab is the CIE-based Lab colorspace identity.
type PdfColorspaceLab struct {
	WhitePoint []float64
	BlackPoint []float64
	Range      []float64
}

func newPdfColorspaceLabFromPdfObject(arr *core.PdfObjectArray) (*PdfColorspaceLab, error) {
	cs := &PdfColorspaceLab{Range: []float64{-100, 100, -100, 100}}
	if arr.Len() < 2 {
		return cs, nil
	}
	dict, ok := core.GetDict(arr.Get(1))
	if !ok {
		return nil, ErrTypeCheck
	}
	if wp, has := core.TraceToDirectObject(dict.Get("WhitePoint")).(*core.PdfObjectArray); has {
		vals, err := wp.ToFloat64Array()
		if err != nil {
			return nil, err
		}
		cs.WhitePoint = vals
	}
	if bp, has := core.TraceToDirectObject(dict.Get("BlackPoint")).(*core.PdfObjectArray); has {
		vals, err := bp.ToFloat64Array()
		if err != nil {
			return nil, err
		}
		cs.BlackPoint = vals
	}
	if r, has := core.TraceToDirectObject(dict.Get("Range")).(*core.PdfObjectArray); has {
		vals, err := r.ToFloat64Array()
		if err != nil {
			return nil, err
		}
		cs.Range = vals
	}
	return cs, nil
}

func (cs *PdfColorspaceLab) String() string        { return "Lab" }
func (cs *PdfColorspaceLab) GetNumComponents() int { return 3 }

// PdfColorspaceICCBased is the ICC-profile-backed colorspace identity. Only the
// component count (`N`) is recorded; the embedded ICC profile stream is never
// parsed since text extraction never evaluates color.
type PdfColorspaceICCBased struct {
	N         int
	Alternate PdfColorspace
}

func newPdfColorspaceICCBasedFromPdfObject(arr *core.PdfObjectArray) (*PdfColorspaceICCBased, error) {
	if arr.Len() < 2 {
		return nil, ErrTypeCheck
	}
	stream, ok := core.GetStream(arr.Get(1))
	if !ok {
		return nil, ErrTypeCheck
	}
	dict := stream.PdfObjectDictionary

	n, ok := core.GetInt(dict.Get("N"))
	if !ok {
		return nil, ErrRequiredAttributeMissing
	}
	cs := &PdfColorspaceICCBased{N: int(*n)}

	if altObj := dict.Get("Alternate"); altObj != nil {
		alt, err := NewPdfColorspaceFromPdfObject(altObj)
		if err == nil {
			cs.Alternate = alt
		}
	}

	return cs, nil
}

func (cs *PdfColorspaceICCBased) String() string        { return "ICCBased" }
func (cs *PdfColorspaceICCBased) GetNumComponents() int { return cs.N }

// PdfColorspaceSpecialPattern is the Pattern colorspace identity.
type PdfColorspaceSpecialPattern struct {
	UnderlyingCS PdfColorspace
}

// NewPdfColorspaceSpecialPattern returns a new Pattern colorspace.
func NewPdfColorspaceSpecialPattern() *PdfColorspaceSpecialPattern {
	return &PdfColorspaceSpecialPattern{}
}

func (cs *PdfColorspaceSpecialPattern) String() string { return "Pattern" }
func (cs *PdfColorspaceSpecialPattern) GetNumComponents() int {
	if cs.UnderlyingCS != nil {
		return cs.UnderlyingCS.GetNumComponents()
	}
	return 0
}

// PdfColorspaceSpecialSeparation records a Separation colorspace's alternate
// space and tint-transform function. The alternate space is, per the PDF
// specification, recursively limited to a device-name colorspace or one of
// the named array variants above.
type PdfColorspaceSpecialSeparation struct {
	ColorantName  *core.PdfObjectName
	AlternateCS   PdfColorspace
	TintTransform PdfFunction
}

func newPdfColorspaceSeparationFromPdfObject(arr *core.PdfObjectArray) (*PdfColorspaceSpecialSeparation, error) {
	if arr.Len() != 4 {
		return nil, errRangeError
	}
	cs := &PdfColorspaceSpecialSeparation{}

	if name, ok := core.GetName(arr.Get(1)); ok {
		cs.ColorantName = name
	}

	altCS, err := NewPdfColorspaceFromPdfObject(arr.Get(2))
	if err != nil {
		return nil, err
	}
	cs.AlternateCS = altCS

	tintTransform, err := newPdfFunctionFromPdfObject(arr.Get(3))
	if err != nil {
		return nil, err
	}
	cs.TintTransform = tintTransform

	return cs, nil
}

func (cs *PdfColorspaceSpecialSeparation) String() string        { return "Separation" }
func (cs *PdfColorspaceSpecialSeparation) GetNumComponents() int { return 1 }

// PdfPageResourcesColorspaces holds the resolved PdfColorspace for each entry
// of a page's /Resources/ColorSpace dictionary, matching entry order and names.
type PdfPageResourcesColorspaces struct {
	Names       []string
	Colorspaces map[string]PdfColorspace
}

func newPdfPageResourcesColorspacesFromPdfObject(obj core.PdfObject) (*PdfPageResourcesColorspaces, error) {
	dict, ok := core.GetDict(obj)
	if !ok {
		return nil, ErrTypeCheck
	}

	colorspaces := &PdfPageResourcesColorspaces{
		Names:       []string{},
		Colorspaces: map[string]PdfColorspace{},
	}

	for _, csName := range dict.Keys() {
		csObj := dict.Get(csName)
		cs, err := NewPdfColorspaceFromPdfObject(csObj)
		if err != nil {
			common.Log.Debug("Skipping unresolvable colorspace %s: %v", csName, err)
			continue
		}
		colorspaces.Names = append(colorspaces.Names, string(csName))
		colorspaces.Colorspaces[string(csName)] = cs
	}

	return colorspaces, nil
}
