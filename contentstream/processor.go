/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package contentstream

import (
	"errors"
	"fmt"

	"github.com/milovec/pdftext/common"
	"github.com/milovec/pdftext/core"
	"github.com/milovec/pdftext/internal/textencoding"
	"github.com/milovec/pdftext/internal/transform"
	"github.com/milovec/pdftext/model"
)

// TextState holds the PDF text state parameters (table 104 of the PDF spec). It is part of the
// graphics state and is saved/restored by q/Q, unlike the text matrix and text line matrix which
// are reset only by BT and the text positioning operators.
type TextState struct {
	Font        *model.PdfFont
	FontSize    float64
	CharSpacing float64
	WordSpacing float64
	Hscale      float64 // 1.0 = 100%.
	Leading     float64
	Rise        float64
	RenderMode  int64
}

// GraphicsState is a basic graphics state implementation for PDF processing.
// Initially only implementing and tracking a portion of the information specified. Easy to add more.
type GraphicsState struct {
	ColorspaceStroking    model.PdfColorspace
	ColorspaceNonStroking model.PdfColorspace
	ColorStroking         []float64
	ColorNonStroking      []float64
	LineWidth             float64
	CTM                   transform.Matrix
	TextState             TextState
}

// GraphicStateStack represents a stack of GraphicsState.
type GraphicStateStack []GraphicsState

// Push pushes `gs` on the `gsStack`.
func (gsStack *GraphicStateStack) Push(gs GraphicsState) {
	*gsStack = append(*gsStack, gs)
}

// Pop pops and returns the topmost GraphicsState off the `gsStack`.
func (gsStack *GraphicStateStack) Pop() GraphicsState {
	gs := (*gsStack)[len(*gsStack)-1]
	*gsStack = (*gsStack)[:len(*gsStack)-1]
	return gs
}

// Transform returns coordinates x, y transformed by the CTM.
func (gs *GraphicsState) Transform(x, y float64) (float64, float64) {
	return gs.CTM.Transform(x, y)
}

// PathOp is a single path-construction operation recorded while processing a content stream.
// Points contains the op's single point for MoveTo/LineTo ("m"/"l") and the three
// control/end points for CurveTo ("c"); Close ("h") carries no points.
type PathOp struct {
	Op     byte
	Points []transform.Point
}

// Path-construction operator tags.
const (
	PathOpMoveTo  = 'm'
	PathOpLineTo  = 'l'
	PathOpCurveTo = 'c'
	PathOpClose   = 'h'
)

// Path is the sequence of path-construction operators accumulated since the last path-painting
// or path-clearing operator.
type Path []PathOp

// OutputHandler receives the interpreter events needed to reconstruct page text and vector paint
// operations. It mirrors the output-sink capability set: begin_word/end_word/end_line bracket
// show-text runs, output_character fires once per decoded glyph, and stroke/fill fire once per
// path-painting operator with the path already expressed in its local (pre-CTM) coordinates.
type OutputHandler interface {
	BeginWord()
	EndWord()
	EndLine()
	OutputCharacter(trm transform.Matrix, width, spacing, fontSize float64, text string)
	Stroke(ctm transform.Matrix, cs model.PdfColorspace, color []float64, path Path)
	Fill(ctm transform.Matrix, cs model.PdfColorspace, color []float64, path Path)
}

// ContentStreamProcessor defines a data structure and methods for processing a content stream, keeping track of the
// current graphics state, and allowing external handlers to define their own functions as a part of the processing,
// for example rendering or extracting certain information.
type ContentStreamProcessor struct {
	graphicsStack GraphicStateStack
	operations    []*ContentStreamOperation
	graphicsState GraphicsState

	handlers     []handlerEntry
	currentIndex int

	// Output is invoked for show-text and path-painting events. May be nil, in which case those
	// events are silently dropped (only the generic per-operand handlers below still run).
	Output OutputHandler

	// FlipCTM is the fixed y-flip transform derived from the page's MediaBox, made available to
	// Output implementations that need to convert text space into a top-down coordinate system.
	FlipCTM transform.Matrix

	// tm and tlm are the text matrix and text line matrix. They are interpreter-level state, not
	// part of GraphicsState, and are therefore not affected by q/Q - only by BT and the text
	// positioning operators (Td, TD, Tm, T*).
	tm  transform.Matrix
	tlm transform.Matrix

	// mcStack tracks BMC/BDC...EMC nesting for balance only.
	mcStack []string

	// path is the path under construction since the last painting/clearing operator.
	path Path

	// fontCache caches fonts resolved by resource name. It is created with the processor and is
	// shared by Process and any nested Do recursion it spawns.
	fontCache map[string]*model.PdfFont
}

// HandlerFunc is the function syntax that the ContentStreamProcessor handler must implement.
type HandlerFunc func(op *ContentStreamOperation, gs GraphicsState, resources *model.PdfPageResources) error

type handlerEntry struct {
	Condition HandlerConditionEnum
	Operand   string
	Handler   HandlerFunc
}

// HandlerConditionEnum represents the type of operand content stream processor (handler).
// The handler may process a single specific named operand or all operands.
type HandlerConditionEnum int

// Handler types.
const (
	HandlerConditionEnumOperand     HandlerConditionEnum = iota // Single (specific) operand.
	HandlerConditionEnumAllOperands                             // All operands.
)

// All returns true if `hce` is equivalent to HandlerConditionEnumAllOperands.
func (hce HandlerConditionEnum) All() bool {
	return hce == HandlerConditionEnumAllOperands
}

// Operand returns true if `hce` is equivalent to HandlerConditionEnumOperand.
func (hce HandlerConditionEnum) Operand() bool {
	return hce == HandlerConditionEnumOperand
}

// NewContentStreamProcessor returns a new ContentStreamProcessor for operations `ops`.
func NewContentStreamProcessor(ops []*ContentStreamOperation) *ContentStreamProcessor {
	csp := ContentStreamProcessor{}
	csp.graphicsStack = GraphicStateStack{}

	gs := GraphicsState{}
	gs.TextState.Hscale = 1.0

	csp.graphicsState = gs
	csp.tm = transform.IdentityMatrix()
	csp.tlm = transform.IdentityMatrix()
	csp.FlipCTM = transform.IdentityMatrix()

	csp.handlers = []handlerEntry{}
	csp.currentIndex = 0
	csp.operations = ops
	csp.fontCache = map[string]*model.PdfFont{}

	return &csp
}

// AddHandler adds a new ContentStreamProcessor `handler` of type `condition` for `operand`.
func (proc *ContentStreamProcessor) AddHandler(condition HandlerConditionEnum, operand string, handler HandlerFunc) {
	entry := handlerEntry{}
	entry.Condition = condition
	entry.Operand = operand
	entry.Handler = handler
	proc.handlers = append(proc.handlers, entry)
}

func (proc *ContentStreamProcessor) getColorspace(name string, resources *model.PdfPageResources) (model.PdfColorspace, error) {
	switch name {
	case "DeviceGray":
		return model.NewPdfColorspaceDeviceGray(), nil
	case "DeviceRGB":
		return model.NewPdfColorspaceDeviceRGB(), nil
	case "DeviceCMYK":
		return model.NewPdfColorspaceDeviceCMYK(), nil
	case "Pattern":
		return model.NewPdfColorspaceSpecialPattern(), nil
	}

	// Next check the colorspace dictionary.
	cs, has := resources.GetColorspaceByName(core.PdfObjectName(name))
	if has {
		return cs, nil
	}

	// Lastly check other potential colormaps, named directly with no backing resource
	// dictionary entry (non-conformant but seen in the wild): fall back to identity defaults.
	switch name {
	case "CalGray":
		return &model.PdfColorspaceCalGray{Gamma: 1}, nil
	case "CalRGB":
		return &model.PdfColorspaceCalRGB{}, nil
	case "Lab":
		return &model.PdfColorspaceLab{}, nil
	}

	// Otherwise unsupported.
	common.Log.Debug("Unknown colorspace requested: %s", name)
	return nil, fmt.Errorf("unsupported colorspace: %s", name)
}

// getInitialColor returns the all-zero color vector for a freshly-selected colorspace. The
// text-extraction path never evaluates color to device pixels, so the initial value is simply a
// zero vector of the colorspace's component count; a Pattern colorspace has no color vector.
func (proc *ContentStreamProcessor) getInitialColor(cs model.PdfColorspace) ([]float64, error) {
	if isPatternCS(cs) {
		return nil, nil
	}
	return make([]float64, cs.GetNumComponents()), nil
}

// colorFromParams captures the raw numeric operand vector of an SC/SCN/sc/scn/G/g/RG/rg/K/k
// operator, per §4.8: colors are recorded, never evaluated.
func colorFromParams(params []core.PdfObject) ([]float64, error) {
	return core.GetNumbersAsFloat(params)
}

// Process processes the entire list of operations. Maintains the graphics state that is passed to any
// handlers that are triggered during processing (either on specific operators or all).
func (proc *ContentStreamProcessor) Process(resources *model.PdfPageResources) error {
	// Initialize graphics state
	proc.graphicsState.ColorspaceStroking = model.NewPdfColorspaceDeviceGray()
	proc.graphicsState.ColorspaceNonStroking = model.NewPdfColorspaceDeviceGray()
	proc.graphicsState.ColorStroking = make([]float64, 1)
	proc.graphicsState.ColorNonStroking = make([]float64, 1)
	proc.graphicsState.CTM = transform.IdentityMatrix()
	proc.graphicsState.TextState.Hscale = 1.0

	return proc.processOperations(proc.operations, resources)
}

func (proc *ContentStreamProcessor) processOperations(ops []*ContentStreamOperation, resources *model.PdfPageResources) error {
	for _, op := range ops {
		var err error

		// Internal handling.
		switch op.Operand {
		case "q":
			proc.graphicsStack.Push(proc.graphicsState)
		case "Q":
			if len(proc.graphicsStack) == 0 {
				common.Log.Debug("WARN: invalid `Q` operator. Graphics state stack is empty. Skipping.")
				continue
			}
			proc.graphicsState = proc.graphicsStack.Pop()

		// Color operations (Table 74 p. 179)
		case "CS":
			err = proc.handleCommand_CS(op, resources)
		case "cs":
			err = proc.handleCommand_cs(op, resources)
		case "SC":
			err = proc.handleCommand_SC(op, resources)
		case "SCN":
			err = proc.handleCommand_SCN(op, resources)
		case "sc":
			err = proc.handleCommand_sc(op, resources)
		case "scn":
			err = proc.handleCommand_scn(op, resources)
		case "G":
			err = proc.handleCommand_G(op, resources)
		case "g":
			err = proc.handleCommand_g(op, resources)
		case "RG":
			err = proc.handleCommand_RG(op, resources)
		case "rg":
			err = proc.handleCommand_rg(op, resources)
		case "K":
			err = proc.handleCommand_K(op, resources)
		case "k":
			err = proc.handleCommand_k(op, resources)
		case "w":
			err = proc.handleCommand_w(op)
		case "cm":
			err = proc.handleCommand_cm(op)
		case "gs":
			err = proc.handleCommand_gs(op, resources)

		// Text state.
		case "BT":
			proc.tm = transform.IdentityMatrix()
			proc.tlm = transform.IdentityMatrix()
		case "ET":
			// No-op: graphics state is unaffected by ET.
		case "Tc":
			err = proc.handleCommand_Tc(op)
		case "Tw":
			err = proc.handleCommand_Tw(op)
		case "Tz":
			err = proc.handleCommand_Tz(op)
		case "TL":
			err = proc.handleCommand_TL(op)
		case "Ts":
			err = proc.handleCommand_Ts(op)
		case "Tr":
			err = proc.handleCommand_Tr(op)
		case "Tf":
			err = proc.handleCommand_Tf(op, resources)
		case "Td":
			err = proc.handleCommand_Td(op)
		case "TD":
			err = proc.handleCommand_TD(op)
		case "T*":
			err = proc.handleCommand_Tstar(op)
		case "Tm":
			err = proc.handleCommand_Tm(op)

		// Text showing.
		case "Tj":
			err = proc.handleCommand_Tj(op)
		case "TJ":
			err = proc.handleCommand_TJ(op)
		case "'":
			err = proc.handleCommand_quote(op)
		case "\"":
			err = proc.handleCommand_dquote(op)

		// Path construction.
		case "m":
			err = proc.handleCommand_m(op)
		case "l":
			err = proc.handleCommand_l(op)
		case "c":
			err = proc.handleCommand_c(op)
		case "v":
			err = proc.handleCommand_v(op)
		case "y":
			err = proc.handleCommand_y(op)
		case "h":
			proc.path = append(proc.path, PathOp{Op: PathOpClose})
		case "re":
			err = proc.handleCommand_re(op)

		// Path painting.
		case "S":
			proc.emitStroke()
			proc.path = nil
		case "s":
			proc.path = append(proc.path, PathOp{Op: PathOpClose})
			proc.emitStroke()
			proc.path = nil
		case "F", "f", "f*":
			proc.emitFill()
			proc.path = nil
		case "B", "B*":
			proc.emitFill()
			proc.emitStroke()
			proc.path = nil
		case "b", "b*":
			proc.path = append(proc.path, PathOp{Op: PathOpClose})
			proc.emitFill()
			proc.emitStroke()
			proc.path = nil
		case "n":
			proc.path = nil

		// Marked content.
		case "BMC":
			proc.mcStack = append(proc.mcStack, "")
		case "BDC":
			tag := ""
			if len(op.Params) > 0 {
				if name, ok := op.Params[0].(*core.PdfObjectName); ok {
					tag = string(*name)
				}
			}
			proc.mcStack = append(proc.mcStack, tag)
		case "EMC":
			if len(proc.mcStack) == 0 {
				common.Log.Debug("WARN: unbalanced EMC, skipping")
			} else {
				proc.mcStack = proc.mcStack[:len(proc.mcStack)-1]
			}

		// XObjects.
		case "Do":
			err = proc.handleCommand_Do(op, resources)
		}
		if err != nil {
			common.Log.Debug("Processor handling error (%s): %v", op.Operand, err)
			common.Log.Debug("Operand: %#v", op.Operand)
			return err
		}

		// Check if have external handler also, and process if so.
		for _, entry := range proc.handlers {
			var err error
			if entry.Condition.All() {
				err = entry.Handler(op, proc.graphicsState, resources)
			} else if entry.Condition.Operand() && op.Operand == entry.Operand {
				err = entry.Handler(op, proc.graphicsState, resources)
			}
			if err != nil {
				common.Log.Debug("Processor handler error: %v", err)
				return err
			}
		}
	}

	return nil
}

// CS: Set the current color space for stroking operations.
func (proc *ContentStreamProcessor) handleCommand_CS(op *ContentStreamOperation, resources *model.PdfPageResources) error {
	if len(op.Params) < 1 {
		common.Log.Debug("Invalid cs command, skipping over")
		return errors.New("too few parameters")
	}
	if len(op.Params) > 1 {
		common.Log.Debug("cs command with too many parameters - continuing")
		return errors.New("too many parameters")
	}
	name, ok := op.Params[0].(*core.PdfObjectName)
	if !ok {
		common.Log.Debug("ERROR: cs command with invalid parameter, skipping over")
		return errors.New("type check error")
	}
	// Set the current color space to use for stroking operations.
	// Either device based or referring to resource dict.
	cs, err := proc.getColorspace(string(*name), resources)
	if err != nil {
		return err
	}
	proc.graphicsState.ColorspaceStroking = cs

	// Set initial color.
	color, err := proc.getInitialColor(cs)
	if err != nil {
		return err
	}
	proc.graphicsState.ColorStroking = color

	return nil
}

// cs: Set the current color space for non-stroking operations.
func (proc *ContentStreamProcessor) handleCommand_cs(op *ContentStreamOperation, resources *model.PdfPageResources) error {
	if len(op.Params) < 1 {
		common.Log.Debug("Invalid CS command, skipping over")
		return errors.New("too few parameters")
	}
	if len(op.Params) > 1 {
		common.Log.Debug("CS command with too many parameters - continuing")
		return errors.New("too many parameters")
	}
	name, ok := op.Params[0].(*core.PdfObjectName)
	if !ok {
		common.Log.Debug("ERROR: CS command with invalid parameter, skipping over")
		return errors.New("type check error")
	}
	// Set the current color space to use for non-stroking operations.
	// Either device based or referring to resource dict.
	cs, err := proc.getColorspace(string(*name), resources)
	if err != nil {
		return err
	}
	proc.graphicsState.ColorspaceNonStroking = cs

	// Set initial color.
	color, err := proc.getInitialColor(cs)
	if err != nil {
		return err
	}
	proc.graphicsState.ColorNonStroking = color

	return nil
}

// SC: Set the color to use for stroking operations in a device, CIE-based or Indexed colorspace. (not ICC based)
func (proc *ContentStreamProcessor) handleCommand_SC(op *ContentStreamOperation, resources *model.PdfPageResources) error {
	// For DeviceGray, CalGray, Indexed: one operand is required
	// For DeviceRGB, CalRGB, Lab: 3 operands required

	cs := proc.graphicsState.ColorspaceStroking
	if len(op.Params) != cs.GetNumComponents() {
		common.Log.Debug("Invalid number of parameters for SC")
		common.Log.Debug("Number %d not matching colorspace %T", len(op.Params), cs)
		return errors.New("invalid number of parameters")
	}

	color, err := colorFromParams(op.Params)
	if err != nil {
		return err
	}

	proc.graphicsState.ColorStroking = color
	return nil
}

func isPatternCS(cs model.PdfColorspace) bool {
	_, isPattern := cs.(*model.PdfColorspaceSpecialPattern)
	return isPattern
}

// SCN: Same as SC but also supports Pattern, Separation, DeviceN and ICCBased color spaces.
func (proc *ContentStreamProcessor) handleCommand_SCN(op *ContentStreamOperation, resources *model.PdfPageResources) error {
	cs := proc.graphicsState.ColorspaceStroking

	if !isPatternCS(cs) {
		if len(op.Params) != cs.GetNumComponents() {
			common.Log.Debug("Invalid number of parameters for SC")
			common.Log.Debug("Number %d not matching colorspace %T", len(op.Params), cs)
			return errors.New("invalid number of parameters")
		}
	}

	color, err := colorFromParams(op.Params)
	if err != nil {
		return err
	}

	proc.graphicsState.ColorStroking = color

	return nil
}

// sc: Same as SC except used for non-stroking operations.
func (proc *ContentStreamProcessor) handleCommand_sc(op *ContentStreamOperation, resources *model.PdfPageResources) error {
	cs := proc.graphicsState.ColorspaceNonStroking

	if !isPatternCS(cs) {
		if len(op.Params) != cs.GetNumComponents() {
			common.Log.Debug("Invalid number of parameters for SC")
			common.Log.Debug("Number %d not matching colorspace %T", len(op.Params), cs)
			return errors.New("invalid number of parameters")
		}
	}

	color, err := colorFromParams(op.Params)
	if err != nil {
		return err
	}

	proc.graphicsState.ColorNonStroking = color

	return nil
}

// scn: Same as SCN except used for non-stroking operations.
func (proc *ContentStreamProcessor) handleCommand_scn(op *ContentStreamOperation, resources *model.PdfPageResources) error {
	cs := proc.graphicsState.ColorspaceNonStroking

	if !isPatternCS(cs) {
		if len(op.Params) != cs.GetNumComponents() {
			common.Log.Debug("Invalid number of parameters for SC")
			common.Log.Debug("Number %d not matching colorspace %T", len(op.Params), cs)
			return errors.New("invalid number of parameters")
		}
	}

	color, err := colorFromParams(op.Params)
	if err != nil {
		common.Log.Debug("ERROR: Fail to get color from params: %+v (CS is %+v)", op.Params, cs)
		return err
	}

	proc.graphicsState.ColorNonStroking = color

	return nil
}

// G: Set the stroking colorspace to DeviceGray, and the color to the specified graylevel (range [0-1]).
// gray G
func (proc *ContentStreamProcessor) handleCommand_G(op *ContentStreamOperation, resources *model.PdfPageResources) error {
	cs := model.NewPdfColorspaceDeviceGray()
	if len(op.Params) != cs.GetNumComponents() {
		common.Log.Debug("Invalid number of parameters for SC")
		common.Log.Debug("Number %d not matching colorspace %T", len(op.Params), cs)
		return errors.New("invalid number of parameters")
	}

	color, err := colorFromParams(op.Params)
	if err != nil {
		return err
	}

	proc.graphicsState.ColorspaceStroking = cs
	proc.graphicsState.ColorStroking = color

	return nil
}

// g: Same as G, but for non-stroking colorspace and color (range [0-1]).
// gray g
func (proc *ContentStreamProcessor) handleCommand_g(op *ContentStreamOperation, resources *model.PdfPageResources) error {
	cs := model.NewPdfColorspaceDeviceGray()
	if len(op.Params) != cs.GetNumComponents() {
		common.Log.Debug("Invalid number of parameters for g")
		common.Log.Debug("Number %d not matching colorspace %T", len(op.Params), cs)
		return errors.New("invalid number of parameters")
	}

	color, err := colorFromParams(op.Params)
	if err != nil {
		common.Log.Debug("ERROR: handleCommand_g Invalid params. cs=%T op=%s err=%v", cs, op, err)
		return err
	}

	proc.graphicsState.ColorspaceNonStroking = cs
	proc.graphicsState.ColorNonStroking = color

	return nil
}

// RG: Sets the stroking colorspace to DeviceRGB and the stroking color to r,g,b. [0-1] ranges.
// r g b RG
func (proc *ContentStreamProcessor) handleCommand_RG(op *ContentStreamOperation, resources *model.PdfPageResources) error {
	cs := model.NewPdfColorspaceDeviceRGB()
	if len(op.Params) != cs.GetNumComponents() {
		common.Log.Debug("Invalid number of parameters for RG")
		common.Log.Debug("Number %d not matching colorspace %T", len(op.Params), cs)
		return errors.New("invalid number of parameters")
	}

	color, err := colorFromParams(op.Params)
	if err != nil {
		return err
	}

	proc.graphicsState.ColorspaceStroking = cs
	proc.graphicsState.ColorStroking = color

	return nil
}

// rg: Same as RG but for non-stroking colorspace, color.
func (proc *ContentStreamProcessor) handleCommand_rg(op *ContentStreamOperation, resources *model.PdfPageResources) error {
	cs := model.NewPdfColorspaceDeviceRGB()
	if len(op.Params) != cs.GetNumComponents() {
		common.Log.Debug("Invalid number of parameters for SC")
		common.Log.Debug("Number %d not matching colorspace %T", len(op.Params), cs)
		return errors.New("invalid number of parameters")
	}

	color, err := colorFromParams(op.Params)
	if err != nil {
		return err
	}

	proc.graphicsState.ColorspaceNonStroking = cs
	proc.graphicsState.ColorNonStroking = color

	return nil
}

// K: Sets the stroking colorspace to DeviceCMYK and the stroking color to c,m,y,k. [0-1] ranges.
// c m y k K
func (proc *ContentStreamProcessor) handleCommand_K(op *ContentStreamOperation, resources *model.PdfPageResources) error {
	cs := model.NewPdfColorspaceDeviceCMYK()
	if len(op.Params) != cs.GetNumComponents() {
		common.Log.Debug("Invalid number of parameters for SC")
		common.Log.Debug("Number %d not matching colorspace %T", len(op.Params), cs)
		return errors.New("invalid number of parameters")
	}

	color, err := colorFromParams(op.Params)
	if err != nil {
		return err
	}

	proc.graphicsState.ColorspaceStroking = cs
	proc.graphicsState.ColorStroking = color

	return nil
}

// k: Same as K but for non-stroking colorspace, color.
func (proc *ContentStreamProcessor) handleCommand_k(op *ContentStreamOperation, resources *model.PdfPageResources) error {
	cs := model.NewPdfColorspaceDeviceCMYK()
	if len(op.Params) != cs.GetNumComponents() {
		common.Log.Debug("Invalid number of parameters for SC")
		common.Log.Debug("Number %d not matching colorspace %T", len(op.Params), cs)
		return errors.New("invalid number of parameters")
	}

	color, err := colorFromParams(op.Params)
	if err != nil {
		return err
	}

	proc.graphicsState.ColorspaceNonStroking = cs
	proc.graphicsState.ColorNonStroking = color

	return nil
}

// w: set the line width.
func (proc *ContentStreamProcessor) handleCommand_w(op *ContentStreamOperation) error {
	if len(op.Params) != 1 {
		return errors.New("invalid number of parameters for w")
	}
	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil {
		return err
	}
	proc.graphicsState.LineWidth = f[0]
	return nil
}

// gs: look up a named ExtGState dictionary. A missing resource is logged; none of the
// dictionary's entries, SMask included, are applied to the graphics state.
func (proc *ContentStreamProcessor) handleCommand_gs(op *ContentStreamOperation, resources *model.PdfPageResources) error {
	if len(op.Params) != 1 {
		return errors.New("invalid number of parameters for gs")
	}
	name, ok := op.Params[0].(*core.PdfObjectName)
	if !ok {
		return errors.New("type check error")
	}
	_, has := resources.GetExtGState(*name)
	if !has {
		common.Log.Debug("ExtGState resource not found: %s", *name)
	}
	return nil
}

// cm: concatenates an affine transform to the CTM.
func (proc *ContentStreamProcessor) handleCommand_cm(op *ContentStreamOperation) error {
	if len(op.Params) != 6 {
		common.Log.Debug("ERROR: Invalid number of parameters for cm: %d", len(op.Params))
		panic("cm: arity mismatch")
	}

	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil {
		return err
	}
	m := transform.NewMatrix(f[0], f[1], f[2], f[3], f[4], f[5])
	proc.graphicsState.CTM.Concat(m)

	return nil
}

// Tc: set character spacing.
func (proc *ContentStreamProcessor) handleCommand_Tc(op *ContentStreamOperation) error {
	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil || len(f) != 1 {
		return errors.New("invalid Tc parameters")
	}
	proc.graphicsState.TextState.CharSpacing = f[0]
	return nil
}

// Tw: set word spacing.
func (proc *ContentStreamProcessor) handleCommand_Tw(op *ContentStreamOperation) error {
	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil || len(f) != 1 {
		return errors.New("invalid Tw parameters")
	}
	proc.graphicsState.TextState.WordSpacing = f[0]
	return nil
}

// Tz: set horizontal scaling (operand is a percentage).
func (proc *ContentStreamProcessor) handleCommand_Tz(op *ContentStreamOperation) error {
	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil || len(f) != 1 {
		return errors.New("invalid Tz parameters")
	}
	proc.graphicsState.TextState.Hscale = f[0] / 100.0
	return nil
}

// TL: set leading.
func (proc *ContentStreamProcessor) handleCommand_TL(op *ContentStreamOperation) error {
	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil || len(f) != 1 {
		return errors.New("invalid TL parameters")
	}
	proc.graphicsState.TextState.Leading = f[0]
	return nil
}

// Ts: set text rise.
func (proc *ContentStreamProcessor) handleCommand_Ts(op *ContentStreamOperation) error {
	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil || len(f) != 1 {
		return errors.New("invalid Ts parameters")
	}
	proc.graphicsState.TextState.Rise = f[0]
	return nil
}

// Tr: set text rendering mode.
func (proc *ContentStreamProcessor) handleCommand_Tr(op *ContentStreamOperation) error {
	if len(op.Params) != 1 {
		return errors.New("invalid Tr parameters")
	}
	i, ok := core.GetInt(op.Params[0])
	if !ok {
		return errors.New("type check error")
	}
	proc.graphicsState.TextState.RenderMode = int64(*i)
	return nil
}

// Tf: look up a font by resource name (caching it) and set the font size.
func (proc *ContentStreamProcessor) handleCommand_Tf(op *ContentStreamOperation, resources *model.PdfPageResources) error {
	if len(op.Params) != 2 {
		return errors.New("invalid Tf parameters")
	}
	name, ok := op.Params[0].(*core.PdfObjectName)
	if !ok {
		return errors.New("type check error")
	}
	fv, err := core.GetNumbersAsFloat(op.Params[1:])
	if err != nil {
		return err
	}

	font, err := proc.lookupFont(string(*name), resources)
	if err != nil {
		return err
	}

	proc.graphicsState.TextState.Font = font
	proc.graphicsState.TextState.FontSize = fv[0]
	return nil
}

// lookupFont resolves and caches a font by resource name, per the per-stream font cache.
func (proc *ContentStreamProcessor) lookupFont(name string, resources *model.PdfPageResources) (*model.PdfFont, error) {
	if font, ok := proc.fontCache[name]; ok {
		return font, nil
	}

	fontObj, has := resources.GetFontByName(core.PdfObjectName(name))
	if !has {
		return nil, fmt.Errorf("font resource not found: %s", name)
	}
	font, err := model.NewPdfFontFromPdfObject(fontObj)
	if err != nil {
		return nil, err
	}
	proc.fontCache[name] = font
	return font, nil
}

// Td: move to the start of the next line, offset by tx,ty from the start of the current line.
func (proc *ContentStreamProcessor) handleCommand_Td(op *ContentStreamOperation) error {
	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil || len(f) != 2 {
		panic("Td: arity mismatch")
	}
	proc.tlm.Concat(transform.TranslationMatrix(f[0], f[1]))
	proc.tm = proc.tlm
	proc.emitEndLine()
	return nil
}

// TD: as Td, but also sets leading to -ty.
func (proc *ContentStreamProcessor) handleCommand_TD(op *ContentStreamOperation) error {
	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil || len(f) != 2 {
		panic("TD: arity mismatch")
	}
	proc.graphicsState.TextState.Leading = -f[1]
	proc.tlm.Concat(transform.TranslationMatrix(f[0], f[1]))
	proc.tm = proc.tlm
	proc.emitEndLine()
	return nil
}

// T*: move to the start of the next line, equivalent to `Td 0 -leading`.
func (proc *ContentStreamProcessor) handleCommand_Tstar(op *ContentStreamOperation) error {
	leading := proc.graphicsState.TextState.Leading
	proc.tlm.Concat(transform.TranslationMatrix(0, -leading))
	proc.tm = proc.tlm
	proc.emitEndLine()
	return nil
}

// Tm: set the text matrix and text line matrix directly.
func (proc *ContentStreamProcessor) handleCommand_Tm(op *ContentStreamOperation) error {
	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil || len(f) != 6 {
		panic("Tm: arity mismatch")
	}
	m := transform.NewMatrix(f[0], f[1], f[2], f[3], f[4], f[5])
	proc.tlm = m
	proc.tm = m
	proc.emitEndLine()
	return nil
}

func (proc *ContentStreamProcessor) emitEndLine() {
	if proc.Output != nil {
		proc.Output.EndLine()
	}
}

func (proc *ContentStreamProcessor) emitStroke() {
	if proc.Output != nil {
		proc.Output.Stroke(proc.graphicsState.CTM, proc.graphicsState.ColorspaceStroking,
			proc.graphicsState.ColorStroking, proc.path)
	}
}

func (proc *ContentStreamProcessor) emitFill() {
	if proc.Output != nil {
		proc.Output.Fill(proc.graphicsState.CTM, proc.graphicsState.ColorspaceNonStroking,
			proc.graphicsState.ColorNonStroking, proc.path)
	}
}

// Tj: show text.
func (proc *ContentStreamProcessor) handleCommand_Tj(op *ContentStreamOperation) error {
	if len(op.Params) != 1 {
		panic("Tj: malformed operand")
	}
	str, ok := op.Params[0].(*core.PdfObjectString)
	if !ok {
		panic("Tj: malformed operand")
	}
	return proc.showText([]byte(str.Str()))
}

// TJ: show text with inter-glyph adjustments.
func (proc *ContentStreamProcessor) handleCommand_TJ(op *ContentStreamOperation) error {
	if len(op.Params) != 1 {
		panic("TJ: malformed operand")
	}
	arr, ok := op.Params[0].(*core.PdfObjectArray)
	if !ok {
		panic("TJ: malformed operand")
	}

	ts := &proc.graphicsState.TextState
	for _, elem := range arr.Elements() {
		switch v := elem.(type) {
		case *core.PdfObjectString:
			if err := proc.showText([]byte(v.Str())); err != nil {
				return err
			}
		case *core.PdfObjectFloat:
			proc.advanceBySpacing(-float64(*v) / 1000.0 * ts.FontSize * ts.Hscale)
		case *core.PdfObjectInteger:
			proc.advanceBySpacing(-float64(*v) / 1000.0 * ts.FontSize * ts.Hscale)
		}
	}
	return nil
}

// ': move to the next line and show text.
func (proc *ContentStreamProcessor) handleCommand_quote(op *ContentStreamOperation) error {
	if len(op.Params) != 1 {
		panic("': malformed operand")
	}
	str, ok := op.Params[0].(*core.PdfObjectString)
	if !ok {
		panic("': malformed operand")
	}
	if err := proc.handleCommand_Tstar(&ContentStreamOperation{Operand: "T*"}); err != nil {
		return err
	}
	return proc.showText([]byte(str.Str()))
}

// ": set word and character spacing, move to the next line, and show text.
func (proc *ContentStreamProcessor) handleCommand_dquote(op *ContentStreamOperation) error {
	if len(op.Params) != 3 {
		panic("\": malformed operand")
	}
	f, err := core.GetNumbersAsFloat(op.Params[:2])
	if err != nil {
		panic("\": malformed operand")
	}
	str, ok := op.Params[2].(*core.PdfObjectString)
	if !ok {
		panic("\": malformed operand")
	}
	proc.graphicsState.TextState.WordSpacing = f[0]
	proc.graphicsState.TextState.CharSpacing = f[1]
	if err := proc.handleCommand_Tstar(&ContentStreamOperation{Operand: "T*"}); err != nil {
		return err
	}
	return proc.showText([]byte(str.Str()))
}

// advanceBySpacing advances the text matrix by `tx` along x, used for TJ numeric adjustments.
func (proc *ContentStreamProcessor) advanceBySpacing(tx float64) {
	proc.tm.Concat(transform.TranslationMatrix(tx, 0))
}

// showText implements §4.7: iterates the font's character codes in `data`, computing the
// rendering matrix and advance for each, and invoking the output handler's OutputCharacter once
// per glyph.
func (proc *ContentStreamProcessor) showText(data []byte) error {
	ts := &proc.graphicsState.TextState
	font := ts.Font
	if font == nil {
		common.Log.Debug("ERROR: show-text with no font set, skipping")
		return nil
	}

	if proc.Output != nil {
		proc.Output.BeginWord()
	}

	charcodes := font.BytesToCharcodes(data)
	for _, code := range charcodes {
		tsm := transform.NewMatrix(ts.Hscale, 0, 0, 1, 0, ts.Rise)
		trm := proc.graphicsState.CTM
		trm.Concat(proc.tm)
		trm.Concat(tsm)

		w0 := 0.0
		if m, ok := font.GetCharMetrics(code); ok {
			w0 = m.Wx / 1000.0
		}

		spacing := ts.CharSpacing
		// Word spacing applies only to the single-byte code 32: every code took one byte
		// exactly when there are as many codes as bytes.
		if code == 32 && len(charcodes) == len(data) {
			spacing += ts.WordSpacing
		}

		texts, _, _ := font.CharcodesToStrings([]textencoding.CharCode{code})
		text := ""
		if len(texts) > 0 {
			text = texts[0]
		}
		if proc.Output != nil {
			proc.Output.OutputCharacter(trm, w0, spacing, ts.FontSize, text)
		}

		tx := ts.Hscale * (w0*ts.FontSize + spacing)
		proc.advanceBySpacing(tx)
	}

	if proc.Output != nil {
		proc.Output.EndWord()
	}
	return nil
}

// m: begin a new subpath at (x,y).
func (proc *ContentStreamProcessor) handleCommand_m(op *ContentStreamOperation) error {
	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil || len(f) != 2 {
		return errors.New("invalid m parameters")
	}
	proc.path = append(proc.path, PathOp{Op: PathOpMoveTo, Points: []transform.Point{{X: f[0], Y: f[1]}}})
	return nil
}

// l: append a straight line segment to (x,y).
func (proc *ContentStreamProcessor) handleCommand_l(op *ContentStreamOperation) error {
	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil || len(f) != 2 {
		return errors.New("invalid l parameters")
	}
	proc.path = append(proc.path, PathOp{Op: PathOpLineTo, Points: []transform.Point{{X: f[0], Y: f[1]}}})
	return nil
}

// c: append a cubic Bezier with both control points explicit.
func (proc *ContentStreamProcessor) handleCommand_c(op *ContentStreamOperation) error {
	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil || len(f) != 6 {
		return errors.New("invalid c parameters")
	}
	proc.path = append(proc.path, PathOp{Op: PathOpCurveTo, Points: []transform.Point{
		{X: f[0], Y: f[1]}, {X: f[2], Y: f[3]}, {X: f[4], Y: f[5]},
	}})
	return nil
}

// v: append a cubic Bezier using the current point as the first control point.
func (proc *ContentStreamProcessor) handleCommand_v(op *ContentStreamOperation) error {
	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil || len(f) != 4 {
		return errors.New("invalid v parameters")
	}
	cur := proc.currentPoint()
	proc.path = append(proc.path, PathOp{Op: PathOpCurveTo, Points: []transform.Point{
		cur, {X: f[0], Y: f[1]}, {X: f[2], Y: f[3]},
	}})
	return nil
}

// y: append a cubic Bezier using the endpoint as the second control point.
func (proc *ContentStreamProcessor) handleCommand_y(op *ContentStreamOperation) error {
	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil || len(f) != 4 {
		return errors.New("invalid y parameters")
	}
	end := transform.Point{X: f[2], Y: f[3]}
	proc.path = append(proc.path, PathOp{Op: PathOpCurveTo, Points: []transform.Point{
		{X: f[0], Y: f[1]}, end, end,
	}})
	return nil
}

// re: append a rectangle subpath.
func (proc *ContentStreamProcessor) handleCommand_re(op *ContentStreamOperation) error {
	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil || len(f) != 4 {
		return errors.New("invalid re parameters")
	}
	x, y, w, h := f[0], f[1], f[2], f[3]
	proc.path = append(proc.path,
		PathOp{Op: PathOpMoveTo, Points: []transform.Point{{X: x, Y: y}}},
		PathOp{Op: PathOpLineTo, Points: []transform.Point{{X: x + w, Y: y}}},
		PathOp{Op: PathOpLineTo, Points: []transform.Point{{X: x + w, Y: y + h}}},
		PathOp{Op: PathOpLineTo, Points: []transform.Point{{X: x, Y: y + h}}},
		PathOp{Op: PathOpClose},
	)
	return nil
}

// currentPoint returns the endpoint of the last path-construction operator, or the origin if the
// path is empty.
func (proc *ContentStreamProcessor) currentPoint() transform.Point {
	for i := len(proc.path) - 1; i >= 0; i-- {
		pts := proc.path[i].Points
		if len(pts) > 0 {
			return pts[len(pts)-1]
		}
	}
	return transform.Point{}
}

// Do: resolve an XObject and, for Form XObjects, recursively process its content stream. Image
// XObjects are acknowledged (the operand is consumed) but never decoded.
func (proc *ContentStreamProcessor) handleCommand_Do(op *ContentStreamOperation, resources *model.PdfPageResources) error {
	if len(op.Params) != 1 {
		return errors.New("invalid Do parameters")
	}
	name, ok := op.Params[0].(*core.PdfObjectName)
	if !ok {
		return errors.New("type check error")
	}

	stream, xtype := resources.GetXObjectByName(*name)
	if stream == nil {
		common.Log.Debug("XObject not found: %s", *name)
		return nil
	}
	if xtype != model.XObjectTypeForm {
		// Image XObjects: operand consumed, pixel data never decoded.
		return nil
	}

	xform, err := model.NewXObjectFormFromStream(stream)
	if err != nil {
		return err
	}

	formResources := resources
	if xform.Resources != nil {
		formResources = xform.Resources
	}

	savedCTM := proc.graphicsState.CTM
	if xform.Matrix != nil {
		farr, ok := core.GetArray(xform.Matrix)
		if ok && farr.Len() == 6 {
			f, err := core.GetNumbersAsFloat(farr.Elements())
			if err == nil {
				m := transform.NewMatrix(f[0], f[1], f[2], f[3], f[4], f[5])
				proc.graphicsState.CTM.Concat(m)
			}
		}
	}

	nestedParser := NewContentStreamParser(string(xform.Contents))
	nestedOps, err := nestedParser.Parse()
	if err != nil {
		proc.graphicsState.CTM = savedCTM
		return err
	}

	if err := proc.processOperations(*nestedOps, formResources); err != nil {
		proc.graphicsState.CTM = savedCTM
		return err
	}

	proc.graphicsState.CTM = savedCTM
	return nil
}
