package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/ironsheep/pixel-inspector/internal/colormodel"
	"github.com/ironsheep/pixel-inspector/internal/placement"
	"github.com/ironsheep/pixel-inspector/internal/sampler"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "pixel_sample", "panel_place").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// Error kinds reported in the data of a -32000 response.
const (
	KindInvalidColor  = "invalid_color"
	KindOutOfBounds   = "out_of_bounds"
	KindDecodeFailure = "decode_failure"
	KindInternal      = "internal"
)

// ToolErrorData is the data member of a tool failure response.
type ToolErrorData struct {
	Kind   string                    `json:"kind"`
	Error  string                    `json:"error"`
	Bounds *sampler.OutOfBoundsError `json:"bounds,omitempty"`
}

// paramError marks a malformed or missing tool argument. It is reported as
// -32602 rather than a tool failure.
type paramError struct {
	msg string
}

func (e *paramError) Error() string { return e.msg }

func invalidParams(format string, args ...interface{}) error {
	return &paramError{msg: fmt.Sprintf(format, args...)}
}

// decodeArgs unmarshals tool arguments, reporting failures as invalid params.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return invalidParams("missing arguments")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return invalidParams("invalid arguments: %v", err)
	}
	return nil
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments return -32602. Tool execution errors return -32000 with a
// ToolErrorData whose kind lets the client choose between a fallback swatch
// and an error message.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		var pe *paramError
		if errors.As(err, &pe) || errors.Is(err, sampler.ErrInvalidArgument) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		data := classifyError(err)
		s.logger.Debug("tool failed",
			zap.String("tool", params.Name),
			zap.String("kind", data.Kind),
			zap.Error(err))
		return s.errorResponse(req.ID, codeToolFailure, "Tool execution failed", data)
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// classifyError maps a tool error to its reported kind.
func classifyError(err error) ToolErrorData {
	data := ToolErrorData{Kind: KindInternal, Error: err.Error()}
	var oob *sampler.OutOfBoundsError
	switch {
	case errors.As(err, &oob):
		data.Kind = KindOutOfBounds
		data.Bounds = oob
	case errors.Is(err, sampler.ErrDecodeFailure):
		data.Kind = KindDecodeFailure
	case errors.Is(err, colormodel.ErrInvalidColor):
		data.Kind = KindInvalidColor
	}
	return data
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "color_convert":
		return s.handleColorConvert(args)
	case "color_validate_hex":
		return s.handleColorValidateHex(args)
	case "pixel_sample":
		return s.handlePixelSample(args)
	case "pixel_sample_multi":
		return s.handlePixelSampleMulti(args)
	case "pixel_loupe":
		return s.handlePixelLoupe(args)
	case "pixel_cache_stats":
		return s.handlePixelCacheStats()
	case "pixel_cache_clear":
		return s.handlePixelCacheClear(args)
	case "panel_place":
		return s.handlePanelPlace(args)
	default:
		return nil, invalidParams("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Color Handlers ===

// ColorResult is a color in every representation plus CSS strings.
type ColorResult struct {
	colormodel.Color
	RGBString string `json:"rgb_string"`
	HSLString string `json:"hsl_string"`
}

func newColorResult(c colormodel.Color) ColorResult {
	return ColorResult{Color: c, RGBString: c.RGBString(), HSLString: c.HSLString()}
}

type colorConvertArgs struct {
	Hex *string `json:"hex,omitempty"`
	RGB *struct {
		R float64 `json:"r"`
		G float64 `json:"g"`
		B float64 `json:"b"`
	} `json:"rgb,omitempty"`
	HSL *struct {
		H float64 `json:"h"`
		S float64 `json:"s"`
		L float64 `json:"l"`
	} `json:"hsl,omitempty"`
}

func (s *Server) handleColorConvert(args json.RawMessage) (interface{}, error) {
	var a colorConvertArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	given := 0
	for _, set := range []bool{a.Hex != nil, a.RGB != nil, a.HSL != nil} {
		if set {
			given++
		}
	}
	if given != 1 {
		return nil, invalidParams("exactly one of hex, rgb or hsl is required, got %d", given)
	}

	var (
		c   colormodel.Color
		err error
	)
	switch {
	case a.Hex != nil:
		c, err = colormodel.FromHex(*a.Hex)
	case a.RGB != nil:
		var rgb colormodel.RGBColor
		if rgb, err = colormodel.RoundRGB(a.RGB.R, a.RGB.G, a.RGB.B); err == nil {
			c, err = colormodel.FromRGB(rgb)
		}
	default:
		var hsl colormodel.HSLColor
		if hsl, err = colormodel.RoundHSL(a.HSL.H, a.HSL.S, a.HSL.L); err == nil {
			c, err = colormodel.FromHSL(hsl)
		}
	}
	if err != nil {
		return nil, err
	}
	return newColorResult(c), nil
}

type colorValidateHexArgs struct {
	Hex string `json:"hex"`
}

// HexValidation reports whether a string is a usable hex color.
type HexValidation struct {
	Input      string `json:"input"`
	Valid      bool   `json:"valid"`
	Normalized string `json:"normalized,omitempty"`
}

func (s *Server) handleColorValidateHex(args json.RawMessage) (interface{}, error) {
	var a colorValidateHexArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	result := HexValidation{Input: a.Hex, Valid: colormodel.IsValidHex(a.Hex)}
	if result.Valid {
		norm, err := colormodel.NormalizeHex(a.Hex)
		if err != nil {
			return nil, err
		}
		result.Normalized = norm
	}
	return result, nil
}

// === Pixel Sampling Handlers ===

// PixelResult is one sampled pixel as returned to the client.
type PixelResult struct {
	sampler.SampledPixel
	Label     string `json:"label,omitempty"`
	RGBString string `json:"rgb_string"`
	HSLString string `json:"hsl_string"`
}

func newPixelResult(px sampler.SampledPixel, label string) PixelResult {
	return PixelResult{
		SampledPixel: px,
		Label:        label,
		RGBString:    px.Color.RGBString(),
		HSLString:    px.Color.HSLString(),
	}
}

type pixelSampleArgs struct {
	Path          string `json:"path"`
	X             int    `json:"x"`
	Y             int    `json:"y"`
	DisplayWidth  int    `json:"display_width"`
	DisplayHeight int    `json:"display_height"`
}

func (s *Server) handlePixelSample(args json.RawMessage) (interface{}, error) {
	var a pixelSampleArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidParams("path is required")
	}

	var src sampler.Source = sampler.NewFileSource(a.Path)
	if a.DisplayWidth > 0 && a.DisplayHeight > 0 {
		src = sampler.WithNominalSize(src, a.DisplayWidth, a.DisplayHeight)
	}
	px, err := s.sampler.ExtractAt(src, a.X, a.Y)
	if err != nil {
		return nil, err
	}
	return newPixelResult(*px, ""), nil
}

type pixelSampleMultiArgs struct {
	Path   string `json:"path"`
	Points []struct {
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Label string `json:"label,omitempty"`
	} `json:"points"`
}

// MultiSampleResult is the ordered result of pixel_sample_multi.
type MultiSampleResult struct {
	Path   string        `json:"path"`
	Pixels []PixelResult `json:"pixels"`
}

func (s *Server) handlePixelSampleMulti(args json.RawMessage) (interface{}, error) {
	var a pixelSampleMultiArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidParams("path is required")
	}
	if len(a.Points) == 0 {
		return nil, invalidParams("at least one point is required")
	}

	points := make([]image.Point, len(a.Points))
	for i, p := range a.Points {
		points[i] = image.Pt(p.X, p.Y)
	}
	pixels, err := s.sampler.ExtractMany(sampler.NewFileSource(a.Path), points)
	if err != nil {
		return nil, err
	}

	result := MultiSampleResult{Path: a.Path, Pixels: make([]PixelResult, len(pixels))}
	for i, px := range pixels {
		result.Pixels[i] = newPixelResult(px, a.Points[i].Label)
	}
	return result, nil
}

type pixelLoupeArgs struct {
	Path   string `json:"path"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Radius int    `json:"radius"`
	Zoom   int    `json:"zoom"`
}

func (s *Server) handlePixelLoupe(args json.RawMessage) (interface{}, error) {
	var a pixelLoupeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidParams("path is required")
	}
	return s.sampler.Loupe(sampler.NewFileSource(a.Path), a.X, a.Y, a.Radius, a.Zoom)
}

// CacheStats describes the pixel and surface caches.
type CacheStats struct {
	Size     int           `json:"size"`
	Capacity int           `json:"capacity"`
	Images   int           `json:"decoded_images"`
	Decodes  int           `json:"decodes"`
	Counters sampler.Stats `json:"counters"`
}

func (s *Server) handlePixelCacheStats() (interface{}, error) {
	return CacheStats{
		Size:     s.sampler.CacheSize(),
		Capacity: s.sampler.Capacity(),
		Images:   s.sampler.Surfaces().Len(),
		Decodes:  s.sampler.Surfaces().Decodes(),
		Counters: s.sampler.Stats(),
	}, nil
}

type pixelCacheClearArgs struct {
	Path string `json:"path"`
}

// handlePixelCacheClear empties both caches, or only the entries for one
// file when a path is given.
func (s *Server) handlePixelCacheClear(args json.RawMessage) (interface{}, error) {
	var a pixelCacheClearArgs
	if len(args) > 0 {
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
	}
	if a.Path != "" {
		cleared := s.sampler.Forget(sampler.NewFileSource(a.Path))
		return map[string]interface{}{"cleared": cleared, "path": a.Path}, nil
	}

	cleared := s.sampler.CacheSize()
	s.sampler.ClearCache()
	s.sampler.Surfaces().Clear()
	s.logger.Debug("caches cleared", zap.Int("pixels", cleared))
	return map[string]interface{}{"cleared": cleared}, nil
}

// === Panel Placement Handler ===

type rectArgs struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r *rectArgs) rect() placement.Rect {
	return placement.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

type panelPlaceArgs struct {
	Region        *rectArgs `json:"region"`
	Container     *rectArgs `json:"container"`
	PreferredSide string    `json:"preferred_side"`
	PanelWidth    float64   `json:"panel_width"`
	PanelHeight   float64   `json:"panel_height"`
	Compact       bool      `json:"compact"`
}

// PlacementResult is a placement plus the panel rectangle it implies.
type PlacementResult struct {
	placement.Placement
	Bounds placement.Rect `json:"bounds"`
}

func (s *Server) handlePanelPlace(args json.RawMessage) (interface{}, error) {
	var a panelPlaceArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Region == nil || a.Container == nil {
		return nil, invalidParams("region and container are required")
	}

	pref := placement.PreferAuto
	switch placement.Preference(a.PreferredSide) {
	case "", placement.PreferAuto:
	case placement.PreferLeft, placement.PreferRight:
		pref = placement.Preference(a.PreferredSide)
	default:
		return nil, invalidParams("preferred_side must be auto, left or right, got %q", a.PreferredSide)
	}

	p := s.placer.Place(a.Region.rect(), a.Container.rect(), pref,
		placement.Size{Width: a.PanelWidth, Height: a.PanelHeight}, a.Compact)
	if p.Degraded {
		s.logger.Debug("no side fits panel", zap.String("side", string(p.Side)))
	}
	return PlacementResult{Placement: p, Bounds: p.Bounds()}, nil
}
