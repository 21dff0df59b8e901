package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/pixel-inspector/internal/colormodel"
	"github.com/ironsheep/pixel-inspector/internal/placement"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	tmpFile, err := os.CreateTemp("", "handler-test-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

// callTool sends a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeResult unmarshals the text content of a successful tool response.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode result %q: %v", text, err)
	}
}

// toolErrorData asserts a -32000 response and returns its data.
func toolErrorData(t *testing.T, resp *MCPResponse) ToolErrorData {
	t.Helper()

	if resp.Error == nil {
		t.Fatal("expected an error response")
	}
	if resp.Error.Code != -32000 {
		t.Fatalf("Error code: got %d, want -32000 (%v)", resp.Error.Code, resp.Error.Data)
	}
	data, ok := resp.Error.Data.(ToolErrorData)
	if !ok {
		t.Fatalf("Error data: got %T, want ToolErrorData", resp.Error.Data)
	}
	return data
}

func expectInvalidParams(t *testing.T, resp *MCPResponse) {
	t.Helper()

	if resp.Error == nil {
		t.Fatal("expected an error response")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestColorConvert(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want ColorResult
	}{
		{
			"hex",
			map[string]interface{}{"hex": "#FF5733"},
			ColorResult{
				Color: colormodel.Color{
					Hex: "#FF5733",
					RGB: colormodel.RGBColor{R: 255, G: 87, B: 51},
					HSL: colormodel.HSLColor{H: 11, S: 100, L: 60},
				},
				RGBString: "rgb(255, 87, 51)",
				HSLString: "hsl(11, 100%, 60%)",
			},
		},
		{
			"fractional rgb rounds",
			map[string]interface{}{"rgb": map[string]float64{"r": 254.6, "g": 0.4, "b": 0}},
			ColorResult{
				Color: colormodel.Color{
					Hex: "#FF0000",
					RGB: colormodel.RGBColor{R: 255, G: 0, B: 0},
					HSL: colormodel.HSLColor{H: 0, S: 100, L: 50},
				},
				RGBString: "rgb(255, 0, 0)",
				HSLString: "hsl(0, 100%, 50%)",
			},
		},
		{
			"hsl",
			map[string]interface{}{"hsl": map[string]float64{"h": 120, "s": 100, "l": 50}},
			ColorResult{
				Color: colormodel.Color{
					Hex: "#00FF00",
					RGB: colormodel.RGBColor{R: 0, G: 255, B: 0},
					HSL: colormodel.HSLColor{H: 120, S: 100, L: 50},
				},
				RGBString: "rgb(0, 255, 0)",
				HSLString: "hsl(120, 100%, 50%)",
			},
		},
	}

	s := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ColorResult
			decodeResult(t, callTool(t, s, "color_convert", tt.args), &got)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("color_convert mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestColorConvert_Errors(t *testing.T) {
	s := New()

	// Zero or several inputs are a caller mistake, not a color error.
	expectInvalidParams(t, callTool(t, s, "color_convert", map[string]interface{}{}))
	expectInvalidParams(t, callTool(t, s, "color_convert", map[string]interface{}{
		"hex": "#000000",
		"rgb": map[string]int{"r": 0, "g": 0, "b": 0},
	}))

	for _, args := range []map[string]interface{}{
		{"hex": "#GGGGGG"},
		{"hex": "#12"},
		{"rgb": map[string]int{"r": 256, "g": 0, "b": 0}},
		{"hsl": map[string]int{"h": 400, "s": 0, "l": 0}},
	} {
		data := toolErrorData(t, callTool(t, s, "color_convert", args))
		if data.Kind != KindInvalidColor {
			t.Errorf("%v: kind got %q, want %q", args, data.Kind, KindInvalidColor)
		}
	}
}

func TestColorValidateHex(t *testing.T) {
	tests := []struct {
		in   string
		want HexValidation
	}{
		{"abc", HexValidation{Input: "abc", Valid: true, Normalized: "#AABBCC"}},
		{"#ff5733", HexValidation{Input: "#ff5733", Valid: true, Normalized: "#FF5733"}},
		{"#12", HexValidation{Input: "#12", Valid: false}},
		{"", HexValidation{Input: "", Valid: false}},
	}

	s := New()
	for _, tt := range tests {
		var got HexValidation
		decodeResult(t, callTool(t, s, "color_validate_hex", map[string]interface{}{"hex": tt.in}), &got)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("color_validate_hex(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestPixelSample(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})
	defer os.Remove(imgPath)

	var got PixelResult
	decodeResult(t, callTool(t, s, "pixel_sample", map[string]interface{}{
		"path": imgPath, "x": 10, "y": 20,
	}), &got)

	if got.Color.Hex != "#FF0000" {
		t.Errorf("Hex: got %s, want #FF0000", got.Color.Hex)
	}
	if got.X != 10 || got.Y != 20 {
		t.Errorf("coordinate: got (%d,%d), want (10,20)", got.X, got.Y)
	}
	if got.RGBString != "rgb(255, 0, 0)" {
		t.Errorf("RGBString: got %s", got.RGBString)
	}
}

func TestPixelSample_OutOfBounds(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 100, 100, color.White)
	defer os.Remove(imgPath)

	data := toolErrorData(t, callTool(t, s, "pixel_sample", map[string]interface{}{
		"path": imgPath, "x": 100, "y": 0,
	}))
	if data.Kind != KindOutOfBounds {
		t.Fatalf("kind: got %q, want %q", data.Kind, KindOutOfBounds)
	}
	if data.Bounds == nil || data.Bounds.Axis != "x" || data.Bounds.Width != 100 {
		t.Errorf("bounds: got %+v", data.Bounds)
	}

	// The far corner is inside.
	resp := callTool(t, s, "pixel_sample", map[string]interface{}{"path": imgPath, "x": 99, "y": 99})
	if resp.Error != nil {
		t.Errorf("(99,99) should succeed: %+v", resp.Error)
	}
}

func TestPixelSample_DisplaySize(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 100, 100, color.White)
	defer os.Remove(imgPath)

	// The file's own dimensions win over a smaller displayed size.
	resp := callTool(t, s, "pixel_sample", map[string]interface{}{
		"path": imgPath, "x": 60, "y": 10, "display_width": 50, "display_height": 50,
	})
	if resp.Error != nil {
		t.Fatalf("(60,10) should be inside the 100x100 image: %+v", resp.Error)
	}

	data := toolErrorData(t, callTool(t, s, "pixel_sample", map[string]interface{}{
		"path": imgPath, "x": 10, "y": 100, "display_width": 50, "display_height": 200,
	}))
	if data.Kind != KindOutOfBounds || data.Bounds.Axis != "y" || data.Bounds.Height != 100 {
		t.Errorf("got %+v, want out_of_bounds on y against height 100", data)
	}
}

func TestPixelSample_DecodeFailure(t *testing.T) {
	s := New()
	data := toolErrorData(t, callTool(t, s, "pixel_sample", map[string]interface{}{
		"path": "/nonexistent/image.png", "x": 0, "y": 0,
	}))
	if data.Kind != KindDecodeFailure {
		t.Errorf("kind: got %q, want %q", data.Kind, KindDecodeFailure)
	}
}

func TestPixelSample_InvalidParams(t *testing.T) {
	s := New()
	expectInvalidParams(t, callTool(t, s, "pixel_sample", nil))
	expectInvalidParams(t, callTool(t, s, "pixel_sample", map[string]interface{}{"x": 1, "y": 1}))
	expectInvalidParams(t, callTool(t, s, "pixel_sample", map[string]interface{}{"path": "/a.png", "x": "one"}))
}

func TestPixelSampleMulti(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 50, 50, color.RGBA{0, 0, 255, 255})
	defer os.Remove(imgPath)

	var got MultiSampleResult
	decodeResult(t, callTool(t, s, "pixel_sample_multi", map[string]interface{}{
		"path": imgPath,
		"points": []map[string]interface{}{
			{"x": 0, "y": 0, "label": "corner"},
			{"x": 25, "y": 25, "label": "center"},
		},
	}), &got)

	if len(got.Pixels) != 2 {
		t.Fatalf("got %d pixels, want 2", len(got.Pixels))
	}
	if got.Pixels[0].Label != "corner" || got.Pixels[1].Label != "center" {
		t.Errorf("labels: got %q, %q", got.Pixels[0].Label, got.Pixels[1].Label)
	}
	for _, px := range got.Pixels {
		if px.Color.Hex != "#0000FF" {
			t.Errorf("Hex: got %s, want #0000FF", px.Color.Hex)
		}
	}
}

func TestPixelSampleMulti_OutOfBounds(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 50, 50, color.White)
	defer os.Remove(imgPath)

	data := toolErrorData(t, callTool(t, s, "pixel_sample_multi", map[string]interface{}{
		"path": imgPath,
		"points": []map[string]interface{}{
			{"x": 1, "y": 1},
			{"x": 1, "y": 50},
		},
	}))
	if data.Kind != KindOutOfBounds {
		t.Fatalf("kind: got %q, want %q", data.Kind, KindOutOfBounds)
	}
	if data.Bounds.Index != 1 || data.Bounds.Axis != "y" {
		t.Errorf("bounds: got %+v, want index 1 axis y", data.Bounds)
	}

	expectInvalidParams(t, callTool(t, s, "pixel_sample_multi", map[string]interface{}{"path": imgPath}))
}

func TestPixelLoupe(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 40, 40, color.RGBA{0, 128, 0, 255})
	defer os.Remove(imgPath)

	var got struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
	}
	decodeResult(t, callTool(t, s, "pixel_loupe", map[string]interface{}{
		"path": imgPath, "x": 20, "y": 20, "radius": 2, "zoom": 3,
	}), &got)

	if got.Width != 15 || got.Height != 15 {
		t.Errorf("size: got %dx%d, want 15x15", got.Width, got.Height)
	}
	if got.MimeType != "image/png" || got.ImageBase64 == "" {
		t.Errorf("image: mime %q, %d base64 bytes", got.MimeType, len(got.ImageBase64))
	}

	expectInvalidParams(t, callTool(t, s, "pixel_loupe", map[string]interface{}{
		"path": imgPath, "x": 20, "y": 20, "radius": 99,
	}))
}

func TestPixelCacheStatsAndClear(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 10, 10, color.Black)
	defer os.Remove(imgPath)

	args := map[string]interface{}{"path": imgPath, "x": 1, "y": 1}
	callTool(t, s, "pixel_sample", args)
	callTool(t, s, "pixel_sample", args)

	var stats CacheStats
	decodeResult(t, callTool(t, s, "pixel_cache_stats", nil), &stats)
	if stats.Size != 1 || stats.Capacity != 100 {
		t.Errorf("size/capacity: got %d/%d, want 1/100", stats.Size, stats.Capacity)
	}
	if stats.Counters.Hits != 1 || stats.Counters.Samples != 1 {
		t.Errorf("counters: got %+v, want 1 hit and 1 sample", stats.Counters)
	}
	if stats.Images != 1 {
		t.Errorf("decoded images: got %d, want 1", stats.Images)
	}

	var cleared map[string]int
	decodeResult(t, callTool(t, s, "pixel_cache_clear", nil), &cleared)
	if cleared["cleared"] != 1 {
		t.Errorf("cleared: got %d, want 1", cleared["cleared"])
	}

	decodeResult(t, callTool(t, s, "pixel_cache_stats", nil), &stats)
	if stats.Size != 0 || stats.Images != 0 {
		t.Errorf("after clear: size %d, images %d", stats.Size, stats.Images)
	}
}

func TestPixelCacheClear_ByPath(t *testing.T) {
	s := New()
	kept := createTestImageFile(t, 10, 10, color.Black)
	defer os.Remove(kept)
	dropped := createTestImageFile(t, 10, 10, color.White)
	defer os.Remove(dropped)

	callTool(t, s, "pixel_sample", map[string]interface{}{"path": kept, "x": 1, "y": 1})
	callTool(t, s, "pixel_sample", map[string]interface{}{"path": dropped, "x": 1, "y": 1})
	callTool(t, s, "pixel_sample", map[string]interface{}{"path": dropped, "x": 2, "y": 2})

	var cleared map[string]interface{}
	decodeResult(t, callTool(t, s, "pixel_cache_clear", map[string]interface{}{"path": dropped}), &cleared)
	if cleared["cleared"] != float64(2) || cleared["path"] != dropped {
		t.Errorf("clear result: got %v", cleared)
	}

	var stats CacheStats
	decodeResult(t, callTool(t, s, "pixel_cache_stats", nil), &stats)
	if stats.Size != 1 || stats.Images != 1 {
		t.Errorf("after path clear: size %d, images %d, want 1 and 1", stats.Size, stats.Images)
	}
}

func TestPanelPlace(t *testing.T) {
	s := New()

	var got PlacementResult
	decodeResult(t, callTool(t, s, "panel_place", map[string]interface{}{
		"region":         map[string]float64{"x": 400, "y": 200, "width": 100, "height": 100},
		"container":      map[string]float64{"x": 0, "y": 0, "width": 1000, "height": 600},
		"preferred_side": "right",
	}), &got)

	want := PlacementResult{
		Placement: placement.Placement{X: 512, Y: 170, Side: placement.SideRight, Width: 280, Height: 160},
		Bounds:    placement.Rect{X: 512, Y: 170, Width: 280, Height: 160},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("panel_place mismatch (-want +got):\n%s", diff)
	}
}

func TestPanelPlace_InvalidParams(t *testing.T) {
	s := New()
	region := map[string]float64{"x": 10, "y": 10, "width": 10, "height": 10}
	container := map[string]float64{"x": 0, "y": 0, "width": 800, "height": 600}

	expectInvalidParams(t, callTool(t, s, "panel_place", map[string]interface{}{"region": region}))
	expectInvalidParams(t, callTool(t, s, "panel_place", map[string]interface{}{
		"region": region, "container": container, "preferred_side": "top",
	}))
}

func TestPanelPlace_NegativeSizesDegrade(t *testing.T) {
	s := New()
	container := map[string]float64{"x": 0, "y": 0, "width": 800, "height": 600}

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"negative region width", map[string]interface{}{
			"region":    map[string]float64{"x": 10, "y": 10, "width": -5, "height": 10},
			"container": container,
		}},
		{"negative container height", map[string]interface{}{
			"region":    map[string]float64{"x": 10, "y": 10, "width": 10, "height": 10},
			"container": map[string]float64{"x": 0, "y": 0, "width": 800, "height": -1},
		}},
		{"negative panel size", map[string]interface{}{
			"region":       map[string]float64{"x": 10, "y": 10, "width": 10, "height": 10},
			"container":    container,
			"panel_width":  -20,
			"panel_height": -20,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "panel_place", tt.args)
			if resp.Error != nil {
				t.Fatalf("expected a placement, got error %+v", resp.Error)
			}
			var got PlacementResult
			decodeResult(t, resp, &got)
			if got.Side != placement.SideRight || got.Width != 280 || got.Height != 160 {
				t.Errorf("placement: got %+v, want a 280x160 panel on the right", got.Placement)
			}
		})
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := New()
	expectInvalidParams(t, callTool(t, s, "image_ocr_full", map[string]interface{}{}))
}
