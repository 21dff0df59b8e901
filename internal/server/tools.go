package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// schema helpers keep the definitions below readable.
func integerProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": desc}
}

func numberProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": desc}
}

func stringProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc}
}

func rectProp(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": desc,
		"properties": map[string]interface{}{
			"x":      numberProp("Left edge"),
			"y":      numberProp("Top edge"),
			"width":  numberProp("Width"),
			"height": numberProp("Height"),
		},
		"required": []string{"x", "y", "width", "height"},
	}
}

var pathProp = stringProp("Absolute path to the image file")

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Color Conversion
		{
			Name:        "color_convert",
			Description: "Convert a color given as hex, RGB or HSL into all three representations plus CSS-style rgb()/hsl() strings. Supply exactly one of hex, rgb or hsl.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"hex": stringProp("Hex color, #RGB or #RRGGBB, leading # optional"),
					"rgb": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"r": numberProp("Red 0-255"),
							"g": numberProp("Green 0-255"),
							"b": numberProp("Blue 0-255"),
						},
						"required": []string{"r", "g", "b"},
					},
					"hsl": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"h": numberProp("Hue 0-360, 360 wraps to 0"),
							"s": numberProp("Saturation 0-100"),
							"l": numberProp("Lightness 0-100"),
						},
						"required": []string{"h", "s", "l"},
					},
				},
			},
		},
		{
			Name:        "color_validate_hex",
			Description: "Check whether a string is a valid hex color and return its canonical uppercase #RRGGBB form.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"hex": stringProp("Candidate hex color"),
				},
				"required": []string{"hex"},
			},
		},

		// Pixel Sampling
		{
			Name:        "pixel_sample",
			Description: "Read the color of one pixel. Results are cached, so repeated samples of the same pixel are free. Alpha is ignored.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":           pathProp,
					"x":              integerProp("X coordinate (0-based)"),
					"y":              integerProp("Y coordinate (0-based)"),
					"display_width":  integerProp("Optional displayed width, used for bounds checks only when the file header gives no size"),
					"display_height": integerProp("Optional displayed height, used for bounds checks only when the file header gives no size"),
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "pixel_sample_multi",
			Description: "Sample several pixels from one image in a single call. Fails as a whole if any point is out of bounds, reporting its index.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp,
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     integerProp("X coordinate"),
								"y":     integerProp("Y coordinate"),
								"label": stringProp("Optional label echoed in the result"),
							},
							"required": []string{"x", "y"},
						},
					},
				},
				"required": []string{"path", "points"},
			},
		},
		{
			Name:        "pixel_loupe",
			Description: "Return a magnified PNG of the pixels around a point, with crisp nearest-neighbor scaling, plus the center pixel's color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProp,
					"x":      integerProp("Center X coordinate"),
					"y":      integerProp("Center Y coordinate"),
					"radius": integerProp("Pixels on each side of the center (default 5, max 32)"),
					"zoom":   integerProp("Magnification factor (default 8, max 32)"),
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "pixel_cache_stats",
			Description: "Report the pixel cache size, capacity and hit/miss counters.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "pixel_cache_clear",
			Description: "Empty the pixel cache and drop decoded images. With a path, only that file's pixels and decoded image are dropped.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("Optional image path to clear instead of everything"),
				},
			},
		},

		// Panel Placement
		{
			Name:        "panel_place",
			Description: "Choose where to draw an information panel next to a highlighted region so it stays inside the container and does not cover the region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"region":    rectProp("Highlighted region"),
					"container": rectProp("Visible container"),
					"preferred_side": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"auto", "left", "right"},
						"description": "Preferred horizontal side. Default auto",
						"default":     "auto",
					},
					"panel_width":  numberProp("Panel width, 0 for the configured default"),
					"panel_height": numberProp("Panel height, 0 for the configured default"),
					"compact":      map[string]interface{}{"type": "boolean", "description": "Force compact layout"},
				},
				"required": []string{"region", "container"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
