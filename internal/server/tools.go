package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema of an image path argument.
func pathProperty(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": desc,
	}
}

// regionProperty is the schema of a region of interest in global coordinates.
func regionProperty() map[string]interface{} {
	intProp := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "integer", "description": desc}
	}
	return map[string]interface{}{
		"type":        "object",
		"description": "Region of interest in original image coordinates. Omit for the full image.",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"full", "rect", "square", "circle"},
				"description": "Region shape. Default rect",
			},
			"x":  intProp("Rectangle left edge"),
			"y":  intProp("Rectangle top edge"),
			"w":  intProp("Rectangle width"),
			"h":  intProp("Rectangle height"),
			"cx": intProp("Circle center X"),
			"cy": intProp("Circle center Y"),
			"r":  intProp("Circle radius"),
		},
	}
}

// pointsProperty is the schema of a caller-supplied sampling point list.
func pointsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Sampling points in original image coordinates. Points outside the region are dropped.",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"x": map[string]interface{}{"type": "integer"},
				"y": map[string]interface{}{"type": "integer"},
			},
			"required": []string{"x", "y"},
		},
	}
}

// settingsProperty is the schema of per-call QC settings.
func settingsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"description": "QC settings merged over the server settings. Keys: use_crop, operator, seed, " +
			"color{region, point_count, sampling_mode, sampling_points, thresholds{pass,conditional}, " +
			"global_threshold_de, primary_illuminant, test_illuminants, csi_good, csi_warn}, " +
			"pattern{thresholds{<method>{pass,conditional}}, global_threshold, methods, disable_fourier, disable_glcm}, " +
			"scoring{color_scoring_method: delta_e|csi|csi2000, pattern_scoring_method: all|ssim|gradient|phase|structural}",
	}
}

// pairSchema is the input schema shared by the reference/sample tools.
func pairSchema(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"reference": pathProperty("Absolute path to the reference fabric image"),
		"sample":    pathProperty("Absolute path to the sample fabric image"),
		"settings":  settingsProperty(),
		"artifacts": map[string]interface{}{
			"type":        "boolean",
			"description": "Include base64 PNG visualizations in the result. Default false",
			"default":     false,
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   []string{"reference", "sample"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "textile_load",
			Description: "Load a fabric image and return its dimensions, format, bit depth and alpha presence. The image stays cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "textile_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},

		// Region and Sampling
		{
			Name:        "textile_crop_region",
			Description: "Crop a region of interest (rectangle or circle) and return it as base64 PNG with its offset in the original image. Circle crops are transparent outside the circle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty("Absolute path to the image file"),
					"region": regionProperty(),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor for the returned preview. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "region"},
			},
		},
		{
			Name:        "textile_sample_points",
			Description: "Resolve the color sampling points for an image: validated manual points, or random points inside the region. Returns the points and the averaging radius.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty("Absolute path to the image file"),
					"region": regionProperty(),
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of points. Default 5",
						"default":     5,
					},
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"random", "manual"},
						"description": "Sampling mode. Manual requires exactly count valid points. Default random",
						"default":     "random",
					},
					"points": pointsProperty(),
					"seed": map[string]interface{}{
						"type":        "integer",
						"description": "Seed for reproducible random points. 0 means time-seeded",
					},
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the image with the points drawn on it. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},

		// Color Difference
		{
			Name:        "textile_delta_e",
			Description: "Compute ΔE76, ΔE94 and ΔE2000 between two colors given as CIE Lab or sRGB hex (#rrggbb), plus the 0-100 score 100 - 10·ΔE2000.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"lab1": map[string]interface{}{
						"type":        "object",
						"description": "First color as {l, a, b}",
					},
					"lab2": map[string]interface{}{
						"type":        "object",
						"description": "Second color as {l, a, b}",
					},
					"hex1": map[string]interface{}{
						"type":        "string",
						"description": "First color as #rrggbb, used when lab1 is absent",
					},
					"hex2": map[string]interface{}{
						"type":        "string",
						"description": "Second color as #rrggbb, used when lab2 is absent",
					},
				},
			},
		},

		// Analysis
		{
			Name:        "textile_analyze_color",
			Description: "Compare sample color against the reference at sampling points (ΔE76/94/2000 per point, mean ΔE2000 status), whole-image CSI and re-evaluation under test illuminants.",
			InputSchema: pairSchema(nil),
		},
		{
			Name:        "textile_analyze_pattern",
			Description: "Compare weave/print structure: SSIM, gradient similarity, phase correlation and structural match scores with a weighted composite, plus difference boundaries, Fourier periodicity and GLCM texture.",
			InputSchema: pairSchema(nil),
		},
		{
			Name:        "textile_analyze_single",
			Description: "Measure one fabric image without a reference: per-point RGB, XYZ, Lab, CMYK and hex, lightness and chroma spread, channel balance and findings.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sample":   pathProperty("Absolute path to the sample fabric image"),
					"settings": settingsProperty(),
					"artifacts": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the sampling overlay as base64 PNG. Default false",
						"default":     false,
					},
				},
				"required": []string{"sample"},
			},
		},
		{
			Name:        "textile_analyze",
			Description: "Run the full QC comparison: color and pattern pipelines, configured scoring methods, overall score, ACCEPT/CONDITIONAL/REJECT decision and findings with recommendations.",
			InputSchema: pairSchema(map[string]interface{}{
				"output_dir": map[string]interface{}{
					"type":        "string",
					"description": "Optional directory to write report.json and PNG artifacts to",
				},
			}),
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
