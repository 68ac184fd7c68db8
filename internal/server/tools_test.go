package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"textile_load",
		"textile_dimensions",
		"textile_crop_region",
		"textile_sample_points",
		"textile_delta_e",
		"textile_analyze_color",
		"textile_analyze_pattern",
		"textile_analyze_single",
		"textile_analyze",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("Duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	// Check all expected tools exist
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			// Name should not be empty
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}

			// Description should not be empty
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}

			// InputSchema should exist
			if tool.InputSchema == nil {
				t.Error("Tool InputSchema is nil")
			}

			// InputSchema should be an object type
			schemaType, ok := tool.InputSchema["type"]
			if !ok {
				t.Error("InputSchema missing 'type' field")
			}
			if schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			// InputSchema should have properties
			props, ok := tool.InputSchema["properties"]
			if !ok {
				t.Error("InputSchema missing 'properties' field")
			}
			if props == nil {
				t.Error("InputSchema properties is nil")
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	tests := map[string][]string{
		"textile_load":            {"path"},
		"textile_dimensions":      {"path"},
		"textile_crop_region":     {"path", "region"},
		"textile_sample_points":   {"path"},
		"textile_analyze_color":   {"reference", "sample"},
		"textile_analyze_pattern": {"reference", "sample"},
		"textile_analyze_single":  {"sample"},
		"textile_analyze":         {"reference", "sample"},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			tool, ok := toolMap[name]
			if !ok {
				t.Fatalf("tool %s not found", name)
			}
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			have := make(map[string]bool)
			for _, r := range required {
				have[r] = true
			}
			for _, w := range want {
				if !have[w] {
					t.Errorf("Tool should require '%s' parameter", w)
				}
			}
			if len(required) != len(want) {
				t.Errorf("required: got %v, want %v", required, want)
			}
		})
	}
}

func TestToolDefinitions_DeltaENoRequired(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		if tool.Name != "textile_delta_e" {
			continue
		}
		if _, ok := tool.InputSchema["required"]; ok {
			t.Error("textile_delta_e accepts lab or hex, nothing is required")
		}
		props := tool.InputSchema["properties"].(map[string]interface{})
		for _, k := range []string{"lab1", "lab2", "hex1", "hex2"} {
			if _, ok := props[k]; !ok {
				t.Errorf("missing property %s", k)
			}
		}
		return
	}
	t.Fatal("textile_delta_e tool not found")
}

func TestToolDefinitions_RegionShapes(t *testing.T) {
	var tool Tool
	for _, tt := range GetToolDefinitions() {
		if tt.Name == "textile_crop_region" {
			tool = tt
			break
		}
	}

	if tool.Name == "" {
		t.Fatal("textile_crop_region tool not found")
	}

	props, ok := tool.InputSchema["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("properties should be a map")
	}

	regionProp, ok := props["region"].(map[string]interface{})
	if !ok {
		t.Fatal("region property should exist and be a map")
	}
	regionProps, ok := regionProp["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("region should have properties")
	}
	typeProp, ok := regionProps["type"].(map[string]interface{})
	if !ok {
		t.Fatal("region should have a type property")
	}
	enum, ok := typeProp["enum"].([]string)
	if !ok {
		t.Fatal("region type should have enum")
	}

	enumMap := make(map[string]bool)
	for _, e := range enum {
		enumMap[e] = true
	}
	for _, shape := range []string{"full", "rect", "square", "circle"} {
		if !enumMap[shape] {
			t.Errorf("Expected shape '%s' not in enum", shape)
		}
	}
	for _, key := range []string{"x", "y", "w", "h", "cx", "cy", "r"} {
		if _, ok := regionProps[key]; !ok {
			t.Errorf("region missing '%s'", key)
		}
	}
}

func TestToolDefinitions_AnalyzeOutputDir(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		props := tool.InputSchema["properties"].(map[string]interface{})
		_, has := props["output_dir"]
		if tool.Name == "textile_analyze" && !has {
			t.Error("textile_analyze should accept output_dir")
		}
		if tool.Name != "textile_analyze" && has {
			t.Errorf("%s should not accept output_dir", tool.Name)
		}
	}
}

func TestToolDefinitions_OptionalDefaults(t *testing.T) {
	tools := GetToolDefinitions()

	// Tools with optional parameters that should have defaults
	toolDefaults := map[string]map[string]interface{}{
		"textile_crop_region":     {"scale": 1.0},
		"textile_sample_points":   {"count": 5, "mode": "random", "overlay": false},
		"textile_analyze_color":   {"artifacts": false},
		"textile_analyze_pattern": {"artifacts": false},
		"textile_analyze_single":  {"artifacts": false},
		"textile_analyze":         {"artifacts": false},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	for toolName, expectedDefaults := range toolDefaults {
		tool, ok := toolMap[toolName]
		if !ok {
			t.Errorf("Tool %s not found", toolName)
			continue
		}

		props, ok := tool.InputSchema["properties"].(map[string]interface{})
		if !ok {
			t.Errorf("%s: properties should be a map", toolName)
			continue
		}

		for paramName, expectedDefault := range expectedDefaults {
			param, ok := props[paramName].(map[string]interface{})
			if !ok {
				t.Errorf("%s.%s: parameter not found or not a map", toolName, paramName)
				continue
			}

			actualDefault, ok := param["default"]
			if !ok {
				t.Errorf("%s.%s: missing default value", toolName, paramName)
				continue
			}

			// Compare defaults (handle type differences)
			switch expected := expectedDefault.(type) {
			case float64:
				actual, ok := actualDefault.(float64)
				if !ok || actual != expected {
					t.Errorf("%s.%s: default got %v, want %v", toolName, paramName, actualDefault, expected)
				}
			case int:
				// JSON numbers are float64
				actual, ok := actualDefault.(int)
				if !ok {
					actualFloat, ok := actualDefault.(float64)
					if !ok || int(actualFloat) != expected {
						t.Errorf("%s.%s: default got %v, want %v", toolName, paramName, actualDefault, expected)
					}
				} else if actual != expected {
					t.Errorf("%s.%s: default got %v, want %v", toolName, paramName, actualDefault, expected)
				}
			case string:
				actual, ok := actualDefault.(string)
				if !ok || actual != expected {
					t.Errorf("%s.%s: default got %v, want %v", toolName, paramName, actualDefault, expected)
				}
			case bool:
				actual, ok := actualDefault.(bool)
				if !ok || actual != expected {
					t.Errorf("%s.%s: default got %v, want %v", toolName, paramName, actualDefault, expected)
				}
			}
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	tools, ok := result["tools"]
	if !ok {
		t.Fatal("Result should contain 'tools' key")
	}

	toolsList, ok := tools.([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	// Should match GetToolDefinitions
	expected := GetToolDefinitions()
	if len(toolsList) != len(expected) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(expected))
	}
}

func TestToolStruct(t *testing.T) {
	tool := Tool{
		Name:        "test_tool",
		Description: "A test tool",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"param1": map[string]interface{}{
					"type":        "string",
					"description": "A test parameter",
				},
			},
			"required": []string{"param1"},
		},
	}

	if tool.Name != "test_tool" {
		t.Errorf("Name: got %s, want test_tool", tool.Name)
	}
	if tool.Description != "A test tool" {
		t.Errorf("Description: got %s, want 'A test tool'", tool.Description)
	}
	if tool.InputSchema == nil {
		t.Error("InputSchema should not be nil")
	}
}
