// Package server implements the MCP (Model Context Protocol) server for textile
// quality control.
//
// This package provides a JSON-RPC 2.0 server that exposes the color and
// pattern comparison pipelines through the MCP protocol, so an MCP client can
// inspect a fabric sample against its reference and read back the decision.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - textile_load: Load image and get metadata
//   - textile_dimensions: Get width and height
//
// Region and Sampling:
//   - textile_crop_region: Crop a rectangle or circle, with its global offset
//   - textile_sample_points: Resolve manual or random sampling points
//
// Color Difference:
//   - textile_delta_e: ΔE76, ΔE94 and ΔE2000 between two colors
//
// Analysis:
//   - textile_analyze_color: Color pipeline only
//   - textile_analyze_pattern: Pattern pipeline only
//   - textile_analyze_single: Reference-free measurement of one image
//   - textile_analyze: Full report with decision and findings
//
// # Settings
//
// The server starts from the settings it was created with (see
// config.Load). Analysis tools accept a "settings" object in the same JSON
// shape; it is merged over a copy of the server settings for that call only.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, so a reference compared
// against many samples is decoded once. The cache persists for the lifetime of
// the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	settings, err := config.Load(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.NewWithSettings(settings)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
