// Package server implements the MCP (Model Context Protocol) server for the
// pixel inspector.
//
// The server speaks JSON-RPC 2.0 over stdio, one message per line:
//   - Input: JSON-RPC requests on stdin
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
// Color Conversion:
//   - color_convert: hex, RGB or HSL in, all three plus CSS strings out
//   - color_validate_hex: check and canonicalize a hex string
//
// Pixel Sampling:
//   - pixel_sample: color of one pixel, memoized
//   - pixel_sample_multi: several pixels from one decode
//   - pixel_loupe: magnified PNG around a point
//   - pixel_cache_stats: cache size and counters
//   - pixel_cache_clear: empty the caches
//
// Panel Placement:
//   - panel_place: position an information panel beside a region
//
// # Error Handling
//
// Malformed lines get -32700, bad tool arguments -32602 and unknown methods
// -32601. A tool that runs and fails returns -32000 with a ToolErrorData
// whose kind is one of invalid_color, out_of_bounds, decode_failure or
// internal. An out_of_bounds error also carries the offending coordinate and
// the image size.
//
// # Usage
//
//	srv := server.New(server.WithConfig(cfg), server.WithLogger(logger))
//	if err := srv.Run(); err != nil {
//	    logger.Fatal("server error", zap.Error(err))
//	}
package server
