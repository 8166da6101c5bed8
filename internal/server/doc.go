// Package server implements the host control channel for a tracker module.
//
// The channel runs over stdio and accepts two kinds of input on the same
// stream, one per line:
//   - JSON-RPC 2.0 requests, recognized by a leading '{'
//   - plain text commands in the style of a smart camera's serial console
//
// # JSON-RPC methods
//
//   - initialize: protocol handshake, returns server and module info
//   - ping: health check
//   - methods/list: describe the supported methods and their params
//   - module/info: name, vendor, backend and video mapping of the module
//   - module/list: names of every registered module
//   - param/list: all parameters with their current values
//   - param/get: one parameter
//   - param/set: validate and change one parameter
//   - frame/process: run the module on an image file
//   - frame/sample: color at a pixel, for threshold calibration
//
// Errors use the standard codes: -32601 for unknown methods, -32602 for
// invalid params (including unknown parameter names and rejected values)
// and -32000 for failures while executing a method.
//
// # Text commands
//
//	ping                 ALIVE
//	info                 module description, then OK
//	getpar NAME          "NAME VALUE", then OK
//	setpar NAME VALUE    OK
//	listpar              one line per parameter, then OK
//	serout on|off        OK
//	help                 command summary, then OK
//
// Failures reply with a single line starting with "ERR".
//
// # Usage
//
//	m, _ := tracker.New(tracker.ModuleRetroTape, tracker.Options{})
//	srv := server.New(m)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
