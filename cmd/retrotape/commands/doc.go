// Package commands defines the retrotape CLI.
//
// Commands
//
//   - serve      Run the control channel on stdin/stdout
//   - run        Process frames from a camera or a directory of captures
//   - process    Process image files once and print the results as JSON
//   - params     List the parameters of a module
//   - modules    List the registered modules
//   - version    Print version information
//
// # Configuration
//
// Settings come from RETROTAPE_* environment variables, optionally loaded
// from an env file, and are overridden by flags. The root command builds the
// configured module before any subcommand runs.
package commands
