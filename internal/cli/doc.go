// Package cli implements the inkdash command-line interface.
//
// Commands are Cobra definitions that delegate to workflow functions in this
// package, which in turn wire config, collector, renderer, display driver and
// render cycle together.
//
// # Command Structure
//
//	inkdash run          - Render every interval until interrupted
//	inkdash once         - Render a single frame
//	inkdash preview      - Render to the terminal (--watch for a live view)
//	inkdash validate     - Check config, layout and metric sources
//	inkdash layout       - Print the text each field would show
//	inkdash config init  - Write the default config
//	inkdash version      - Print build information
//
// # Flag Handling
//
// Global flags (--config, --debug) live on the root command. Commands that
// render share CycleFlags (--driver, --fallback, --metric-timeout); run adds
// --interval and --metrics-addr. Flags override the config file, which
// overrides the built-in defaults.
package cli
