// Package cli implements the drover command-line interface.
//
// The package is organized around Cobra commands, with each command
// delegating to the pkg/remote library for SSH work and to
// internal/config for .drover.yaml handling.
//
// # Command Structure
//
// The root command is "drover" with subcommands for different operations:
//
//	drover exec [hosts...] -- <cmd>   - Run a command on hosts
//	drover put <local> <remote>       - Upload a file to hosts
//	drover hosts                      - List configured hosts and aliases
//	drover init                       - Create .drover.yaml config
//	drover version                    - Print version info
//
// # Flag Handling
//
// Global flags (--config, --verbose, --quiet, --no-color) are defined on
// the root command and available to all subcommands. The ConnectionFlags
// type and AddConnectionFlags function provide the standard connection
// flags (--sudo, --forward-agent, --attempts, --connect-timeout,
// --ask-pass) plus host selection (--tag, --all) for exec and put.
//
// Connection defaults come from .drover.yaml; flags set explicitly on
// the command line override them per invocation.
package cli
