// Package main hosts the rpgdecrypt CLI entrypoint and command graph.
//
// The root command takes a game directory and runs the decrypt pipeline on
// it, printing a summary table to stdout and any failure to stderr. The
// inspect subcommand reports the manifest and planned work without touching
// the game, and the config subcommands scaffold and check configuration.
//
// Keep this package lean: the decrypt logic lives in internal/pipeline and
// its collaborators; commands here only resolve configuration, apply flag
// overrides, and format results.
package main
