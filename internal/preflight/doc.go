// Package preflight provides readiness checks for the filesystem paths a
// decrypt run touches.
//
// The CLI calls RunAll before starting the pipeline and refuses to run when
// any check fails, so permission problems surface once instead of as one
// error per asset. Mirror runs check the output parent; in-place runs require
// write access to the game directory itself.
package preflight
