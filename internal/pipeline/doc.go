// Package pipeline decrypts a game installation end to end.
//
// Run reads the manifest and key first and aborts on any problem there
// before a single asset is touched. It then walks the tree, plans every
// regular file, and executes the plans on a bounded worker pool. Temp files
// left behind by an interrupted run are removed before the pool starts. Scan and
// per-file failures are collected rather than stopping sibling work. Only
// once every worker has finished, and only if nothing failed, is the
// manifest rewritten. A failure at that last step is reported as a
// FinalizeError because the assets have already changed.
//
// Two output modes exist. InPlace replaces encrypted files beside the
// originals. Mirror writes a complete copy of the game to a sibling
// directory and strips the key from the copied manifest.
package pipeline
