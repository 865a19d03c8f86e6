// Package fswatch calls back when a single file changes on disk.
//
// The watch is placed on the file's directory, not the file, so atomic
// saves (write a temp file, rename it over the target) keep firing after
// the original inode is gone.
package fswatch
