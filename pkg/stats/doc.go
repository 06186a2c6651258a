// Package stats tracks per-user statistics such as kills and wins.
//
// A StatInstance is loaded through the Handler, changed with Increment or
// Decrement (which fire cancellable events on the bus) and written back by
// Flush, either explicitly, periodically via Run, or on Unload.
package stats
