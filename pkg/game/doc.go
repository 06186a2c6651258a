// Package game composes features into phases and phases into games, and runs
// all games of a server from one tick loop.
package game
