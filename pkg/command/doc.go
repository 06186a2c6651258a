// Package command implements the in-game chat commands on top of cobra.
//
// A fresh command tree is built for every line so each execution is bound to
// its sender; required permissions live in the "permission" annotation.
package command
