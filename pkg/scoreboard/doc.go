// Package scoreboard provides sidebar scoreboards pushed to player connections.
package scoreboard
