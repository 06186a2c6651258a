// Package user keeps track of the players that are online.
package user
