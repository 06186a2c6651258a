/*
Package observability exposes the Prometheus metrics of a VoxelGamesLib server.

Game lifecycle metrics are recorded through game.Hooks (see GameHooks), stat
changes through stat events and commands through the dispatcher observer.
*/
package observability
