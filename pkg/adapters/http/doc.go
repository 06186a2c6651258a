// Package http exposes a VoxelGamesLib server over HTTP: a read-only admin
// API under /api, Prometheus metrics at /metrics and the player websocket
// gateway at /ws.
package http
