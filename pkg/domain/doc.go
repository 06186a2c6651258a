/*
Package domain contains the core value types of VoxelGamesLib.

It is kept free of I/O and persistence so that every other package can depend on it.

# Key Entities

  - User: a connected player, identified by UUID, with permission nodes.
  - Player: the host side of a user (health, saturation, game mode, location).
  - Vector3D and ItemStack: world positions and inventory contents.
  - StatRow: the persisted form of a per-user statistic.
*/
package domain
