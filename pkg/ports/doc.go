/*
Package ports defines the driven ports (interfaces) of the framework.

These interfaces decouple the game logic from storage and coordination backends.

# Key Interfaces

  - Handler: lifecycle of a framework service (Start / Stop).
  - StatStore: persists per-user statistic rows (memory, SQLite, Redis).
  - DistributedLocker: serialises stat access across several server instances.
*/
package ports
