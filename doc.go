/*
Package voxelgameslib is a framework for multiplayer voxel sandbox game servers.

Game modes are built by composing features (small event driven behaviour
modules) into phases, and phases into a game. Lib wires the handlers that
make up a server: the event bus, the feature registry, the game handler with
its tick loop, per-user statistics, scoreboards, online users and the chat
command dispatcher.

# Usage

	lib, err := voxelgameslib.New(ctx, voxelgameslib.WithConfig(cfg))
	if err != nil {
		log.Fatal(err)
	}
	if err := lib.Start(); err != nil {
		log.Fatal(err)
	}
	defer lib.Stop()

	go lib.Run(ctx)

	u, _ := lib.Users().Login("MiniDigger")
	snap, _ := lib.Games().Create(ctx, "oneinthechamber")
	_ = lib.Games().Join(uuid.MustParse(snap.ID), u)

Game modes are described declaratively (see game.Definition) either inline
in the config file or as YAML files in the games directory.
*/
package voxelgameslib
