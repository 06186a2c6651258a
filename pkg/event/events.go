package event

// EnableEvent is called when the framework was enabled.
type EnableEvent struct {
	Version string
}

func (EnableEvent) Name() string { return "VoxelGamesLibEnableEvent" }

// DisableEvent is called right before the framework shuts down.
type DisableEvent struct{}

func (DisableEvent) Name() string { return "VoxelGamesLibDisableEvent" }
