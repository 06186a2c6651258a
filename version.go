package voxelgameslib

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var versionFile string

// Version is the released framework version.
var Version = strings.TrimSpace(versionFile)
