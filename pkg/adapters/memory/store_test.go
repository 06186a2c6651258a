package memory_test

import (
	"testing"

	"github.com/voxelgameslib/voxelgameslib/pkg/adapters/memory"
	"github.com/voxelgameslib/voxelgameslib/pkg/ports"
)

func TestMemoryStatStore_Contract(t *testing.T) {
	store := memory.NewStatStore()
	ports.RunStatStoreContract(t, store)
}
