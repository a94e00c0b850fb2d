package memory

import (
	"fmt"
	"path/filepath"

	"github.com/nextlevelbuilder/goclaw/internal/config"
	"github.com/nextlevelbuilder/goclaw/internal/embedding"
)

// Enabled reports whether the memory system should run at all, per
// MemoryConfig.Enabled (nil means enabled, the same nil-means-default-true
// convention used elsewhere in internal/config).
func Enabled(mem *config.MemoryConfig) bool {
	return mem == nil || mem.Enabled == nil || *mem.Enabled
}

// OpenFromConfig opens the chunk store at <workspaceDir>/memory.db and
// wires it to an embedding engine built from mem/providers, applying
// MemoryConfig's weights and chunk-length override.
func OpenFromConfig(workspaceDir string, mem *config.MemoryConfig, providers config.ProvidersConfig) (*Memory, error) {
	store, err := Open(filepath.Join(workspaceDir, "memory.db"))
	if err != nil {
		return nil, fmt.Errorf("memory: open store: %w", err)
	}
	engine := embedding.NewEngineFromConfig(mem, providers)

	var vectorWeight, textWeight float64
	var maxChunkLen int
	if mem != nil {
		vectorWeight = mem.VectorWeight
		textWeight = mem.TextWeight
		maxChunkLen = mem.MaxChunkLen
	}
	return NewMemory(store, engine, vectorWeight, textWeight, maxChunkLen), nil
}
