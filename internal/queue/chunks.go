package queue

import (
	"encoding/json"
	"fmt"
)

// SetChunkPaths stores the ordered chunk file list produced by audio
// preparation on the item. An empty list clears the column.
func (i *Item) SetChunkPaths(paths []string) error {
	if len(paths) == 0 {
		i.ChunksJSON = ""
		i.ChunkCount = 0
		return nil
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return fmt.Errorf("encode chunk paths: %w", err)
	}
	i.ChunksJSON = string(data)
	i.ChunkCount = len(paths)
	return nil
}

// ChunkPaths returns the ordered chunk file list stored on the item.
func (i Item) ChunkPaths() ([]string, error) {
	if i.ChunksJSON == "" {
		return nil, nil
	}
	var paths []string
	if err := json.Unmarshal([]byte(i.ChunksJSON), &paths); err != nil {
		return nil, fmt.Errorf("decode chunk paths: %w", err)
	}
	return paths, nil
}
