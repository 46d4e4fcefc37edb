package assets

import (
	"context"
	"fmt"
	"sync"
)

// Memory is the in-memory implementation of the asset host. It records
// uploaded keys and fabricates URLs. Unit tests can arm it to fail a
// particular upload.
type Memory struct {
	mutex sync.Mutex
	// Keys holds all uploaded keys in upload order
	Keys []string
	// FailOn makes the n-th upload (1-based) fail when > 0
	FailOn int
	count  int
}

// NewMemory creates an empty in-memory asset host
func NewMemory() *Memory {
	return &Memory{}
}

// UploadData records the key and returns a fabricated URL
func (m *Memory) UploadData(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.count++
	if m.FailOn > 0 && m.count == m.FailOn {
		return "", fmt.Errorf("upload rejected by asset host")
	}
	m.Keys = append(m.Keys, key)
	return "https://assets.example.com/" + key, nil
}
