package docstore

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Memory is the in-memory implementation of the document store. It is
// used by unit tests and local runs without a database.
type Memory struct {
	mutex sync.RWMutex
	// collection -> id -> serialized document
	collections map[string]map[string][]byte
	// insertion order per collection
	order map[string][]string
}

// NewMemory creates an empty in-memory document store
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string][]byte),
		order:       make(map[string][]string),
	}
}

// Get returns the document with the given id, or ErrNotFound.
func (m *Memory) Get(ctx context.Context, collection, id string) (Document, error) {
	m.mutex.RLock()
	body, ok := m.collections[collection][id]
	m.mutex.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var doc Document
	err := json.Unmarshal(body, &doc)
	return doc, err
}

// Set creates or replaces the document with the given id.
func (m *Memory) Set(ctx context.Context, collection, id string, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string][]byte)
		m.collections[collection] = docs
	}
	if _, exists := docs[id]; !exists {
		m.order[collection] = append(m.order[collection], id)
	}
	docs[id] = body
	return nil
}

// Add stores the document under a new server-assigned id.
func (m *Memory) Add(ctx context.Context, collection string, doc Document) (string, error) {
	id := uuid.New().String()
	if err := m.Set(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

// All returns every document of the collection in insertion order.
func (m *Memory) All(ctx context.Context, collection string) ([]Document, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	docs := []Document{}
	for _, id := range m.order[collection] {
		var doc Document
		if err := json.Unmarshal(m.collections[collection][id], &doc); err != nil {
			return nil, err
		}
		doc["id"] = id
		docs = append(docs, doc)
	}
	return docs, nil
}
