/*Package docstore provides a simple document store: a mapping of
collection to JSON documents with get/set/add operations.

The store is deliberately narrow. There are no transactions and no
cross-document consistency guarantees; writes are single-document sets.
Nested collections are expressed as path-shaped collection names, for
example "shops/42/products".

There are currently two drivers: a postgres implementation and an
in-memory implementation.
*/
package docstore

import (
	"context"
	"errors"
	"time"
)

// Document is a schemaless JSON document.
type Document map[string]interface{}

// ErrNotFound is returned by Get when the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Driver defines the interface for the document store
type Driver interface {
	// Get returns the document with the given id, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Set creates or replaces the document with the given id. Last write wins.
	Set(ctx context.Context, collection, id string, doc Document) error
	// Add stores the document under a new server-assigned id and returns the id.
	Add(ctx context.Context, collection string, doc Document) (string, error)
	// All returns every document in the collection, with its id injected
	// as the "id" field. This is an unbounded read.
	All(ctx context.Context, collection string) ([]Document, error)
}

// ServerTimestamp returns the server-assigned creation timestamp for new
// documents.
func ServerTimestamp() time.Time {
	return time.Now().UTC()
}
