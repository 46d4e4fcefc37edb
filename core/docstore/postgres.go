package docstore

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/gridshop/functions/core/csql"
)

// Postgres stores documents as JSON in a single table per schema,
// keyed by collection and document id.
type Postgres struct {
	db *csql.DB
}

// NewPostgres creates a postgres document store. The backing table gets
// created if it does not exist yet.
func NewPostgres(db *csql.DB) (*Postgres, error) {
	_, err := db.Exec(`CREATE table IF NOT EXISTS ` + db.Schema + `."_document_"
(collection varchar NOT NULL,
document_id varchar NOT NULL,
value json NOT NULL,
timestamp timestamp NOT NULL,
PRIMARY KEY(collection, document_id)
);`)
	if err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// Get returns the document with the given id, or ErrNotFound.
func (p *Postgres) Get(ctx context.Context, collection, id string) (Document, error) {
	var rawValue json.RawMessage
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM `+p.db.Schema+`."_document_" WHERE collection=$1 AND document_id=$2;`,
		collection, id).Scan(&rawValue)
	if err == csql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read document '%s/%s': %s", collection, id, err.Error())
	}
	var doc Document
	err = json.Unmarshal(rawValue, &doc)
	return doc, err
}

// Set creates or replaces the document with the given id.
func (p *Postgres) Set(ctx context.Context, collection, id string, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	now := ServerTimestamp()
	res, err := p.db.ExecContext(ctx,
		`INSERT INTO `+p.db.Schema+`."_document_"(collection,document_id,value,timestamp)
VALUES($1,$2,$3,$4)
ON CONFLICT (collection, document_id) DO UPDATE SET value=$3,timestamp=$4;`,
		collection, id, string(body), now)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("could not write document %s/%s", collection, id)
	}
	return nil
}

// Add stores the document under a new server-assigned id.
func (p *Postgres) Add(ctx context.Context, collection string, doc Document) (string, error) {
	id := uuid.New().String()
	if err := p.Set(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

// All returns every document of the collection, ordered by insertion time.
func (p *Postgres) All(ctx context.Context, collection string) ([]Document, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT document_id, value FROM `+p.db.Schema+`."_document_" WHERE collection=$1 ORDER BY timestamp;`,
		collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var (
			id       string
			rawValue json.RawMessage
		)
		if err := rows.Scan(&id, &rawValue); err != nil {
			return nil, err
		}
		var doc Document
		if err := json.Unmarshal(rawValue, &doc); err != nil {
			return nil, err
		}
		doc["id"] = id
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
