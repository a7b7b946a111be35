package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/alkhaleej/docextract/internal/common"
)

// DefaultPageSize bounds list operations when the caller passes limit <= 0.
const DefaultPageSize = 100

// Document is the stored envelope: a flat string-keyed record plus the
// generated identifier and mutation timestamps. Records in this system are
// fixed-schema key->string mappings, so Data stays map[string]string,
// which also keeps the gob encoding trivial.
type Document struct {
	ID         string `badgerhold:"key"`
	Collection string `badgerholdIndex:"Collection"`
	Data       map[string]string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Collection exposes generic create/read/update/delete operations against
// one named collection. All list operations paginate with skip/limit.
type Collection struct {
	store *Store
	name  string
}

// Name returns the collection name the handle is bound to.
func (c *Collection) Name() string { return c.name }

// Create inserts a document and returns its generated identifier in
// string form.
func (c *Collection) Create(ctx context.Context, data map[string]string) (string, error) {
	now := time.Now().UTC()
	doc := Document{
		ID:         uuid.NewString(),
		Collection: c.name,
		Data:       copyData(data),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := c.store.bh.Insert(doc.ID, doc); err != nil {
		return "", fmt.Errorf("%w: insert into %s: %v", common.ErrStoreUnavailable, c.name, err)
	}
	return doc.ID, nil
}

// GetByID returns the record with its identifier normalized into the map
// under "_id". A missing document is (nil, false, nil), not an error.
func (c *Collection) GetByID(ctx context.Context, id string) (map[string]string, bool, error) {
	var doc Document
	err := c.store.bh.Get(id, &doc)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get %s/%s: %v", common.ErrStoreUnavailable, c.name, id, err)
	}
	if doc.Collection != c.name {
		return nil, false, nil
	}
	return c.flatten(doc), true, nil
}

// GetAll returns documents with pagination; limit <= 0 means
// DefaultPageSize.
func (c *Collection) GetAll(ctx context.Context, skip, limit int) ([]map[string]string, error) {
	return c.Find(ctx, nil, skip, limit)
}

// Find returns documents whose Data contains every filter entry.
func (c *Collection) Find(ctx context.Context, filter map[string]string, skip, limit int) ([]map[string]string, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if skip < 0 {
		skip = 0
	}
	var docs []Document
	q := c.query(filter).SortBy("CreatedAt").Skip(skip).Limit(limit)
	if err := c.store.bh.Find(&docs, q); err != nil {
		return nil, fmt.Errorf("%w: find in %s: %v", common.ErrStoreUnavailable, c.name, err)
	}
	out := make([]map[string]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, c.flatten(d))
	}
	return out, nil
}

// FindOne returns the first document matching the filter, or
// (nil, false, nil) when nothing matches.
func (c *Collection) FindOne(ctx context.Context, filter map[string]string) (map[string]string, bool, error) {
	docs, err := c.Find(ctx, filter, 0, 1)
	if err != nil {
		return nil, false, err
	}
	if len(docs) == 0 {
		return nil, false, nil
	}
	return docs[0], true, nil
}

// Update merges the given fields into the document and stamps updated_at.
// Returns whether a document was actually modified; an unmatched ID is
// (false, nil), not an error.
func (c *Collection) Update(ctx context.Context, id string, fields map[string]string) (bool, error) {
	var doc Document
	err := c.store.bh.Get(id, &doc)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: get %s/%s: %v", common.ErrStoreUnavailable, c.name, id, err)
	}
	if doc.Collection != c.name {
		return false, nil
	}
	mergeData(&doc, fields)
	if err := c.store.bh.Update(id, doc); err != nil {
		return false, fmt.Errorf("%w: update %s/%s: %v", common.ErrStoreUnavailable, c.name, id, err)
	}
	return true, nil
}

// UpdateMany merges fields into every document matching the filter and
// returns the number modified.
func (c *Collection) UpdateMany(ctx context.Context, filter, fields map[string]string) (int, error) {
	modified := 0
	err := c.store.bh.UpdateMatching(&Document{}, c.query(filter), func(record interface{}) error {
		doc, ok := record.(*Document)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		mergeData(doc, fields)
		modified++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: update many in %s: %v", common.ErrStoreUnavailable, c.name, err)
	}
	return modified, nil
}

// Delete removes a document by ID. Returns whether anything was deleted.
func (c *Collection) Delete(ctx context.Context, id string) (bool, error) {
	var doc Document
	err := c.store.bh.Get(id, &doc)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: get %s/%s: %v", common.ErrStoreUnavailable, c.name, id, err)
	}
	if doc.Collection != c.name {
		return false, nil
	}
	if err := c.store.bh.Delete(id, Document{}); err != nil {
		return false, fmt.Errorf("%w: delete %s/%s: %v", common.ErrStoreUnavailable, c.name, id, err)
	}
	return true, nil
}

// DeleteMany removes every document matching the filter and returns the
// number removed.
func (c *Collection) DeleteMany(ctx context.Context, filter map[string]string) (int, error) {
	n, err := c.Count(ctx, filter)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if err := c.store.bh.DeleteMatching(&Document{}, c.query(filter)); err != nil {
		return 0, fmt.Errorf("%w: delete many in %s: %v", common.ErrStoreUnavailable, c.name, err)
	}
	return n, nil
}

// Count returns the number of documents matching the filter.
func (c *Collection) Count(ctx context.Context, filter map[string]string) (int, error) {
	n, err := c.store.bh.Count(&Document{}, c.query(filter))
	if err != nil {
		return 0, fmt.Errorf("%w: count in %s: %v", common.ErrStoreUnavailable, c.name, err)
	}
	return int(n), nil
}

// query builds the collection-scoped badgerhold query, with an optional
// exact-match subset filter over Data.
func (c *Collection) query(filter map[string]string) *badgerhold.Query {
	q := badgerhold.Where("Collection").Eq(c.name).Index("Collection")
	if len(filter) == 0 {
		return q
	}
	return q.And("Data").MatchFunc(func(ra *badgerhold.RecordAccess) (bool, error) {
		doc, ok := ra.Record().(*Document)
		if !ok {
			return false, fmt.Errorf("unexpected record type %T", ra.Record())
		}
		for k, v := range filter {
			if doc.Data[k] != v {
				return false, nil
			}
		}
		return true, nil
	})
}

// flatten exposes a stored document the way callers expect it: the record
// fields plus the normalized string identifier and timestamp metadata.
func (c *Collection) flatten(doc Document) map[string]string {
	out := copyData(doc.Data)
	out["_id"] = doc.ID
	out["updated_at"] = doc.UpdatedAt.UTC().Format(time.RFC3339)
	return out
}

func mergeData(doc *Document, fields map[string]string) {
	if doc.Data == nil {
		doc.Data = make(map[string]string, len(fields))
	}
	for k, v := range fields {
		doc.Data[k] = v
	}
	doc.UpdatedAt = time.Now().UTC()
}

func copyData(data map[string]string) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
