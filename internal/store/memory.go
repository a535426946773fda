// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package store

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Memory is an in-process Store used by tests. Documents round-trip
// through BSON so field names and value types match what the Mongo
// implementation persists. Unlike Mongo it does not enforce unique
// indexes; callers that rely on upsert behavior check first, as the
// handlers do.
//
// Documents are kept in insertion order, which is also the result order
// of an unsorted Find.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]bson.M
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]bson.M)}
}

// Find implements Store.
func (m *Memory) Find(ctx context.Context, collection string, filter Filter, opts *FindOptions, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	matched := make([]bson.M, 0)
	for _, doc := range m.collections[collection] {
		if matchFilter(doc, filter) {
			matched = append(matched, doc)
		}
	}
	m.mu.RUnlock()

	if opts != nil {
		if len(opts.Sort) > 0 {
			sortDocs(matched, opts.Sort)
		}
		if opts.Skip > 0 {
			if opts.Skip >= int64(len(matched)) {
				matched = nil
			} else {
				matched = matched[opts.Skip:]
			}
		}
		if opts.Limit > 0 && int64(len(matched)) > opts.Limit {
			matched = matched[:opts.Limit]
		}
	}

	return decodeDocs(matched, dest)
}

// FindOne implements Store.
func (m *Memory) FindOne(ctx context.Context, collection string, filter Filter, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, doc := range m.collections[collection] {
		if matchFilter(doc, filter) {
			raw, err := bson.Marshal(doc)
			if err != nil {
				return err
			}
			return bson.Unmarshal(raw, dest)
		}
	}
	return ErrNotFound
}

// Aggregate implements Store. Stages are applied in order over a snapshot
// of the collection.
func (m *Memory) Aggregate(ctx context.Context, collection string, pipeline []Stage, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	docs := make([]bson.M, len(m.collections[collection]))
	copy(docs, m.collections[collection])
	m.mu.RUnlock()

	for _, stage := range pipeline {
		switch {
		case stage.Match != nil:
			kept := docs[:0:0]
			for _, doc := range docs {
				if matchFilter(doc, stage.Match) {
					kept = append(kept, doc)
				}
			}
			docs = kept
		case stage.Sort != nil:
			sortDocs(docs, stage.Sort)
		case stage.Limit > 0:
			if int64(len(docs)) > stage.Limit {
				docs = docs[:stage.Limit]
			}
		}
	}

	return decodeDocs(docs, dest)
}

// InsertOne implements Store.
func (m *Memory) InsertOne(ctx context.Context, collection string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	converted, err := toDoc(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.collections[collection] = append(m.collections[collection], converted)
	m.mu.Unlock()
	return nil
}

// InsertMany implements Store.
func (m *Memory) InsertMany(ctx context.Context, collection string, docs []any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	converted := make([]bson.M, 0, len(docs))
	for _, doc := range docs {
		c, err := toDoc(doc)
		if err != nil {
			return err
		}
		converted = append(converted, c)
	}

	m.mu.Lock()
	m.collections[collection] = append(m.collections[collection], converted...)
	m.mu.Unlock()
	return nil
}

// UpdateOne implements Store.
func (m *Memory) UpdateOne(ctx context.Context, collection string, filter Filter, update Update) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range m.collections[collection] {
		if matchFilter(doc, filter) {
			for key, val := range update {
				doc[key] = toBSONValue(val)
			}
			return 1, nil
		}
	}
	return 0, nil
}

// DeleteOne implements Store.
func (m *Memory) DeleteOne(ctx context.Context, collection string, filter Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.collections[collection]
	for i, doc := range docs {
		if matchFilter(doc, filter) {
			m.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// DeleteMany implements Store.
func (m *Memory) DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := make([]bson.M, 0)
	var deleted int64
	for _, doc := range m.collections[collection] {
		if matchFilter(doc, filter) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	m.collections[collection] = kept
	return deleted, nil
}

// CountDocuments implements Store.
func (m *Memory) CountDocuments(ctx context.Context, collection string, filter Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, doc := range m.collections[collection] {
		if matchFilter(doc, filter) {
			count++
		}
	}
	return count, nil
}

// Ping implements the readiness check; the memory store is always up.
func (m *Memory) Ping(context.Context) error { return nil }

// toDoc converts an arbitrary document into the canonical map form via a
// BSON round trip.
func toDoc(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	out := bson.M{}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeDocs decodes matched documents into dest, which must be a
// pointer to a slice.
func decodeDocs(docs []bson.M, dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return ErrNotFound
	}

	slice := rv.Elem()
	elemType := slice.Type().Elem()
	out := reflect.MakeSlice(slice.Type(), 0, len(docs))

	for _, doc := range docs {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return err
		}
		elem := reflect.New(elemType)
		if err := bson.Unmarshal(raw, elem.Interface()); err != nil {
			return err
		}
		out = reflect.Append(out, elem.Elem())
	}

	slice.Set(out)
	return nil
}

// matchFilter reports whether doc satisfies every condition in filter.
func matchFilter(doc bson.M, filter Filter) bool {
	for key, cond := range filter {
		val, present := doc[key]
		if cmp, ok := cond.(Cmp); ok {
			if !matchCmp(val, present, cmp) {
				return false
			}
			continue
		}
		if !present || !valuesEqual(val, cond) {
			return false
		}
	}
	return true
}

func matchCmp(val any, present bool, cmp Cmp) bool {
	if cmp.In != nil && !containsValue(val, present, cmp.In) {
		return false
	}
	if cmp.NotIn != nil && containsValue(val, present, cmp.NotIn) {
		return false
	}
	if cmp.Gt != nil && (!present || compareValues(val, cmp.Gt) <= 0) {
		return false
	}
	if cmp.Gte != nil && (!present || compareValues(val, cmp.Gte) < 0) {
		return false
	}
	if cmp.Lt != nil && (!present || compareValues(val, cmp.Lt) >= 0) {
		return false
	}
	if cmp.Lte != nil && (!present || compareValues(val, cmp.Lte) > 0) {
		return false
	}
	if cmp.Ne != nil && present && valuesEqual(val, cmp.Ne) {
		return false
	}
	return true
}

// containsValue implements $in semantics: for an array-valued field the
// document matches when the arrays intersect, otherwise on membership.
func containsValue(val any, present bool, candidates []any) bool {
	if !present {
		return false
	}
	if arr, ok := val.(bson.A); ok {
		for _, elem := range arr {
			for _, c := range candidates {
				if valuesEqual(elem, c) {
					return true
				}
			}
		}
		return false
	}
	for _, c := range candidates {
		if valuesEqual(val, c) {
			return true
		}
	}
	return false
}

func valuesEqual(a, b any) bool {
	na, nb := normalizeValue(a), normalizeValue(b)
	if fa, ok := na.(float64); ok {
		fb, ok := nb.(float64)
		return ok && fa == fb
	}
	return na == nb
}

// compareValues returns -1, 0 or 1. Values of incomparable kinds compare
// as equal, matching how the sort treats them.
func compareValues(a, b any) int {
	na, nb := normalizeValue(a), normalizeValue(b)

	if fa, ok := na.(float64); ok {
		if fb, ok := nb.(float64); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	if sa, ok := na.(string); ok {
		if sb, ok := nb.(string); ok {
			return strings.Compare(sa, sb)
		}
	}
	return 0
}

// normalizeValue collapses the numeric and time types BSON round trips
// produce into float64, so filters written with Go ints match stored
// int32/int64/double values.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	case time.Time:
		return float64(x.UnixMilli())
	case bson.DateTime:
		return float64(x)
	case string:
		return x
	default:
		// Named string types (enums) compare against their underlying value.
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.String {
			return rv.String()
		}
		return v
	}
}

// toBSONValue converts update values the same way inserts do.
func toBSONValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return bson.NewDateTimeFromTime(t)
	}
	return v
}

func sortDocs(docs []bson.M, keys Sort) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, key := range keys {
			c := compareValues(docs[i][key.Key], docs[j][key.Key])
			if c == 0 {
				continue
			}
			if key.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
