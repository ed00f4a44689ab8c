package memory

import (
	"encoding/json"
	"fmt"
	"maps"
	"sort"

	"github.com/vsinha/procure/pkg/domain/entities"
)

// record holds an encoded row. Rows are stored encoded so callers never share
// memory with the store and a snapshot is a shallow map copy.
type record struct {
	seq  uint64
	data []byte
}

// collection is a table of one entity type with optional unique indexes.
type collection[T any] struct {
	entity  string
	idOf    func(*T) string
	uniques []func(*T) string
	rows    map[string]record
	indexes []map[string]string
	nextSeq uint64
}

func newCollection[T any](entity string, idOf func(*T) string, uniques ...func(*T) string) *collection[T] {
	c := &collection[T]{
		entity:  entity,
		idOf:    idOf,
		uniques: uniques,
		rows:    make(map[string]record),
		indexes: make([]map[string]string, len(uniques)),
	}
	for i := range c.indexes {
		c.indexes[i] = make(map[string]string)
	}
	return c
}

func (c *collection[T]) clone() *collection[T] {
	out := &collection[T]{
		entity:  c.entity,
		idOf:    c.idOf,
		uniques: c.uniques,
		rows:    maps.Clone(c.rows),
		indexes: make([]map[string]string, len(c.indexes)),
		nextSeq: c.nextSeq,
	}
	for i, idx := range c.indexes {
		out.indexes[i] = maps.Clone(idx)
	}
	return out
}

func (c *collection[T]) decode(r record) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(r.data, v); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", c.entity, err)
	}
	return v, nil
}

func (c *collection[T]) get(id string) (*T, error) {
	r, exists := c.rows[id]
	if !exists {
		return nil, entities.NewNotFound(c.entity, id)
	}
	return c.decode(r)
}

// lookup resolves a row through unique index i.
func (c *collection[T]) lookup(i int, key string) (*T, error) {
	id, exists := c.indexes[i][key]
	if !exists || key == "" {
		return nil, entities.NewNotFound(c.entity, key)
	}
	return c.get(id)
}

// find returns matching rows in insertion order. A nil match returns all rows.
func (c *collection[T]) find(match func(*T) bool) ([]*T, error) {
	ordered := make([]record, 0, len(c.rows))
	for _, r := range c.rows {
		ordered = append(ordered, r)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })

	var out []*T
	for _, r := range ordered {
		v, err := c.decode(r)
		if err != nil {
			return nil, err
		}
		if match == nil || match(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// put inserts or replaces v, enforcing unique indexes.
func (c *collection[T]) put(v *T) error {
	id := c.idOf(v)
	if id == "" {
		return fmt.Errorf("%s id cannot be empty", c.entity)
	}
	keys := make([]string, len(c.uniques))
	for i, key := range c.uniques {
		keys[i] = key(v)
		if keys[i] == "" {
			continue
		}
		if owner, taken := c.indexes[i][keys[i]]; taken && owner != id {
			return fmt.Errorf("%s %q: %w", c.entity, keys[i], entities.ErrDuplicate)
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.entity, err)
	}

	seq := c.nextSeq
	if prev, exists := c.rows[id]; exists {
		seq = prev.seq
		old, err := c.decode(prev)
		if err != nil {
			return err
		}
		for i, key := range c.uniques {
			if k := key(old); c.indexes[i][k] == id {
				delete(c.indexes[i], k)
			}
		}
	} else {
		c.nextSeq++
	}
	c.rows[id] = record{seq: seq, data: data}
	for i, k := range keys {
		if k != "" {
			c.indexes[i][k] = id
		}
	}
	return nil
}
