package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewMemoryDB returns a DB kept entirely in process memory. Documents go
// through the same BSON encoding as the Mongo backend, so decoding, sorting
// and uniqueness behave the same way.
func NewMemoryDB() *DB {
	return &DB{backend: &memoryBackend{collections: map[string]*memoryCollection{}}}
}

type memoryBackend struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

func (b *memoryBackend) collection(name string) Collection {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.collections[name]
	if !ok {
		c = newMemoryCollection()
		b.collections[name] = c
	}
	return c
}

func (b *memoryBackend) ping(ctx context.Context) error {
	return ctx.Err()
}

func (b *memoryBackend) disconnect(context.Context) error {
	return nil
}

type memoryCollection struct {
	mu     sync.RWMutex
	order  []string
	docs   map[string]bson.M
	unique [][]string
}

func newMemoryCollection() *memoryCollection {
	return &memoryCollection{docs: map[string]bson.M{}}
}

func (c *memoryCollection) Insert(ctx context.Context, doc any) (*InsertResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := toDocument(doc)
	if err != nil {
		return nil, err
	}
	if _, ok := m["_id"]; !ok {
		m["_id"] = primitive.NewObjectID()
	}
	key := idString(m["_id"])

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.docs[key]; exists {
		return nil, ErrDuplicate
	}
	if c.violatesUnique(m, key) {
		return nil, ErrDuplicate
	}
	c.docs[key] = m
	c.order = append(c.order, key)
	return &InsertResult{Acknowledged: true, InsertedID: key}, nil
}

func (c *memoryCollection) FindByID(ctx context.Context, id string, out any) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	return c.FindOne(ctx, Filter{"_id": oid}, out)
}

func (c *memoryCollection) FindOne(ctx context.Context, filter Filter, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := toDocument(filter)
	if err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, key := range c.order {
		if doc := c.docs[key]; matches(doc, f) {
			return decodeDocument(doc, out)
		}
	}
	return ErrNotFound
}

func (c *memoryCollection) FindMany(ctx context.Context, filter Filter, opts *FindOptions, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sliceVal := reflect.ValueOf(out)
	if sliceVal.Kind() != reflect.Ptr || sliceVal.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("store: FindMany needs a pointer to a slice, got %T", out)
	}
	f, err := toDocument(filter)
	if err != nil {
		return err
	}

	c.mu.RLock()
	var found []bson.M
	for _, key := range c.order {
		if doc := c.docs[key]; matches(doc, f) {
			found = append(found, doc)
		}
	}
	c.mu.RUnlock()

	if opts != nil && opts.SortKey != "" {
		sort.SliceStable(found, func(i, j int) bool {
			cmp := compareValues(found[i][opts.SortKey], found[j][opts.SortKey])
			if opts.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	if opts != nil && opts.Limit > 0 && int64(len(found)) > opts.Limit {
		found = found[:opts.Limit]
	}

	elemType := sliceVal.Elem().Type().Elem()
	result := reflect.MakeSlice(sliceVal.Elem().Type(), 0, len(found))
	for _, doc := range found {
		elem := reflect.New(elemType)
		if err := decodeDocument(doc, elem.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, elem.Elem())
	}
	sliceVal.Elem().Set(result)
	return nil
}

func (c *memoryCollection) UpdateByID(ctx context.Context, id string, fields Fields) (*UpdateResult, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	set, err := toDocument(fields)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	key := oid.Hex()
	doc, ok := c.docs[key]
	if !ok {
		return &UpdateResult{Acknowledged: true}, nil
	}
	next := bson.M{}
	for k, v := range doc {
		next[k] = v
	}
	modified := false
	for k, v := range set {
		if !reflect.DeepEqual(next[k], v) {
			modified = true
		}
		next[k] = v
	}
	if c.violatesUnique(next, key) {
		return nil, ErrDuplicate
	}
	c.docs[key] = next
	res := &UpdateResult{Acknowledged: true, MatchedCount: 1}
	if modified {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (c *memoryCollection) DeleteByID(ctx context.Context, id string) (*DeleteResult, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := oid.Hex()
	if _, ok := c.docs[key]; !ok {
		return &DeleteResult{Acknowledged: true}, nil
	}
	delete(c.docs, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return &DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func (c *memoryCollection) EnsureUnique(ctx context.Context, fields ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("store: unique constraint needs at least one field")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.unique {
		if reflect.DeepEqual(existing, fields) {
			return nil
		}
	}
	c.unique = append(c.unique, append([]string(nil), fields...))
	return nil
}

// violatesUnique reports whether doc collides with another stored document on
// any unique constraint. Caller holds the lock.
func (c *memoryCollection) violatesUnique(doc bson.M, selfKey string) bool {
	for _, fields := range c.unique {
		for key, other := range c.docs {
			if key == selfKey {
				continue
			}
			same := true
			for _, f := range fields {
				if !reflect.DeepEqual(other[f], doc[f]) {
					same = false
					break
				}
			}
			if same {
				return true
			}
		}
	}
	return false
}

func matches(doc, filter bson.M) bool {
	for k, v := range filter {
		if !reflect.DeepEqual(doc[k], v) {
			return false
		}
	}
	return true
}

func toDocument(v any) (bson.M, error) {
	if m, ok := v.(bson.M); v == nil || ok && m == nil {
		return bson.M{}, nil
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeDocument(doc bson.M, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

// compareValues orders BSON values the way a sort on a single key needs:
// missing values first, then numbers, strings and dates by their natural order.
func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case nil:
		return 0
	case string:
		y := b.(string)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case primitive.DateTime:
		return compareInt64(int64(x), int64(b.(primitive.DateTime)))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	}
	if fa, ok := toFloat(a); ok {
		fb, _ := toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case int32, int64, float64:
		return 1
	case string:
		return 2
	case bool:
		return 4
	case primitive.DateTime:
		return 5
	default:
		return 3
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
