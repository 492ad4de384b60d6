package remote

import (
	"context"
	"sort"
	"sync"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/common"
)

// MemoryClient is an in-memory Client used by tests and offline development.
// It records per-collection List call counts so tests can assert that a
// fresh cache hit performs zero remote calls.
type MemoryClient struct {
	mu        sync.Mutex
	data      map[string]map[string]RawDoc
	subs      map[string][]*memorySub
	listCalls map[string]int
	failWith  error
}

type memorySub struct {
	fn     func(Snapshot)
	closed bool
}

var _ Client = (*MemoryClient)(nil)

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		data:      make(map[string]map[string]RawDoc),
		subs:      make(map[string][]*memorySub),
		listCalls: make(map[string]int),
	}
}

// FailWith makes every subsequent call return err; pass nil to heal.
func (c *MemoryClient) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failWith = err
}

// ListCalls reports how many List calls were made for collection.
func (c *MemoryClient) ListCalls(collection string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listCalls[collection]
}

// Seed loads documents into a collection without notifying subscribers.
func (c *MemoryClient) Seed(collection string, docs ...Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.collection(collection)
	for _, d := range docs {
		m[d.ID] = cloneRaw(d.Data)
	}
}

// collection returns the map for name, creating it if needed. Caller holds mu.
func (c *MemoryClient) collection(name string) map[string]RawDoc {
	m, ok := c.data[name]
	if !ok {
		m = make(map[string]RawDoc)
		c.data[name] = m
	}
	return m
}

func cloneRaw(raw RawDoc) RawDoc {
	out := make(RawDoc, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	return out
}

func (c *MemoryClient) snapshotLocked(collection string) []Document {
	m := c.collection(collection)
	docs := make([]Document, 0, len(m))
	for id, raw := range m {
		docs = append(docs, Document{ID: id, Data: cloneRaw(raw)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

// notifyLocked delivers the full current result set to every live
// subscriber of collection. Caller holds mu; callbacks run synchronously so
// delivery order matches mutation order.
func (c *MemoryClient) notifyLocked(collection string) {
	snap := Snapshot{Collection: collection, Documents: c.snapshotLocked(collection)}
	for _, sub := range c.subs[collection] {
		if !sub.closed {
			sub.fn(snap)
		}
	}
}

func (c *MemoryClient) List(ctx context.Context, collection string, opts ListOptions) ([]Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listCalls[collection]++
	if c.failWith != nil {
		return nil, c.failWith
	}

	docs := c.snapshotLocked(collection)
	if opts.OrderBy != "" {
		field, desc := opts.OrderBy, opts.Descending
		sort.SliceStable(docs, func(i, j int) bool {
			a, _ := docs[i].Data[field].(string)
			b, _ := docs[j].Data[field].(string)
			if desc {
				return a > b
			}
			return a < b
		})
	}
	return docs, nil
}

func (c *MemoryClient) Get(ctx context.Context, collection, id string) (Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return Document{}, c.failWith
	}
	raw, ok := c.collection(collection)[id]
	if !ok {
		return Document{}, common.ErrNotFound
	}
	return Document{ID: id, Data: cloneRaw(raw)}, nil
}

func (c *MemoryClient) Set(ctx context.Context, collection, id string, data RawDoc) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	c.collection(collection)[id] = cloneRaw(data)
	c.notifyLocked(collection)
	return nil
}

func (c *MemoryClient) Merge(ctx context.Context, collection, id string, data RawDoc) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	m := c.collection(collection)
	existing, ok := m[id]
	if !ok {
		existing = make(RawDoc)
		m[id] = existing
	}
	for k, v := range data {
		existing[k] = v
	}
	c.notifyLocked(collection)
	return nil
}

func (c *MemoryClient) Delete(ctx context.Context, collection, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	delete(c.collection(collection), id)
	c.notifyLocked(collection)
	return nil
}

func (c *MemoryClient) Subscribe(ctx context.Context, collection string, fn func(Snapshot)) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return nil, c.failWith
	}

	sub := &memorySub{fn: fn}
	c.subs[collection] = append(c.subs[collection], sub)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			sub.closed = true
		})
	}

	go func() {
		<-ctx.Done()
		stop()
	}()

	return stop, nil
}

func (c *MemoryClient) Close() error { return nil }
