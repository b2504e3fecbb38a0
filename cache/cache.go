// Package cache is the client-side query cache. Entries are addressed by a
// resource name plus serialized query parameters and carry their own
// fresh/stale, loading and error state. At most one fetch per key is in flight;
// later callers attach to it.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

var ErrClosed = errors.New("cache: closed")

type Key struct {
	Resource string
	Params   string
}

// NewKey joins params with "/". A key without params addresses every entry of
// the resource when passed to Invalidate.
func NewKey(resource string, params ...string) Key {
	return Key{Resource: resource, Params: strings.Join(params, "/")}
}

func (k Key) String() string {
	if k.Params == "" {
		return k.Resource
	}
	return k.Resource + "/" + k.Params
}

// covers reports whether invalidating k must touch other.
func (k Key) covers(other Key) bool {
	if k.Resource != other.Resource {
		return false
	}
	return k.Params == "" || k.Params == other.Params
}

type Fetcher func(ctx context.Context) (any, error)

// Result is what a query resolved to. Stale is set when Value is an earlier
// successful result served because the latest fetch failed or was superseded.
type Result struct {
	Value     any
	Stale     bool
	FetchedAt time.Time
}

// State is a snapshot of one entry, for rendering loading and error states.
type State struct {
	HasValue bool
	Fresh    bool
	Loading  bool
	// Waiters is the number of callers blocked on the fetch in flight.
	Waiters   int
	Err       error
	FetchedAt time.Time
}

type RetryPolicy struct {
	// Attempts is the number of retries after the first failure.
	Attempts int
	Delay    time.Duration
}

type Options struct {
	Retry RetryPolicy
	// Retryable decides whether a failed fetch is retried. Defaults to
	// network and server errors.
	Retryable func(error) bool
	Logger    *slog.Logger
	Now       func() time.Time
}

type entry struct {
	value     any
	hasValue  bool
	fresh     bool
	err       error
	fetchedAt time.Time
	// gen is bumped by every invalidation; valueGen is the generation the
	// stored value was fetched under.
	gen      uint64
	valueGen uint64
	loading  int
	waiters  int
}

type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	group   singleflight.Group
	closed  bool

	retry     RetryPolicy
	retryable func(error) bool
	log       *slog.Logger
	now       func() time.Time
}

func New(opts Options) *Cache {
	c := &Cache{
		entries:   make(map[Key]*entry),
		retry:     opts.Retry,
		retryable: opts.Retryable,
		log:       opts.Logger,
		now:       opts.Now,
	}
	if c.retryable == nil {
		c.retryable = Transient
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Transient reports whether err is worth retrying on a read.
func Transient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch models.KindOf(err) {
	case models.KindNetwork, models.KindServer, "":
		return true
	}
	return false
}

// Query returns the cached value for key when it is fresh. Otherwise it runs
// fetch, or joins the fetch already running for key, and stores the result.
// On failure the previous value, if any, is returned marked stale together
// with the error.
//
// Cancelling ctx abandons the wait but not the fetch; its result is still
// stored when it arrives.
func (c *Cache) Query(ctx context.Context, key Key, fetch Fetcher) (Result, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Result{}, ErrClosed
	}
	e := c.entryLocked(key)
	if e.fresh && e.hasValue {
		res := Result{Value: e.value, FetchedAt: e.fetchedAt}
		c.mu.Unlock()
		return res, nil
	}
	gen := e.gen
	c.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		c.setLoading(key, 1)
		defer c.setLoading(key, -1)
		v, err := c.fetchWithRetry(fetchCtx, key, fetch)
		c.store(key, gen, v, err)
		return v, err
	})

	c.mu.Lock()
	e.waiters++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		e.waiters--
		c.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		res, _ := c.previous(key)
		return res, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			res, _ := c.previous(key)
			return res, r.Err
		}
		c.mu.Lock()
		res := Result{Value: r.Val, Stale: c.entries[key] != nil && c.entries[key].gen != gen, FetchedAt: e.fetchedAt}
		c.mu.Unlock()
		return res, nil
	}
}

// Invalidate marks every entry covered by keys stale. The next Query on any of
// them fetches again, even if a fetch started before the invalidation is still
// running.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		for _, inv := range keys {
			if inv.covers(k) {
				e.fresh = false
				e.gen++
				break
			}
		}
	}
	c.log.Debug("cache invalidated", "keys", keyStrings(keys))
}

func (c *Cache) State(key Key) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return State{}
	}
	return State{
		HasValue:  e.hasValue,
		Fresh:     e.fresh && e.hasValue,
		Loading:   e.loading > 0,
		Waiters:   e.waiters,
		Err:       e.err,
		FetchedAt: e.fetchedAt,
	}
}

// Peek returns the stored value for key without fetching.
func (c *Cache) Peek(key Key) (Result, bool) {
	return c.previous(key)
}

// Close drops every entry. Fetches still running complete but their results
// are discarded; later queries fail with ErrClosed.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.entries = make(map[Key]*entry)
}

func (c *Cache) entryLocked(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

func (c *Cache) previous(key Key) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.hasValue {
		return Result{}, false
	}
	return Result{Value: e.value, Stale: !e.fresh || e.err != nil, FetchedAt: e.fetchedAt}, true
}

func (c *Cache) setLoading(key Key, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.loading += delta
	}
}

func (c *Cache) fetchWithRetry(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	v, err := fetch(ctx)
	for attempt := 1; err != nil && attempt <= c.retry.Attempts && c.retryable(err); attempt++ {
		c.log.Debug("retrying query", "key", key.String(), "attempt", attempt, "error", err)
		time.Sleep(c.retry.Delay)
		if c.isClosed() {
			return nil, ErrClosed
		}
		v, err = fetch(ctx)
	}
	return v, err
}

func (c *Cache) store(key Key, gen uint64, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	e := c.entryLocked(key)
	if err != nil {
		e.err = err
		c.log.Warn("query failed", "key", key.String(), "error", err)
		return
	}
	// a slower fetch from an older generation must not overwrite a newer value
	if e.hasValue && gen < e.valueGen {
		return
	}
	e.value, e.hasValue, e.err = v, true, nil
	e.valueGen = gen
	e.fetchedAt = c.now()
	e.fresh = gen == e.gen
}

func (c *Cache) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func keyStrings(keys []Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
