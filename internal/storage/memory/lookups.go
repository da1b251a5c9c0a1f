package memory

import (
	"fmt"
	"math"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// MaxLookupCapacity is the largest capacity the table accepts. Larger
// requests are clamped to it.
const MaxLookupCapacity uint64 = math.MaxInt32

// Lookups is a bounded table of recently looked-up stat names and how
// often each was looked up. It implements domain.LookupTracker.
//
// A capacity of zero disables recording and discards the table. When full,
// the least recently looked-up name is evicted.
type Lookups struct {
	mu       sync.Mutex
	table    *simplelru.LRU[string, uint64]
	capacity uint64
	total    uint64
}

// NewLookups creates a disabled lookup table.
func NewLookups() *Lookups {
	return &Lookups{}
}

// Record counts one lookup of name. It is a no-op while disabled.
func (l *Lookups) Record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.table == nil {
		return
	}
	l.total++
	count, _ := l.table.Get(name)
	l.table.Add(name, count+1)
}

// RecentLookups calls fn for every tracked name, least recently used
// first, and returns the number of lookups since the last clear.
func (l *Lookups) RecentLookups(fn func(name string, count uint64)) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.table != nil {
		for _, name := range l.table.Keys() {
			if count, ok := l.table.Peek(name); ok {
				fn(name, count)
			}
		}
	}
	return l.total
}

// ClearRecentLookups zeroes the table and the total. The capacity is kept.
func (l *Lookups) ClearRecentLookups() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.table != nil {
		l.table.Purge()
	}
	l.total = 0
}

// SetRecentLookupCapacity resizes the table. Zero disables recording and
// drops every tracked name; growing or shrinking keeps the most recent ones.
// Capacities above MaxLookupCapacity are clamped.
func (l *Lookups) SetRecentLookupCapacity(capacity uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if capacity == 0 {
		l.table = nil
		l.capacity = 0
		return
	}
	capacity = min(capacity, MaxLookupCapacity)
	if l.table != nil {
		l.table.Resize(int(capacity))
		l.capacity = capacity
		return
	}
	table, err := simplelru.NewLRU[string, uint64](int(capacity), nil)
	if err != nil {
		panic(fmt.Sprintf("memory: recent lookups table of size %d: %v", capacity, err))
	}
	l.table = table
	l.capacity = capacity
}

// RecentLookupCapacity returns the current capacity, zero when disabled.
func (l *Lookups) RecentLookupCapacity() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.capacity
}
