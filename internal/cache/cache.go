// Package cache stores generated translation units in BadgerDB, keyed by
// a fingerprint of everything that influences generation.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	multicode "github.com/redvampir/multicode-sub002"
	"github.com/redvampir/multicode-sub002/codegen"
)

// Key prefixes
const (
	prefixOutput = "out:" // generated output by fingerprint
)

// formatVersion is mixed into every fingerprint; bump it when generators
// change their output so stale entries are never served
const formatVersion = "multicode/2"

// DefaultTTL is how long entries live unless the cache was opened with
// another TTL
const DefaultTTL = 7 * 24 * time.Hour

// ErrClosed is returned by operations on a closed cache
var ErrClosed = errors.New("cache is closed")

// Entry is a cached generation result
type Entry struct {
	Code        string                 `json:"code"`
	Includes    []string               `json:"includes"`
	Diagnostics []multicode.Diagnostic `json:"diagnostics"`
	// SourceMap ties lines of Code to the nodes that produced them
	SourceMap []codegen.SourceMapping `json:"sourceMap,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}

// NewEntry captures an output for caching
func NewEntry(out *codegen.Output) *Entry {
	return &Entry{
		Code:        out.Code(),
		Includes:    out.Includes,
		Diagnostics: out.Diagnostics,
		SourceMap:   out.SourceMap,
		CreatedAt:   time.Now().UTC(),
	}
}

// Options configures Open
type Options struct {
	// Path of the database directory; empty keeps everything in memory
	Path string
	TTL  time.Duration
}

// Cache is a BadgerDB-backed output cache. It is safe for concurrent use.
type Cache struct {
	mu     sync.RWMutex
	db     *badger.DB
	ttl    time.Duration
	logger zerolog.Logger
}

// Open opens or creates the cache database
func Open(opts Options, logger zerolog.Logger) (*Cache, error) {
	bopts := badger.DefaultOptions(opts.Path).
		WithNumCompactors(2).
		WithLoggingLevel(badger.ERROR)
	if opts.Path == "" {
		bopts = bopts.WithInMemory(true)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("opening badger DB: %w", err)
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	logger.Debug().Str("path", opts.Path).Dur("ttl", ttl).Msg("generation cache opened")
	return &Cache{db: db, ttl: ttl, logger: logger}, nil
}

// Close releases the database
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// Get returns the entry stored under fingerprint
func (c *Cache) Get(fingerprint string) (*Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.db == nil {
		return nil, false, ErrClosed
	}

	var entry Entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(outputKey(fingerprint))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	return &entry, true, nil
}

// Put stores entry under fingerprint
func (c *Cache) Put(fingerprint string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.db == nil {
		return ErrClosed
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(outputKey(fingerprint), data).WithTTL(c.ttl))
	})
}

// GetOrGenerate returns the cached entry or runs generate and stores its
// result. The boolean reports a cache hit. Outputs with errors are not
// stored.
func (c *Cache) GetOrGenerate(fingerprint string, generate func() (*codegen.Output, error)) (*Entry, bool, error) {
	if entry, ok, err := c.Get(fingerprint); err != nil || ok {
		return entry, ok, err
	}

	out, err := generate()
	if err != nil {
		return nil, false, err
	}
	entry := NewEntry(out)
	if out.HasErrors() {
		c.logger.Debug().Str("fingerprint", fingerprint).Msg("not caching output with errors")
		return entry, false, nil
	}
	if err := c.Put(fingerprint, entry); err != nil {
		return nil, false, err
	}
	return entry, false, nil
}

// Purge deletes every entry
func (c *Cache) Purge() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.db == nil {
		return ErrClosed
	}
	return c.db.DropPrefix([]byte(prefixOutput))
}

func outputKey(fingerprint string) []byte {
	return []byte(prefixOutput + fingerprint)
}

// Fingerprint hashes the graph, the options and the package definitions
// a run depends on
func Fingerprint(graph *multicode.Graph, opts multicode.Options, defs codegen.DefinitionLookup) (string, error) {
	var definitions []*multicode.NodeDefinition
	if defs != nil {
		definitions = defs.Definitions()
	}
	data, err := json.Marshal(struct {
		Version     string                      `json:"v"`
		Graph       *multicode.Graph            `json:"g"`
		Options     multicode.Options           `json:"o"`
		Definitions []*multicode.NodeDefinition `json:"d"`
	}{formatVersion, graph, opts, definitions})
	if err != nil {
		return "", fmt.Errorf("encode fingerprint input: %w", err)
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16), nil
}
