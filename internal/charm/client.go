// ABOUTME: Charm KV client wrapper for workout log storage.
// ABOUTME: Implements storage.Repository on an E2E-encrypted, cloud-synced KV store.
package charm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	badger "github.com/dgraph-io/badger/v3"
	"github.com/harperreed/liftlog/internal/storage"
)

const (
	DefaultDBName = "liftlog"
	DefaultHost   = "charm.2389.dev"

	LogRecordPrefix = "log_record:"
	SeparatorPrefix = "separator:"

	orderKey        = "history_order"
	logRecordSeqKey = "seq:log_record"
	separatorSeqKey = "seq:separator"
)

var errReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")

// backend is the subset of *kv.KV the client uses.
type backend interface {
	Get(key []byte) ([]byte, error)
	Set(key []byte, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
	IsReadOnly() bool
	Close() error
}

// viewer is implemented by *kv.KV; it allows prefix scans inside one
// badger read transaction instead of a Keys() + Get() round trip per key.
type viewer interface {
	View(fn func(txn *badger.Txn) error) error
}

// Options configures Open.
type Options struct {
	Host     string
	DBName   string
	AutoSync bool
}

// Client stores log records, separators and history order in Charm KV.
type Client struct {
	kv       backend
	autoSync bool
	mu       sync.RWMutex
}

// Compile-time check that Client implements storage.Repository.
var _ storage.Repository = (*Client)(nil)

// Open opens the Charm KV database and pulls remote changes.
func Open(opts Options) (*Client, error) {
	host := opts.Host
	if host == "" {
		host = DefaultHost
	}
	name := opts.DBName
	if name == "" {
		name = DefaultDBName
	}

	// Set server before opening KV
	if err := os.Setenv("CHARM_HOST", host); err != nil {
		return nil, err
	}

	db, err := kv.OpenWithDefaultsFallback(name)
	if err != nil {
		return nil, fmt.Errorf("open charm kv: %w", err)
	}

	c := newClient(db, opts.AutoSync)

	// Pull remote data on startup (skip in read-only mode)
	if !db.IsReadOnly() {
		_ = db.Sync()
	}
	return c, nil
}

func newClient(b backend, autoSync bool) *Client {
	return &Client{kv: b, autoSync: autoSync}
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsReadOnly returns true if the database is open in read-only mode.
// This happens when another process (like an MCP server) holds the lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// ID returns the Charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Reset wipes local data and rebuilds from Charm Cloud.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}

// syncIfEnabled calls Sync if autoSync is enabled. Caller holds c.mu.
func (c *Client) syncIfEnabled() {
	if c.autoSync && !c.kv.IsReadOnly() {
		_ = c.kv.Sync()
	}
}

// checkWritable returns errReadOnly when another process holds the lock.
func (c *Client) checkWritable() error {
	if c.kv.IsReadOnly() {
		return errReadOnly
	}
	return nil
}

// nextID increments and returns the sequence stored at seqKey. Caller holds c.mu.
func (c *Client) nextID(seqKey string) (int64, error) {
	var current int64
	data, err := c.kv.Get([]byte(seqKey))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return 0, err
	default:
		current, err = strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse sequence %s: %w", seqKey, err)
		}
	}

	next := current + 1
	if err := c.kv.Set([]byte(seqKey), []byte(strconv.FormatInt(next, 10))); err != nil {
		return 0, err
	}
	return next, nil
}

// listByPrefix returns all values with keys matching the given prefix.
// Caller holds c.mu.
func (c *Client) listByPrefix(prefix string) ([][]byte, error) {
	prefixBytes := []byte(prefix)

	if v, ok := c.kv.(viewer); ok {
		var results [][]byte
		err := v.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefixBytes
			it := txn.NewIterator(opts)
			defer it.Close()
			for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
				val, err := it.Item().ValueCopy(nil)
				if err != nil {
					return err
				}
				results = append(results, val)
			}
			return nil
		})
		return results, err
	}

	keys, err := c.kv.Keys()
	if err != nil {
		return nil, err
	}

	var results [][]byte
	for _, key := range keys {
		if bytes.HasPrefix(key, prefixBytes) {
			val, err := c.kv.Get(key)
			if err != nil {
				return nil, err
			}
			results = append(results, val)
		}
	}
	return results, nil
}

// deleteByPrefix removes every key with the given prefix. Caller holds c.mu.
func (c *Client) deleteByPrefix(prefix string) error {
	keys, err := c.kv.Keys()
	if err != nil {
		return err
	}
	prefixBytes := []byte(prefix)
	for _, key := range keys {
		if bytes.HasPrefix(key, prefixBytes) {
			if err := c.kv.Delete(key); err != nil {
				return err
			}
		}
	}
	return nil
}

// recordKey formats a zero-padded key so lexical order matches id order.
func recordKey(prefix string, id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefix, id))
}

// unmarshalJSON is a helper to unmarshal JSON data.
func unmarshalJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
