package cache

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// miscDir collects entries whose key has an empty Path.
const miscDir = "_misc"

// DiskConfig holds configuration for the disk cache.
type DiskConfig struct {
	// RootDir is the directory where cached blocks are stored.
	RootDir string
	// MaxSizeBytes is the maximum total size of cached blocks.
	MaxSizeBytes int64
	// MaxConcurrentWrites limits background writes. Defaults to 16
	// if <= 0.
	MaxConcurrentWrites int64
}

// DiskBlockCache is a BlockCache backed by the local filesystem, meant
// as a second tier under an in-memory cache when the blob store is
// remote. It keeps an in-memory LRU index of the files on disk and
// rebuilds the index by scanning RootDir on startup.
//
// Writes happen in the background and are dropped, not queued, when the
// write limit is saturated; a cache fill is never worth blocking a read.
type DiskBlockCache struct {
	mu          sync.Mutex
	rootDir     string
	maxSize     int64
	currentSize int64

	writeSem *semaphore.Weighted
	wg       sync.WaitGroup

	items            map[Key]*diskEntry
	lruHead, lruTail *diskEntry

	hits   atomic.Int64
	misses atomic.Int64
}

type diskEntry struct {
	key        Key
	size       int64
	filePath   string
	next, prev *diskEntry
}

var _ BlockCache = (*DiskBlockCache)(nil)

// NewDiskBlockCache creates a disk-backed block cache rooted at
// config.RootDir, creating the directory if needed.
func NewDiskBlockCache(config DiskConfig) (*DiskBlockCache, error) {
	if err := os.MkdirAll(config.RootDir, 0o755); err != nil {
		return nil, err
	}

	maxWrites := config.MaxConcurrentWrites
	if maxWrites <= 0 {
		maxWrites = 16
	}

	c := &DiskBlockCache{
		rootDir:  config.RootDir,
		maxSize:  config.MaxSizeBytes,
		writeSem: semaphore.NewWeighted(maxWrites),
		items:    make(map[Key]*diskEntry),
	}
	c.scanExistingFiles()
	return c, nil
}

// scanExistingFiles rebuilds the index from files left by a previous
// process. Unparseable files are ignored.
func (c *DiskBlockCache) scanExistingFiles() {
	_ = filepath.WalkDir(c.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil //nolint:nilerr // keep scanning past unreadable entries
		}
		key, ok := c.parsePath(path)
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr
		}
		c.mu.Lock()
		c.addEntry(key, path, info.Size())
		c.mu.Unlock()
		return nil
	})
}

// relPath encodes a key as <Path>/<Block>.blk, preserving the blob name
// as directory structure so Invalidate can reason per blob.
func (c *DiskBlockCache) relPath(key Key) string {
	dir := key.Path
	if dir == "" {
		dir = miscDir
	}
	return filepath.Join(filepath.FromSlash(dir), fmt.Sprintf("%d.blk", key.Block))
}

func (c *DiskBlockCache) parsePath(absPath string) (Key, bool) {
	rel, err := filepath.Rel(c.rootDir, absPath)
	if err != nil {
		return Key{}, false
	}

	dir, file := filepath.Split(rel)
	dir = strings.TrimSuffix(dir, string(filepath.Separator))

	var key Key
	if n, err := fmt.Sscanf(file, "%d.blk", &key.Block); err != nil || n != 1 {
		return Key{}, false
	}
	if dir != miscDir {
		key.Path = filepath.ToSlash(dir)
	}
	return key, true
}

// Get returns a cached block, reading it back from disk.
func (c *DiskBlockCache) Get(_ context.Context, key Key) ([]byte, bool) {
	c.mu.Lock()
	ent, ok := c.items[key]
	if ok {
		c.moveToFront(ent)
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	data, err := os.ReadFile(ent.filePath)
	if err != nil {
		// Index out of sync with disk; drop the entry.
		c.mu.Lock()
		c.removeEntry(ent)
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return data, true
}

// Set caches a block in the background. Blocks are immutable, so an
// existing entry is only touched, never rewritten.
func (c *DiskBlockCache) Set(_ context.Context, key Key, b []byte) {
	c.mu.Lock()
	if ent, ok := c.items[key]; ok {
		c.moveToFront(ent)
		c.mu.Unlock()
		return
	}

	size := int64(len(b))
	for c.currentSize+size > c.maxSize && c.lruTail != nil {
		c.evictTail()
	}
	c.mu.Unlock()

	if !c.writeSem.TryAcquire(1) {
		return
	}

	absPath := filepath.Join(c.rootDir, c.relPath(key))

	// The index is only updated after the rename, so concurrent Gets
	// miss and refetch from the backend while the write is in flight.
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.writeSem.Release(1)

		if err := writeFileAtomic(absPath, b); err != nil {
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		for c.currentSize+size > c.maxSize && c.lruTail != nil {
			c.evictTail()
		}
		c.addEntry(key, absPath, size)
	}()
}

func writeFileAtomic(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "tmp-blk-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Invalidate removes matching entries and their files.
func (c *DiskBlockCache) Invalidate(predicate func(key Key) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*diskEntry
	for key, ent := range c.items {
		if predicate(key) {
			toRemove = append(toRemove, ent)
		}
	}
	for _, ent := range toRemove {
		_ = os.Remove(ent.filePath)
		c.removeEntry(ent)
	}
}

// Close waits for in-flight background writes to finish.
func (c *DiskBlockCache) Close() error {
	c.wg.Wait()
	return nil
}

// Stats returns cumulative hit and miss counts.
func (c *DiskBlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the total size of cached blocks on disk.
func (c *DiskBlockCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentSize
}

// LRU list helpers. Caller must hold mu.

func (c *DiskBlockCache) addEntry(key Key, path string, size int64) {
	if _, ok := c.items[key]; ok {
		// A concurrent Set won the race; the file contents are
		// identical, so keep the existing entry.
		return
	}

	ent := &diskEntry{key: key, filePath: path, size: size}
	c.items[key] = ent
	c.currentSize += size

	if c.lruHead == nil {
		c.lruHead, c.lruTail = ent, ent
		return
	}
	ent.next = c.lruHead
	c.lruHead.prev = ent
	c.lruHead = ent
}

func (c *DiskBlockCache) moveToFront(ent *diskEntry) {
	if c.lruHead == ent {
		return
	}
	c.unlink(ent)
	ent.next = c.lruHead
	ent.prev = nil
	c.lruHead.prev = ent
	c.lruHead = ent
	if c.lruTail == nil {
		c.lruTail = ent
	}
}

func (c *DiskBlockCache) removeEntry(ent *diskEntry) {
	if cur, ok := c.items[ent.key]; !ok || cur != ent {
		return
	}
	delete(c.items, ent.key)
	c.currentSize -= ent.size
	c.unlink(ent)
}

func (c *DiskBlockCache) evictTail() {
	ent := c.lruTail
	if ent == nil {
		return
	}
	_ = os.Remove(ent.filePath)
	c.removeEntry(ent)
}

func (c *DiskBlockCache) unlink(ent *diskEntry) {
	if ent.prev != nil {
		ent.prev.next = ent.next
	} else if c.lruHead == ent {
		c.lruHead = ent.next
	}
	if ent.next != nil {
		ent.next.prev = ent.prev
	} else if c.lruTail == ent {
		c.lruTail = ent.prev
	}
	ent.prev, ent.next = nil, nil
}
