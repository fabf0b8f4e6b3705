// Package cache keeps decoded data contracts across blocks.
//
// The cache has two tiers: a block overlay holding contracts written by the
// block being executed, and a global LRU of committed contracts. The overlay
// is merged into the global tier when the block commits and dropped when it
// is discarded. Only the block coordinator writes; cached contracts are
// shared and must not be mutated.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/transition/contract"
)

// Contracts is the two-tier contract cache.
type Contracts struct {
	mu     sync.RWMutex
	global *lru.Cache
	block  map[inter.Identifier]*contract.DataContract
}

// NewContracts creates a cache keeping up to size committed contracts.
func NewContracts(size int) (*Contracts, error) {
	global, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Contracts{
		global: global,
		block:  make(map[inter.Identifier]*contract.DataContract),
	}, nil
}

// Get returns a contract, preferring the block overlay.
func (c *Contracts) Get(id inter.Identifier) (*contract.DataContract, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if dc, ok := c.block[id]; ok {
		return dc, true
	}
	if v, ok := c.global.Get(id); ok {
		return v.(*contract.DataContract), true
	}
	return nil, false
}

// PutCommitted caches a contract read from committed state.
func (c *Contracts) PutCommitted(dc *contract.DataContract) {
	c.global.Add(dc.ID, dc)
}

// PutBlock caches a contract written by the current block.
func (c *Contracts) PutBlock(dc *contract.DataContract) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.block[dc.ID] = dc
}

// InBlock reports whether the current block wrote the contract.
func (c *Contracts) InBlock(id inter.Identifier) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.block[id]
	return ok
}

// MergeBlock moves the block overlay into the global tier.
func (c *Contracts) MergeBlock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, dc := range c.block {
		c.global.Add(id, dc)
	}
	c.block = make(map[inter.Identifier]*contract.DataContract)
}

// ClearBlock drops the block overlay.
func (c *Contracts) ClearBlock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.block = make(map[inter.Identifier]*contract.DataContract)
}

// Evict forgets a contract in both tiers, so the next read goes to the
// store.
func (c *Contracts) Evict(id inter.Identifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.block, id)
	c.global.Remove(id)
}

// Purge empties both tiers.
func (c *Contracts) Purge() {
	c.ClearBlock()
	c.global.Purge()
}

// Len is the number of globally cached contracts.
func (c *Contracts) Len() int {
	return c.global.Len()
}
