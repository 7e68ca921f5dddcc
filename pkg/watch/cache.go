package watch

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"

	"bf2py/pkg/compiler"
)

// Cache remembers a digest of the last source translated for each path, so
// that saving a file without changing it does not trigger a new translation.
type Cache struct {
	digests *lru.Cache
}

// NewCache returns a cache holding at most size paths.
func NewCache(size int) (*Cache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{digests: c}, nil
}

func digest(cfg compiler.Config, source []byte) uint64 {
	d := xxhash.New()
	fmt.Fprintf(d, "%d/%d/%d/%d\x00", cfg.TapeSize, cfg.CellWidth, cfg.Layout, cfg.Indent)
	d.Write(source)
	return d.Sum64()
}

// Changed reports whether source, translated with cfg, differs from what was
// last recorded for path, and records it.
func (c *Cache) Changed(path string, cfg compiler.Config, source []byte) bool {
	sum := digest(cfg, source)
	if v, ok := c.digests.Get(path); ok && v.(uint64) == sum {
		return false
	}
	c.digests.Add(path, sum)
	return true
}

// Forget drops what is recorded for path.
func (c *Cache) Forget(path string) {
	c.digests.Remove(path)
}
