package normalize

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/dfinance/move-tools/internal/dialects"
	"github.com/dfinance/move-tools/internal/file"
)

const DefaultCacheSize = 512

type cacheKey struct {
	path    string
	sum     [32]byte
	dialect string
	policy  dialects.MalformedPolicy
	sender  string
	stdlib  string
}

// Cache memoizes successful normalizations. The language server re-checks
// the whole workspace on every edit while most files stay unchanged.
type Cache struct {
	entries *lru.Cache[cacheKey, Normalized]
}

func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[cacheKey, Normalized](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

func (c *Cache) key(n *Normalizer, f file.File) cacheKey {
	return cacheKey{
		path:    f.Path,
		sum:     blake2b.Sum256([]byte(f.Content)),
		dialect: n.Dialect.Name(),
		policy:  n.Dialect.Policy(),
		sender:  n.Sender.Literal,
		stdlib:  n.StdlibDir,
	}
}

func (c *Cache) get(n *Normalizer, f file.File) (Normalized, bool) {
	if c == nil {
		return Normalized{}, false
	}
	return c.entries.Get(c.key(n, f))
}

func (c *Cache) add(n *Normalizer, f file.File, result Normalized) {
	if c == nil {
		return
	}
	c.entries.Add(c.key(n, f), result)
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

func (c *Cache) Purge() {
	if c != nil {
		c.entries.Purge()
	}
}
