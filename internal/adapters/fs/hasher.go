package fs

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/incr/internal/core/domain"
	"go.trai.ch/incr/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// DefaultHashCacheSize is the number of file hashes kept in memory.
const DefaultHashCacheSize = 4096

type cachedHash struct {
	size    int64
	modTime time.Time
	hash    string
}

// Hasher computes XXHash content fingerprints. Results are cached per path
// and reused while the file's size and modification time are unchanged.
type Hasher struct {
	cache *lru.Cache[string, cachedHash]
}

// NewHasher creates a new Hasher caching up to size file hashes.
func NewHasher(size int) (*Hasher, error) {
	cache, err := lru.New[string, cachedHash](size)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create hash cache")
	}
	return &Hasher{cache: cache}, nil
}

// HashFile returns the hex encoded XXHash of the file content at path.
func (h *Hasher) HashFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", path)
	}

	if cached, ok := h.cache.Get(path); ok && cached.size == info.Size() && cached.modTime.Equal(info.ModTime()) {
		return cached.hash, nil
	}

	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}

	hash := fmt.Sprintf("%016x", digest.Sum64())
	h.cache.Add(path, cachedHash{size: info.Size(), modTime: info.ModTime(), hash: hash})
	return hash, nil
}
