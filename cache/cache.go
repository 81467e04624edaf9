// Package cache provides optional block-level caching for simplefs
// storage backends.
//
// The mounted filesystem re-reads directory entries from its backend
// on every Open. For backends where reads are cheap (RAM, local
// files) that is fine; for slow media, Wrap keeps recently read
// blocks in memory so repeated opens and scattered reads stop hitting
// the backend.
//
// Wrapping is purely a Storage decorator: the core's validation and
// read semantics are unchanged, and the wrapped Storage can be passed
// straight to simplefs.Mount.
package cache

import (
	"container/list"
	"errors"
	"io"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/meigma/simplefs"
)

// DefaultBlockSize is the default block size used by Wrap.
const DefaultBlockSize int64 = 64 << 10

// DefaultMaxBytes is the default cache byte budget used by Wrap.
const DefaultMaxBytes int64 = 8 << 20

// Option configures a wrapped storage.
type Option func(*config)

type config struct {
	blockSize int64
	maxBytes  int64
}

// WithBlockSize sets the block size used for caching. Smaller blocks
// improve hit rates for scattered reads; larger blocks cost fewer
// backend round trips for sequential reads.
func WithBlockSize(n int64) Option {
	return func(cfg *config) {
		cfg.blockSize = n
	}
}

// WithMaxBytes sets the cache byte budget. Once exceeded, the least
// recently used blocks are evicted. Values <= 0 disable the limit.
func WithMaxBytes(n int64) Option {
	return func(cfg *config) {
		cfg.maxBytes = n
	}
}

// Wrap returns a Storage that caches reads from src in fixed-size
// blocks.
//
// The returned Storage is safe for concurrent use; concurrent fetches
// of the same uncached block are deduplicated so the backend sees one
// read.
func Wrap(src simplefs.Storage, opts ...Option) (simplefs.Storage, error) {
	if src == nil {
		return nil, errors.New("cache: source is nil")
	}
	cfg := config{
		blockSize: DefaultBlockSize,
		maxBytes:  DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.blockSize <= 0 {
		return nil, errors.New("cache: block size must be > 0")
	}
	return &cachedStorage{
		src:       src,
		blockSize: cfg.blockSize,
		maxBytes:  cfg.maxBytes,
		blocks:    make(map[int64]*list.Element),
		lru:       list.New(),
	}, nil
}

// cachedStorage wraps a Storage with block-level caching.
type cachedStorage struct {
	src        simplefs.Storage
	blockSize  int64
	maxBytes   int64
	fetchGroup singleflight.Group // deduplicates concurrent fetches for same block

	mu     sync.Mutex
	blocks map[int64]*list.Element // block id -> lru element holding *cachedBlock
	lru    *list.List              // front = most recently used
	bytes  int64                   // current total size of cached blocks
}

type cachedBlock struct {
	id   int64
	data []byte
}

var _ simplefs.Storage = (*cachedStorage)(nil)

// Size returns the size of the underlying storage.
func (s *cachedStorage) Size() int64 {
	return s.src.Size()
}

// ReadAt implements io.ReaderAt, serving from cached blocks and
// fetching missing blocks from the underlying storage.
func (s *cachedStorage) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, errors.New("cache: negative offset")
	}
	if off >= s.src.Size() {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) {
		data, err := s.block(off / s.blockSize)
		if err != nil {
			return n, err
		}
		blockOff := off % s.blockSize
		if blockOff >= int64(len(data)) {
			return n, io.EOF
		}
		c := copy(p[n:], data[blockOff:])
		n += c
		off += int64(c)
	}
	return n, nil
}

// block returns the contents of the given block, fetching and caching
// it on a miss.
func (s *cachedStorage) block(id int64) ([]byte, error) {
	if data, ok := s.lookup(id); ok {
		return data, nil
	}

	v, err, _ := s.fetchGroup.Do(strconv.FormatInt(id, 10), func() (any, error) {
		// Another caller may have fetched the block while we waited
		// for the flight group.
		if data, ok := s.lookup(id); ok {
			return data, nil
		}

		start := id * s.blockSize
		length := min(s.blockSize, s.src.Size()-start)
		if length <= 0 {
			return []byte{}, nil
		}
		data := make([]byte, length)
		n, err := s.src.ReadAt(data, start)
		if n < len(data) {
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		s.store(id, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil //nolint:errcheck // fetch only stores []byte
}

func (s *cachedStorage) lookup(id int64) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elem, ok := s.blocks[id]
	if !ok {
		return nil, false
	}
	s.lru.MoveToFront(elem)
	return elem.Value.(*cachedBlock).data, true //nolint:errcheck // lru only holds *cachedBlock
}

func (s *cachedStorage) store(id int64, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blocks[id]; ok {
		return
	}
	s.blocks[id] = s.lru.PushFront(&cachedBlock{id: id, data: data})
	s.bytes += int64(len(data))

	for s.maxBytes > 0 && s.bytes > s.maxBytes && s.lru.Len() > 1 {
		oldest := s.lru.Back()
		blk := oldest.Value.(*cachedBlock) //nolint:errcheck // lru only holds *cachedBlock
		s.lru.Remove(oldest)
		delete(s.blocks, blk.id)
		s.bytes -= int64(len(blk.data))
	}
}
