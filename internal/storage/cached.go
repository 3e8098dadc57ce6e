package storage

import (
	"context"
	"errors"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

// CachedStore is a read-through, write-through freecache layer over another Store.
type CachedStore struct {
	next  Store
	cache *freecache.Cache
}

var _ Store = (*CachedStore)(nil)

func NewCachedStore(next Store, sizeMB int) *CachedStore {
	return &CachedStore{
		next:  next,
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
	}
}

func (s *CachedStore) Load(ctx context.Context, key string) ([]byte, error) {
	if blob, err := s.cache.Get([]byte(key)); err == nil {
		log.Tracef("cached store: hit for [%s]", key)
		return blob, nil
	}

	blob, err := s.next.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	s.put(key, blob)
	return blob, nil
}

// Save writes through; the cached value is only replaced when the backing store accepted it.
func (s *CachedStore) Save(ctx context.Context, key string, blob []byte) error {
	if err := s.next.Save(ctx, key, blob); err != nil {
		s.cache.Del([]byte(key))
		return err
	}
	s.put(key, blob)
	return nil
}

func (s *CachedStore) put(key string, blob []byte) {
	// no expiry, values only change through Save
	if err := s.cache.Set([]byte(key), blob, 0); err != nil {
		if errors.Is(err, freecache.ErrLargeEntry) {
			log.Debugf("cached store: [%s] too large to cache (%d bytes)", key, len(blob))
		} else {
			log.Warnf("cached store: set [%s]: %s", key, err)
		}
		s.cache.Del([]byte(key))
	}
}

func (s *CachedStore) Close() error {
	s.cache.Clear()
	return s.next.Close()
}
