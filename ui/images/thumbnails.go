package images

import (
	"fmt"
	"image"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ThumbnailCache keeps PNG thumbnails of shots keyed by source ID and size so
// the review and editor panes do not rescale the same shot on every refresh.
type ThumbnailCache struct {
	cache *lru.Cache[string, []byte]
}

// NewThumbnailCache returns a cache holding up to size thumbnails.
func NewThumbnailCache(size int) (*ThumbnailCache, error) {
	if size <= 0 {
		size = 32
	}
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &ThumbnailCache{cache: c}, nil
}

// PNG returns the cached thumbnail for id, rendering it from img on a miss.
// A nil cache renders without caching.
func (t *ThumbnailCache) PNG(id string, img image.Image, maxW, maxH int) []byte {
	if img == nil {
		return nil
	}
	if t == nil || t.cache == nil || id == "" {
		return EncodePNG(ScaleToFit(img, maxW, maxH))
	}
	key := fmt.Sprintf("%s@%dx%d", id, maxW, maxH)
	if data, ok := t.cache.Get(key); ok {
		return data
	}
	data := EncodePNG(ScaleToFit(img, maxW, maxH))
	t.cache.Add(key, data)
	return data
}

// Len reports the number of cached thumbnails.
func (t *ThumbnailCache) Len() int {
	if t == nil || t.cache == nil {
		return 0
	}
	return t.cache.Len()
}

// Purge drops every thumbnail, typically when the session resets.
func (t *ThumbnailCache) Purge() {
	if t != nil && t.cache != nil {
		t.cache.Purge()
	}
}
