package web

import (
	lru "github.com/hashicorp/golang-lru/v2"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	qrCacheSize = 256
	qrImageSize = 256
)

// qrCache memoizes rendered QR PNGs keyed by the encoded URI. Payment
// URIs repeat across page reloads while an invoice stays pending, so
// the cache avoids re-encoding on every poll-driven re-render.
type qrCache struct {
	images *lru.Cache[string, []byte]
}

func newQRCache(size int) (*qrCache, error) {
	images, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &qrCache{images: images}, nil
}

func (q *qrCache) PNG(uri string) ([]byte, error) {
	if png, ok := q.images.Get(uri); ok {
		return png, nil
	}
	png, err := qrcode.Encode(uri, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, err
	}
	q.images.Add(uri, png)
	return png, nil
}
