package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// ImagePool переиспользует кадры image.RGBA одного размера, чтобы рендер
// сотен кадров на сцену не нагружал Garbage Collector (GC).
type ImagePool struct {
	pools sync.Map // image.Rectangle -> *sync.Pool

	allocated atomic.Int64
	requested atomic.Int64
}

var globalPool = &ImagePool{}

// GetImage возвращает кадр из пула или создает новый.
// Содержимое кадра не очищается.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutImage возвращает кадр в пул для повторного использования.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

// PoolStats возвращает число запрошенных и реально выделенных кадров
func PoolStats() (requested, allocated int64) {
	return globalPool.requested.Load(), globalPool.allocated.Load()
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	p.requested.Add(1)
	pool, ok := p.pools.Load(rect)
	if !ok {
		pool, _ = p.pools.LoadOrStore(rect, &sync.Pool{
			New: func() any {
				p.allocated.Add(1)
				return image.NewRGBA(rect)
			},
		})
	}
	return pool.(*sync.Pool).Get().(*image.RGBA)
}

func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	if pool, ok := p.pools.Load(img.Rect); ok {
		pool.(*sync.Pool).Put(img)
	}
}
