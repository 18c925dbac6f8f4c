// Package source loads backdrop images drawn behind the scenes: a page of a
// PDF document or a plain image file.
package source

import (
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Source is a paged document; page sizes are reported at 72 DPI
type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Open picks the source by file extension
func Open(path string) (Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewFitzPDFSource(path)
	}
	return NewImageSource(path)
}

// LoadBackdrop renders one page of the file at path. A dpi of zero or
// less picks the resolution at which the page is frameHeight pixels high.
func LoadBackdrop(path string, page, dpi, frameHeight int) (image.Image, error) {
	src, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open backdrop %s: %w", path, err)
	}
	defer src.Close()

	if page < 0 || page >= src.PageCount() {
		return nil, fmt.Errorf("backdrop %s: page %d out of range (1..%d)", path, page+1, src.PageCount())
	}
	if dpi <= 0 {
		if dpi, err = fitDPI(src, page, frameHeight); err != nil {
			return nil, fmt.Errorf("backdrop %s page %d: %w", path, page+1, err)
		}
	}
	img, err := src.RenderPage(page, dpi)
	if err != nil {
		return nil, fmt.Errorf("render backdrop %s page %d: %w", path, page+1, err)
	}
	return img, nil
}

// fitDPI returns the DPI at which a page measured at 72 DPI becomes
// frameHeight pixels high
func fitDPI(src Source, page, frameHeight int) (int, error) {
	_, h, err := src.GetPageDimensions(page)
	if err != nil {
		return 0, err
	}
	if h <= 0 || frameHeight <= 0 {
		return 0, fmt.Errorf("cannot fit page of height %.0f into %d pixels", h, frameHeight)
	}
	return int(math.Ceil(72 * float64(frameHeight) / h)), nil
}

type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

// RenderPage rasterises a page at the given DPI. The shared document is not
// safe for concurrent rendering, so every call opens its own.
func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
