package source

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.White)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestImageSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backdrop.png")
	writePNG(t, path, 64, 36)

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	if _, ok := src.(*ImageSource); !ok {
		t.Errorf("Expected ImageSource for png, got %T", src)
	}
	if src.PageCount() != 1 {
		t.Errorf("Expected 1 page, got %d", src.PageCount())
	}

	w, h, err := src.GetPageDimensions(0)
	if err != nil || w != 64 || h != 36 {
		t.Errorf("Expected 64x36, got %.0fx%.0f (%v)", w, h, err)
	}
}

func TestLoadBackdrop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backdrop.png")
	writePNG(t, path, 16, 9)

	img, err := LoadBackdrop(path, 0, 150, 1080)
	if err != nil {
		t.Fatalf("LoadBackdrop failed: %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Errorf("Unexpected bounds %v", img.Bounds())
	}

	if _, err := LoadBackdrop(path, 1, 150, 1080); err == nil {
		t.Error("Expected an error for a missing page")
	}
	if _, err := LoadBackdrop(filepath.Join(t.TempDir(), "missing.png"), 0, 150, 1080); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

type pageStub struct {
	height float64
}

func (p pageStub) PageCount() int { return 1 }

func (p pageStub) GetPageDimensions(int) (float64, float64, error) {
	return p.height * 16 / 9, p.height, nil
}

func (p pageStub) RenderPage(int, int) (image.Image, error) { return nil, nil }

func (p pageStub) Close() error { return nil }

func TestFitDPI(t *testing.T) {
	tests := []struct {
		name        string
		pageHeight  float64
		frameHeight int
		want        int
		wantErr     bool
	}{
		{"slide at 1080p", 405, 1080, 192, false},
		{"A4 landscape at 720p", 595, 720, 88, false},
		{"empty page", 0, 1080, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fitDPI(pageStub{height: tt.pageHeight}, 0, tt.frameHeight)
			if (err != nil) != tt.wantErr {
				t.Fatalf("fitDPI error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("fitDPI = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoadBackdropFitsImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backdrop.png")
	writePNG(t, path, 32, 18)

	img, err := LoadBackdrop(path, 0, 0, 720)
	if err != nil {
		t.Fatalf("LoadBackdrop failed: %v", err)
	}
	// Images are decoded as is; the renderer scales them to the frame
	if img.Bounds().Dy() != 18 {
		t.Errorf("Unexpected bounds %v", img.Bounds())
	}
}
