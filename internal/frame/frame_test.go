package frame

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestToRGB(t *testing.T) {
	f := &Frame{Pix: []byte{1, 2, 3, 4, 5, 6}, Width: 2, Height: 1, Order: BGR}
	got := f.ToRGB()
	want := []byte{3, 2, 1, 6, 5, 4}
	if !bytes.Equal(got.Pix, want) {
		t.Errorf("ToRGB = %v, want %v", got.Pix, want)
	}
	if got.Order != RGB {
		t.Errorf("Order = %v, want RGB", got.Order)
	}
	// Source must not be mutated
	if f.Pix[0] != 1 {
		t.Error("ToRGB modified the source frame")
	}

	rgb := &Frame{Pix: []byte{9, 9, 9}, Width: 1, Height: 1, Order: RGB}
	if rgb.ToRGB() != rgb {
		t.Error("RGB frame should be returned unchanged")
	}
}

func TestResize(t *testing.T) {
	f := New(40, 20, BGR)
	for i := range f.Pix {
		f.Pix[i] = 200
	}

	small := f.Resize(0.25)
	if small.Width != 10 || small.Height != 5 {
		t.Fatalf("Resize(0.25) = %dx%d, want 10x5", small.Width, small.Height)
	}
	if small.Order != BGR {
		t.Errorf("channel order lost: %v", small.Order)
	}
	if len(small.Pix) != 10*5*3 {
		t.Errorf("Pix length = %d", len(small.Pix))
	}
	if d := int(small.Pix[0]) - 200; d < -2 || d > 2 {
		t.Errorf("uniform frame changed value: %d", small.Pix[0])
	}

	if f.Resize(1) != f {
		t.Error("Resize(1) should be a no-op")
	}
}

func TestFromImageAndToRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	f := FromImage(img)
	if f.Width != 2 || f.Height != 2 || f.Order != RGB {
		t.Fatalf("unexpected frame %dx%d %v", f.Width, f.Height, f.Order)
	}
	if !bytes.Equal(f.Pix[3:6], []byte{10, 20, 30}) {
		t.Errorf("pixel (1,0) = %v", f.Pix[3:6])
	}

	back := f.ToRGBA()
	if c := back.RGBAAt(1, 0); c != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("ToRGBA pixel = %v", c)
	}

	bgr := &Frame{Pix: []byte{30, 20, 10}, Width: 1, Height: 1, Order: BGR}
	if c := bgr.ToRGBA().RGBAAt(0, 0); c != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("BGR ToRGBA pixel = %v", c)
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.jpg", true},
		{"a.JPEG", true},
		{"dir/b.Png", true},
		{"c.gif", false},
		{"notes.txt", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := IsSupported(tt.path); got != tt.want {
			t.Errorf("IsSupported(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWriteAndReadFile(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	for _, name := range []string{"out.png", "out.jpg"} {
		path := filepath.Join(dir, name)
		if err := WriteImage(path, img); err != nil {
			t.Fatalf("WriteImage(%s): %v", name, err)
		}
		f, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", name, err)
		}
		if f.Width != 4 || f.Height != 3 {
			t.Errorf("%s decoded as %dx%d", name, f.Width, f.Height)
		}
	}

	if err := WriteImage(filepath.Join(dir, "out.gif"), img); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadFile(filepath.Join(dir, "missing.jpg")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	bad := filepath.Join(dir, "broken.jpg")
	if err := os.WriteFile(bad, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(bad); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}

	if _, err := ReadFile(filepath.Join(dir, "notes.txt")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
