package bloggen

import (
	"bytes"
	"image"
	"image/jpeg"
	"strings"
	"testing"
)

func TestIsJPEG(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.JPG", true},
		{"photo.jpeg", true},
		{"photo.png", false},
		{"photo.gif", false},
		{"archive.jpg.zip", false},
	}
	for _, tt := range tests {
		if got := isJPEG(tt.name); got != tt.want {
			t.Errorf("isJPEG(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func encodeTestJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProcessImageResizesWideImages(t *testing.T) {
	src := encodeTestJPEG(t, 400, 200)

	encoded, resized, err := processImage(bytes.NewReader(src), 100)
	if err != nil {
		t.Fatalf("processImage: %v", err)
	}
	if !resized {
		t.Fatal("image wider than max should be resized")
	}

	out, _, err := image.Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	bounds := out.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 50 {
		t.Errorf("output size = %dx%d, want 100x50", bounds.Dx(), bounds.Dy())
	}
}

func TestProcessImageSkipsSmallImages(t *testing.T) {
	src := encodeTestJPEG(t, 80, 40)

	encoded, resized, err := processImage(bytes.NewReader(src), 100)
	if err != nil {
		t.Fatalf("processImage: %v", err)
	}
	if resized || encoded != nil {
		t.Errorf("small image should be left alone, got resized=%v len=%d", resized, len(encoded))
	}
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	if _, _, err := processImage(strings.NewReader("not an image"), 100); err == nil {
		t.Error("processImage should fail on undecodable input")
	}
}
