package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

type fakeStore struct {
	keys []string
	data [][]byte
}

func (f *fakeStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	f.keys = append(f.keys, key)
	f.data = append(f.data, data)
	return "https://photos.example/" + key, nil
}

func TestProcessDownscales(t *testing.T) {
	p := NewProcessor(400, nil)

	out, err := p.Process(context.Background(), pngDataURI(t, 1600, 800))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.HasPrefix(out, "data:image/jpeg;base64,") {
		t.Fatalf("expected jpeg data URI, got %.40s", out)
	}

	raw, _ := base64.StdEncoding.DecodeString(strings.TrimPrefix(out, "data:image/jpeg;base64,"))
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("jpeg.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Errorf("bounds = %dx%d, want 400x200", b.Dx(), b.Dy())
	}
}

func TestProcessPassThrough(t *testing.T) {
	p := NewProcessor(400, nil)

	tests := []string{
		"https://example.com/photo.jpg",
		"data:image/webp;base64,UklGRg==",
		"plain text",
	}
	for _, in := range tests {
		out, err := p.Process(context.Background(), in)
		if err != nil || out != in {
			t.Errorf("Process(%q) = %q, %v; want unchanged", in, out, err)
		}
	}
}

func TestProcessInvalid(t *testing.T) {
	p := NewProcessor(400, nil)

	tests := []string{
		"data:image/png;base64,not-base64!!",
		"data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("not an image")),
	}
	for _, in := range tests {
		if _, err := p.Process(context.Background(), in); !errors.Is(err, ErrInvalidImage) {
			t.Errorf("Process(%.30q) error = %v, want ErrInvalidImage", in, err)
		}
	}
}

func TestProcessWithStore(t *testing.T) {
	store := &fakeStore{}
	p := NewProcessor(100, store)

	out, err := p.Process(context.Background(), pngDataURI(t, 300, 300))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(store.keys) != 1 || !strings.HasPrefix(store.keys[0], "zoom/") {
		t.Fatalf("store keys = %v", store.keys)
	}
	if out != "https://photos.example/"+store.keys[0] {
		t.Errorf("url = %q", out)
	}
}

// pngHeaderDataURI builds a PNG that declares w x h but carries no pixel data
func pngHeaderDataURI(w, h uint32) string {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	chunk := append([]byte("IHDR"), ihdr...)
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestProcessRejectsOversizedSources(t *testing.T) {
	tests := []struct {
		name   string
		maxDim uint
		in     string
	}{
		{"declared dimensions over the ceiling", 0, pngHeaderDataURI(100000, 100000)},
		{"declared dimensions over the scaled limit", 1280, pngHeaderDataURI(20000, 20000)},
		{"real image over the scaled limit", 10, pngDataURI(t, 100, 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProcessor(tt.maxDim, nil).Process(context.Background(), tt.in)
			if !errors.Is(err, ErrInvalidImage) {
				t.Fatalf("err = %v, want ErrInvalidImage", err)
			}
		})
	}

	if _, err := NewProcessor(10, nil).Process(context.Background(), pngDataURI(t, 80, 60)); err != nil {
		t.Errorf("image within the limit rejected: %v", err)
	}
}
