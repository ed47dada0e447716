// Package media prepares Zoom photos before they are stored in a session.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

var ErrInvalidImage = errors.New("invalid image")

const (
	// sources may be at most this many times larger than maxDim per side
	sourceScale = 8
	// hard ceiling on decoded pixels, also used when maxDim is 0
	maxSourcePixels = 40_000_000
)

// decodable data URI types; anything else is stored as sent
var decodable = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// PhotoStore persists an encoded JPEG outside the session document and
// returns a URL clients can load it from
type PhotoStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// Processor down-scales submitted photos and optionally offloads them
type Processor struct {
	maxDim  uint
	quality int
	store   PhotoStore
}

// NewProcessor creates a processor; store may be nil to keep photos inline
func NewProcessor(maxDim uint, store PhotoStore) *Processor {
	return &Processor{
		maxDim:  maxDim,
		quality: 85,
		store:   store,
	}
}

// Process returns the value to store in the session's image field
func (p *Processor) Process(ctx context.Context, raw string) (string, error) {
	mime, payload, ok := splitDataURI(raw)
	if !ok || !decodable[mime] {
		return raw, nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if pixels := cfg.Width * cfg.Height; cfg.Width <= 0 || cfg.Height <= 0 || pixels > p.pixelLimit() {
		return "", fmt.Errorf("%w: %dx%d exceeds the size limit", ErrInvalidImage, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if p.maxDim > 0 {
		img = resize.Thumbnail(p.maxDim, p.maxDim, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return "", fmt.Errorf("failed to encode photo: %w", err)
	}

	if p.store != nil {
		key := "zoom/" + uuid.New().String() + ".jpg"
		url, err := p.store.Put(ctx, key, buf.Bytes())
		if err != nil {
			return "", fmt.Errorf("failed to store photo: %w", err)
		}
		return url, nil
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// pixelLimit is the largest source image Process will decode
func (p *Processor) pixelLimit() int {
	if p.maxDim == 0 {
		return maxSourcePixels
	}
	side := int(p.maxDim) * sourceScale
	if limit := side * side; limit < maxSourcePixels {
		return limit
	}
	return maxSourcePixels
}

// splitDataURI parses "data:<mime>;base64,<payload>"
func splitDataURI(raw string) (mime, payload string, ok bool) {
	if !strings.HasPrefix(raw, "data:") {
		return "", "", false
	}
	header, payload, found := strings.Cut(raw[len("data:"):], ",")
	if !found {
		return "", "", false
	}
	mime, params, _ := strings.Cut(header, ";")
	if !strings.Contains(params, "base64") {
		return "", "", false
	}
	return strings.ToLower(mime), payload, true
}
