package raster

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/disintegration/imaging"

	// Formats accepted for uploads beyond imaging's defaults.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// maxUploadBytes bounds how much of an upload is read before giving up.
const maxUploadBytes = 64 << 20

// Decode reads an uploaded image, applies its EXIF orientation and returns it
// as a new source. Anything that is not a decodable image yields ErrInvalidUpload.
func Decode(r io.Reader) (*Source, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: no data", ErrInvalidUpload)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrInvalidUpload, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidUpload)
	}
	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidUpload, maxUploadBytes)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}
	src, err := Copy(img, OriginUpload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}
	return src, nil
}

// DecodeFile opens path and decodes it with Decode.
func DecodeFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}
	defer f.Close()
	return Decode(f)
}
