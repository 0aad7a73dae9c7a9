package surface

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/yahya12213/certgen"
)

// Image types accepted by NormalizeImage callers.
const (
	ImagePNG = "PNG"
	ImageJPG = "JPG"
)

// NormalizeImage checks that data is a decodable image and returns it in a
// form the PDF writer embeds without further conversion. JPEG is passed
// through untouched; every other format (PNG, GIF, WebP, BMP, TIFF) is
// re-encoded as an 8-bit non-interlaced PNG.
func NormalizeImage(data []byte) (out []byte, imageType string, err error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", certgen.ErrUnsupportedImage, err)
	}
	img, err := DecodeImage(data)
	if err != nil {
		return nil, "", err
	}
	if format == "jpeg" {
		return data, ImageJPG, nil
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Clone(img), imaging.PNG); err != nil {
		return nil, "", fmt.Errorf("surface: encoding png: %w", err)
	}
	return buf.Bytes(), ImagePNG, nil
}

// DecodeImage decodes data honouring the EXIF orientation tag.
func DecodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", certgen.ErrUnsupportedImage, err)
	}
	return img, nil
}
