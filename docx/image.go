package docx

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Display widths in pixels at 96 DPI; EMU conversion is 9525 per pixel.
const (
	emuPerPixel    = 9525
	coverEmblemPx  = 140
	headerEmblemPx = 72
)

// prepareEmblem decodes the letterhead image fetched from the backend,
// scales it to the requested display width, and re-encodes it as PNG for
// embedding. The upstream may serve any common format.
func prepareEmblem(data []byte, widthPx int) (*Image, error) {
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gambar kop tidak dapat dibaca: %w", err)
	}

	scaled := imaging.Resize(src, widthPx, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, scaled, imaging.PNG); err != nil {
		return nil, fmt.Errorf("gagal mengodekan gambar kop: %w", err)
	}

	bounds := scaled.Bounds()
	return &Image{
		Data:      buf.Bytes(),
		WidthEMU:  int64(bounds.Dx()) * emuPerPixel,
		HeightEMU: int64(bounds.Dy()) * emuPerPixel,
	}, nil
}
