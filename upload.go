package imgnamer

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

// maxUploadSide is the longest side, in pixels, sent to search engines.
// Larger images are downscaled; engines match on thumbnails anyway.
const maxUploadSide = 1600

type uploadImage struct {
	Name string
	Data []byte
}

// prepareUpload reads the image at path and downscales it when either side
// exceeds maxUploadSide. Undecodable files are sent as they are.
func prepareUpload(path string) (uploadImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return uploadImage{}, err
	}
	out := uploadImage{Name: filepath.Base(path), Data: data}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || (cfg.Width <= maxUploadSide && cfg.Height <= maxUploadSide) {
		return out, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return out, nil
	}
	thumb := resize.Thumbnail(maxUploadSide, maxUploadSide, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 90}); err != nil {
		return out, nil
	}
	out.Name = strings.TrimSuffix(out.Name, filepath.Ext(out.Name)) + ".jpg"
	out.Data = buf.Bytes()
	return out, nil
}
