package imgnamer

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/corona10/goimagehash"
)

// Fingerprint returns the perceptual difference hash of the image at path.
// Re-encoded or resized copies of the same picture share a fingerprint, so it
// serves as a cache key that survives renames.
func Fingerprint(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return "", err
	}
	return hash.ToString(), nil
}
