package imgnamer

import (
	"bytes"
	"strings"

	"github.com/bep/imagemeta"
)

// ImageMetadata holds the descriptive EXIF, IPTC and XMP fields of a local
// image. Used to derive a hint when the caller supplies none, and to correct
// dimensions of rotated images.
type ImageMetadata struct {
	EXIFImageDescription string
	EXIFOrientation      int
	IPTCObjectName       string
	IPTCHeadline         string
	XMPTitle             string
	XMPDescription       string
}

// placeholderDescriptions are values cameras and editors write by default.
var placeholderDescriptions = []string{
	"olympus digital camera",
	"digital camera",
	"default",
	"untitled",
	"sony dsc",
	"image",
}

// Hint returns the most specific human-written description, or "".
func (m *ImageMetadata) Hint() string {
	if m == nil {
		return ""
	}
	for _, f := range []string{
		m.XMPTitle,
		m.IPTCObjectName,
		m.IPTCHeadline,
		m.XMPDescription,
		m.EXIFImageDescription,
	} {
		f = strings.TrimSpace(f)
		if f == "" || isPlaceholder(f) {
			continue
		}
		return f
	}
	return ""
}

func isPlaceholder(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range placeholderDescriptions {
		if lower == p {
			return true
		}
	}
	return false
}

// wantedTags maps (source, tag-name) → true for every tag we care about.
var wantedTags = map[imagemeta.Source]map[string]bool{
	imagemeta.EXIF: {
		"ImageDescription": true,
		"Orientation":      true,
	},
	imagemeta.IPTC: {
		"ObjectName": true,
		"Headline":   true,
	},
	imagemeta.XMP: {
		"Title":       true,
		"Description": true,
	},
}

// ExtractImageMetadata parses EXIF/IPTC/XMP metadata from raw image bytes.
// Returns nil if the data is nil, empty, or carries none of the wanted tags.
// Never returns an error: metadata only refines a suggestion.
func ExtractImageMetadata(data []byte) *ImageMetadata {
	if len(data) == 0 {
		return nil
	}

	meta := &ImageMetadata{}
	found := false

	err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF | imagemeta.IPTC | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			if tags, ok := wantedTags[ti.Source]; ok {
				return tags[ti.Tag]
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			if applyTag(meta, ti) {
				found = true
			}
			return nil
		},
	})

	if err != nil || !found {
		return nil
	}
	return meta
}

// ImageOrientation returns the EXIF orientation (1-8) of the image, or 0.
func ImageOrientation(data []byte) int {
	meta := ExtractImageMetadata(data)
	if meta == nil {
		return 0
	}
	return meta.EXIFOrientation
}

// applyTag stores a tag value on meta and reports whether it was usable.
func applyTag(meta *ImageMetadata, ti imagemeta.TagInfo) bool {
	if ti.Source == imagemeta.EXIF && ti.Tag == "Orientation" {
		o := tagValueInt(ti.Value)
		if o < 1 || o > 8 {
			return false
		}
		meta.EXIFOrientation = o
		return true
	}

	s := strings.TrimSpace(tagValueString(ti.Value))
	if s == "" {
		return false
	}

	switch {
	case ti.Source == imagemeta.EXIF && ti.Tag == "ImageDescription":
		meta.EXIFImageDescription = s
	case ti.Source == imagemeta.IPTC && ti.Tag == "ObjectName":
		meta.IPTCObjectName = s
	case ti.Source == imagemeta.IPTC && ti.Tag == "Headline":
		meta.IPTCHeadline = s
	case ti.Source == imagemeta.XMP && ti.Tag == "Title":
		meta.XMPTitle = s
	case ti.Source == imagemeta.XMP && ti.Tag == "Description":
		meta.XMPDescription = s
	default:
		return false
	}
	return true
}

// tagValueString extracts a string from a tag value.
// XMP values may be string or []string (from altList/seqList).
func tagValueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
		return ""
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
		return ""
	default:
		return ""
	}
}

// tagValueInt extracts an integer from a numeric tag value, or returns 0.
func tagValueInt(v any) int {
	switch val := v.(type) {
	case int:
		return val
	case int8:
		return int(val)
	case int16:
		return int(val)
	case int32:
		return int(val)
	case int64:
		return int(val)
	case uint8:
		return int(val)
	case uint16:
		return int(val)
	case uint32:
		return int(val)
	case uint64:
		return int(val)
	case []any:
		if len(val) > 0 {
			return tagValueInt(val[0])
		}
		return 0
	default:
		return 0
	}
}
