package source

import (
	"io"
	"regexp"
)

// uploadPathRegex matches the path segments a CDN inserts between the
// upload/ and tabesto/ segments of an image URL.
var uploadPathRegex = regexp.MustCompile(`(upload/).*?(tabesto/)`)

// Image is an entry of the image export.
type Image struct {
	ID  ID     `json:"id"`
	URL Scalar `json:"url"`
}

// ImageExport is the image export document.
type ImageExport struct {
	Pictures []Image `json:"pictures"`
}

// ImageCatalog resolves picture references to canonical URLs.
type ImageCatalog struct {
	urls map[string]string
}

// NewImageCatalog indexes images by id. When an id repeats, the first entry
// wins, including when its URL is empty.
func NewImageCatalog(images []Image) *ImageCatalog {
	c := &ImageCatalog{urls: make(map[string]string, len(images))}
	for _, img := range images {
		key := img.ID.String()
		if _, seen := c.urls[key]; seen {
			continue
		}
		c.urls[key] = img.URL.String()
	}
	return c
}

// ParseImages decodes an image export. A leading UTF-8 BOM is skipped.
func ParseImages(r io.Reader) (*ImageCatalog, error) {
	var export ImageExport
	if err := decode(r, &export); err != nil {
		return nil, err
	}
	return NewImageCatalog(export.Pictures), nil
}

// Resolve returns the canonical URL of the image with the given id, or ""
// when the id is absent, unknown, or has no URL.
func (c *ImageCatalog) Resolve(id ID) string {
	if c == nil || !id.Present() {
		return ""
	}
	url := c.urls[id.String()]
	if url == "" {
		return ""
	}
	return CanonicalURL(url)
}

// Len returns the number of distinct image ids.
func (c *ImageCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.urls)
}

// CanonicalURL drops every path segment between "upload/" and "tabesto/".
func CanonicalURL(url string) string {
	return uploadPathRegex.ReplaceAllString(url, "${1}${2}")
}
