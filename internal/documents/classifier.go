package documents

import (
	"strings"
)

// Document describes an attachment supplied by the order-management side.
type Document struct {
	Name            string `json:"name"`
	URL             string `json:"url"`
	Type            string `json:"type"`
	VisibleToClient *bool  `json:"visible_to_client,omitempty"`
}

// Visible reports whether the document may reach the customer.
// An absent flag means visible.
func (d Document) Visible() bool {
	return d.VisibleToClient == nil || *d.VisibleToClient
}

// Classified holds the three disjoint attachment categories.
type Classified struct {
	Images []Document
	PDFs   []Document
	Links  []Document
}

// Total counts all classified documents.
func (c Classified) Total() int {
	return len(c.Images) + len(c.PDFs) + len(c.Links)
}

// Visible returns the classified documents in image, PDF, link order.
func (c Classified) Visible() []Document {
	out := make([]Document, 0, c.Total())
	out = append(out, c.Images...)
	out = append(out, c.PDFs...)
	out = append(out, c.Links...)
	return out
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

func hasImageSuffix(url string) bool {
	for _, ext := range imageExtensions {
		if strings.HasSuffix(url, ext) {
			return true
		}
	}
	return false
}

// Classify partitions documents into images, PDFs and links, dropping any
// document flagged not visible to the customer. The explicit type string wins
// over the URL extension; anything unrecognized lands in the PDF bucket so it
// is still delivered as a downloadable attachment.
func Classify(docs []Document) Classified {
	var c Classified
	for _, d := range docs {
		if !d.Visible() {
			continue
		}
		switch classifyOne(d) {
		case categoryImage:
			c.Images = append(c.Images, d)
		case categoryLink:
			c.Links = append(c.Links, d)
		default:
			c.PDFs = append(c.PDFs, d)
		}
	}
	return c
}

type category int

const (
	categoryPDF category = iota
	categoryImage
	categoryLink
)

func classifyOne(d Document) category {
	typ := strings.ToLower(strings.TrimSpace(d.Type))
	url := strings.ToLower(strings.TrimSpace(d.URL))

	switch {
	case strings.HasPrefix(typ, "image/"), typ == "image",
		typ == "jpg", typ == "jpeg", typ == "png", typ == "gif", typ == "webp":
		return categoryImage
	case typ == "application/pdf", typ == "pdf":
		return categoryPDF
	case typ == "url", typ == "link":
		return categoryLink
	case hasImageSuffix(url):
		return categoryImage
	case strings.HasSuffix(url, ".pdf"):
		return categoryPDF
	}
	return categoryPDF
}
