package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestClassifyByTypeAndExtension(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{"mime image", Document{Name: "front", URL: "https://cdn.example.com/a", Type: "image/jpeg"}, "image"},
		{"uppercase mime", Document{Name: "front", URL: "https://cdn.example.com/a", Type: "IMAGE/JPEG"}, "image"},
		{"bare image type", Document{Name: "front", URL: "https://cdn.example.com/a", Type: "jpg"}, "image"},
		{"image by extension", Document{Name: "front", URL: "https://cdn.example.com/photo.JPG"}, "image"},
		{"webp extension", Document{Name: "front", URL: "https://cdn.example.com/photo.webp"}, "image"},
		{"pdf mime", Document{Name: "report", URL: "https://cdn.example.com/r", Type: "application/pdf"}, "pdf"},
		{"pdf extension", Document{Name: "report", URL: "https://cdn.example.com/Report.PDF"}, "pdf"},
		{"explicit url type", Document{Name: "tracking", URL: "https://track.example.com/x", Type: "url"}, "link"},
		{"url type wins over pdf suffix", Document{Name: "doc", URL: "https://cdn.example.com/file.pdf", Type: "url"}, "link"},
		{"unknown defaults to pdf", Document{Name: "blob", URL: "https://cdn.example.com/data.bin", Type: "application/octet-stream"}, "pdf"},
		{"empty everything defaults to pdf", Document{Name: "mystery"}, "pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify([]Document{tt.doc})
			require.Equal(t, 1, c.Total())
			switch tt.want {
			case "image":
				assert.Len(t, c.Images, 1)
			case "pdf":
				assert.Len(t, c.PDFs, 1)
			case "link":
				assert.Len(t, c.Links, 1)
			}
		})
	}
}

func TestClassifyDropsInvisibleDocuments(t *testing.T) {
	docs := []Document{
		{Name: "public photo", URL: "https://cdn.example.com/a.jpg"},
		{Name: "internal invoice", URL: "https://cdn.example.com/b.pdf", VisibleToClient: boolPtr(false)},
		{Name: "visible report", URL: "https://cdn.example.com/c.pdf", VisibleToClient: boolPtr(true)},
	}

	c := Classify(docs)
	assert.Equal(t, 2, c.Total())
	require.Len(t, c.Images, 1)
	require.Len(t, c.PDFs, 1)
	assert.Equal(t, "visible report", c.PDFs[0].Name)
}

func TestClassifyIsDisjointAndOrderPreserving(t *testing.T) {
	docs := []Document{
		{Name: "p1", URL: "https://x/1.jpg"},
		{Name: "d1", URL: "https://x/1.pdf"},
		{Name: "p2", URL: "https://x/2.png"},
		{Name: "l1", URL: "https://x/t", Type: "url"},
		{Name: "d2", URL: "https://x/2.pdf"},
	}

	c := Classify(docs)
	assert.Equal(t, len(docs), c.Total())

	// Every visible document lands in exactly one bucket.
	seen := map[string]int{}
	for _, d := range c.Visible() {
		seen[d.Name]++
	}
	for _, d := range docs {
		assert.Equal(t, 1, seen[d.Name], "%s should appear exactly once", d.Name)
	}

	// Order within each category follows input order.
	assert.Equal(t, "p1", c.Images[0].Name)
	assert.Equal(t, "p2", c.Images[1].Name)
	assert.Equal(t, "d1", c.PDFs[0].Name)
	assert.Equal(t, "d2", c.PDFs[1].Name)
}

func TestClassifyEmptyAndMalformed(t *testing.T) {
	assert.Equal(t, 0, Classify(nil).Total())

	// Fields treated as absent; still classified (defaults to PDF).
	c := Classify([]Document{{}})
	assert.Len(t, c.PDFs, 1)
}
