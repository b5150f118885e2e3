package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileID(t *testing.T) {
	tests := []struct {
		name   string
		link   string
		wantID string
		wantOK bool
	}{
		{"share link", "https://drive.google.com/file/d/1ABC123xyz/view?usp=sharing", "1ABC123xyz", true},
		{"no trailing segment", "https://drive.google.com/file/d/XYZ", "XYZ", true},
		{"query after id", "https://drive.google.com/file/d/XYZ?usp=sharing", "XYZ", true},
		{"docs link", "https://docs.google.com/document/d/abc_-123/edit", "abc_-123", true},
		{"open link", "https://drive.google.com/open?id=XYZ", "", false},
		{"other host", "https://example.com/resume.pdf", "", false},
		{"empty id", "https://drive.google.com/file/d//view", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := FileID(tt.link)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestPreviewURL(t *testing.T) {
	assert.Equal(t,
		"https://drive.google.com/file/d/1ABC123xyz/preview",
		PreviewURL("https://drive.google.com/file/d/1ABC123xyz/view?usp=sharing"),
	)
	assert.Empty(t, PreviewURL("https://example.com/resume.pdf"))
}
