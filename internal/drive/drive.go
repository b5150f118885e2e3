// Package drive extracts embeddable file ids from Google Drive share links.
package drive

import (
	"fmt"
	"regexp"
)

const previewURL = "https://drive.google.com/file/d/%s/preview"

// The id runs from "/d/" to the next "/" or the end of the path.
var fileIDPattern = regexp.MustCompile(`/d/([^/?#]+)`)

// FileID returns the Drive file id in link. ok is false when the link has
// no "/d/{id}" segment; that is not an error, the preview is just skipped.
func FileID(link string) (id string, ok bool) {
	m := fileIDPattern.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// PreviewURL returns the embeddable preview for link, or "" without one.
func PreviewURL(link string) string {
	id, ok := FileID(link)
	if !ok {
		return ""
	}
	return fmt.Sprintf(previewURL, id)
}
