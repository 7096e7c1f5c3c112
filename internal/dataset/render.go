package dataset

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

// DescriptionHTML renders the markdown description to HTML for the dataset
// page. An empty description renders to an empty string.
func (m Meta) DescriptionHTML() (string, error) {
	if m.Description == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(m.Description), &buf); err != nil {
		return "", fmt.Errorf("rendering dataset description: %w", err)
	}
	return buf.String(), nil
}
