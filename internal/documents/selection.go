package documents

import (
	"fmt"
	"strings"
)

// Selection is the set of files picked for the next upload. It is cleared as
// a whole after every upload attempt.
type Selection struct {
	files []FileInfo
}

// Add appends f unless a file with the same content is already selected
func (s *Selection) Add(f FileInfo) bool {
	for _, existing := range s.files {
		if existing.Hash == f.Hash {
			return false
		}
	}
	s.files = append(s.files, f)
	return true
}

// Files returns a copy of the selected files
func (s *Selection) Files() []FileInfo {
	out := make([]FileInfo, len(s.files))
	copy(out, s.files)
	return out
}

// Len returns the number of selected files
func (s *Selection) Len() int {
	return len(s.files)
}

// Clear drops every selected file
func (s *Selection) Clear() {
	s.files = nil
}

// Names joins the file names for the preview line
func (s *Selection) Names() string {
	names := make([]string, len(s.files))
	for i, f := range s.files {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

// Placeholder is the input hint for the current mode
func (s *Selection) Placeholder() string {
	if len(s.files) == 0 {
		return "Ask the agent or attach documents..."
	}
	return fmt.Sprintf("Ready to upload %d file(s). Press enter to upload!", len(s.files))
}
