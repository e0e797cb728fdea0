package cli

import (
	"sort"
	"strings"

	"github.com/toyz/tether/internal/utils"
)

// DirectoryScanner turns directory arguments into package directories
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor: utils.NewFileProcessor(),
	}
}

// ScanDirectories returns the directories holding Go files, as absolute
// paths. Go-style patterns like "./..." are scanned recursively.
func (s *DirectoryScanner) ScanDirectories(patterns []string) ([]string, error) {
	var recursive, single []string

	for _, pattern := range patterns {
		if pattern == "..." || strings.HasSuffix(pattern, "/...") {
			baseDir := strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
			if baseDir == "" {
				baseDir = "."
			}
			recursive = append(recursive, baseDir)
			continue
		}
		single = append(single, pattern)
	}

	found, err := s.fileProcessor.ScanDirectoriesWithGoFiles(recursive, true)
	if err != nil {
		return nil, err
	}
	direct, err := s.fileProcessor.ScanDirectoriesWithGoFiles(single, false)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(found))
	for _, dir := range found {
		seen[dir] = true
	}
	for _, dir := range direct {
		if !seen[dir] {
			found = append(found, dir)
		}
	}
	sort.Strings(found)
	return found, nil
}
