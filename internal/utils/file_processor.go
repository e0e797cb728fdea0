package utils

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/tether/internal/errors"
)

// FileProcessor provides utilities for common file processing operations
type FileProcessor struct {
	directoryFilter DirectoryFilter
}

// NewFileProcessor creates a new file processor skipping the default directories
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{directoryFilter: DefaultDirectoryFilter()}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// DefaultGoFileFilter filters for .go files, excluding tests. Generated files
// are included; they are part of the next round's input.
func DefaultGoFileFilter() FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}

		name := info.Name()
		return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
	}
}

// GeneratedFileFilter matches Go files whose first line is header
func GeneratedFileFilter(header string) FileFilter {
	goFiles := DefaultGoFileFilter()
	return func(path string, info os.DirEntry) bool {
		return goFiles(path, info) && HasHeader(path, header)
	}
}

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
		"_examples":    true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()

		// Skip hidden directories
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}

		return !skipDirs[name]
	}
}

// HasHeader reports whether the first line of a file equals header
func HasHeader(path, header string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return false
	}
	return strings.TrimRight(scanner.Text(), "\r") == header
}

// WalkFiles walks through files in a directory tree with filtering
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matchedFiles []string

	err := filepath.WalkDir(rootDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		if entry.IsDir() {
			if path != rootDir && options.DirectoryFilter != nil && !options.DirectoryFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, entry) {
			matchedFiles = append(matchedFiles, path)
		}
		return nil
	})

	return matchedFiles, err
}

// ScanDirectoriesWithGoFiles returns the directories holding Go files, sorted.
// Directories are walked recursively when recursive is set.
func (fp *FileProcessor) ScanDirectoriesWithGoFiles(rootDirs []string, recursive bool) ([]string, error) {
	seen := make(map[string]bool)
	var packageDirs []string

	for _, rootDir := range rootDirs {
		absDir, err := filepath.Abs(rootDir)
		if err != nil {
			return nil, errors.WrapFileSystemError("resolve", rootDir, err)
		}

		dirs := []string{absDir}
		if recursive {
			dirs, err = fp.subdirectories(absDir)
			if err != nil {
				return nil, err
			}
		}

		for _, dir := range dirs {
			if seen[dir] {
				continue
			}
			seen[dir] = true

			hasGoFiles, err := fp.HasGoFiles(dir)
			if err != nil {
				return nil, errors.WrapFileSystemError("read", dir, err)
			}
			if hasGoFiles {
				packageDirs = append(packageDirs, dir)
			}
		}
	}

	sort.Strings(packageDirs)
	return packageDirs, nil
}

func (fp *FileProcessor) subdirectories(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && !fp.directoryFilter(path, entry) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, errors.WrapFileSystemError("walk", root, err)
	}
	return dirs, nil
}

// HasGoFiles checks if a directory contains any non-test .go files
func (fp *FileProcessor) HasGoFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}

	fileFilter := DefaultGoFileFilter()
	for _, entry := range entries {
		if fileFilter(filepath.Join(dir, entry.Name()), entry) {
			return true, nil
		}
	}
	return false, nil
}

// RemoveGeneratedFiles deletes the Go files starting with header directly
// inside dirs and returns their paths
func (fp *FileProcessor) RemoveGeneratedFiles(dirs []string, header string) ([]string, error) {
	var removed []string
	filter := GeneratedFileFilter(header)

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return removed, errors.WrapFileSystemError("read", dir, err)
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if !filter(path, entry) {
				continue
			}
			if err := os.Remove(path); err != nil {
				return removed, errors.WrapFileSystemError("remove", path, err)
			}
			removed = append(removed, path)
		}
	}
	return removed, nil
}
