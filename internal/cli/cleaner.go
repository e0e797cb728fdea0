package cli

import (
	"github.com/toyz/tether/internal/generator"
	"github.com/toyz/tether/internal/utils"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	scanner       *DirectoryScanner
	fileProcessor *utils.FileProcessor
}

// NewCleaner creates a new cleaner
func NewCleaner() *Cleaner {
	return &Cleaner{
		scanner:       NewDirectoryScanner(),
		fileProcessor: utils.NewFileProcessor(),
	}
}

// CleanGeneratedFiles removes every file carrying the generated header from
// the given directories and returns the removed paths. Handwritten files are
// never touched, whatever their name.
func (c *Cleaner) CleanGeneratedFiles(directories []string) ([]string, error) {
	dirs, err := c.scanner.ScanDirectories(directories)
	if err != nil {
		return nil, err
	}
	return c.fileProcessor.RemoveGeneratedFiles(dirs, generator.GeneratedHeader)
}
