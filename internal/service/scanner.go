package service

import (
	"github.com/nicky-ayoub/ebitdeck/internal/scan"
)

// FileScanner abstracts file scanning.
type FileScanner interface {
	Run(dir string, exts map[string]bool, logger scan.LoggerFunc) <-chan scan.FileItem
}

// ScannerService owns the supported-extension set and the scanner used
// to discover card images.
type ScannerService struct {
	FileScan   FileScanner
	Extensions map[string]bool // Supported image extensions
}

// NewScannerService constructs a new ScannerService.
func NewScannerService(fileScan FileScanner) *ScannerService {
	return &ScannerService{
		FileScan:   fileScan,
		Extensions: map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true},
	}
}

// Scan starts a background scan of dir using the service's extension set.
func (ss *ScannerService) Scan(dir string, logger scan.LoggerFunc) <-chan scan.FileItem {
	return ss.FileScan.Run(dir, ss.Extensions, logger)
}
