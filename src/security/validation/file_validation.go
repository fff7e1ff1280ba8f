// backend/src/security/validation/file_validation.go
package validation

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/username/expensetracker/backend/src/logger"
)

// allowedExtensions maps accepted upload extensions to their import format name.
var allowedExtensions = map[string]string{
	".csv":  "csv",
	".json": "json",
	".xlsx": "xlsx",
}

// ValidateUploadExtension checks the file name extension and returns the import format it implies.
func ValidateUploadExtension(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	format, ok := allowedExtensions[ext]
	if !ok {
		logger.L.Warn("Disallowed upload extension", "filename", filename)
		return "", fmt.Errorf("%w: only CSV, JSON and XLSX files are allowed", ErrValidationFailed)
	}
	return format, nil
}

var zipMagic = []byte("PK\x03\x04")

// isBinaryContent checks if a buffer contains binary control characters (like null bytes)
// which indicate the file is likely not a valid text-based CSV/JSON.
func isBinaryContent(buf []byte) bool {
	if bytes.IndexByte(buf, 0) != -1 {
		return true
	}
	// a multi-byte rune may be cut at the end of the sniffed window
	for i := 0; i < utf8.UTFMax && len(buf) > 0; i++ {
		if utf8.Valid(buf) {
			return false
		}
		buf = buf[:len(buf)-1]
	}
	return true
}

// ValidateFileContent inspects the first bytes of file and checks they match format.
// csv and json must be text; xlsx must be a zip container. The read pointer is reset.
func ValidateFileContent(file io.ReadSeeker, format string) error {
	if file == nil {
		return fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 1024)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read file for content type checking: %w", err)
	}
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}
	if n == 0 {
		return fmt.Errorf("%w: file is empty", ErrValidationFailed)
	}

	switch format {
	case "xlsx":
		if !bytes.HasPrefix(buffer[:n], zipMagic) {
			logger.L.Warn("File rejected: XLSX upload is not a zip container")
			return fmt.Errorf("%w: file is not a valid XLSX workbook", ErrValidationFailed)
		}
	case "csv", "json":
		if isBinaryContent(buffer[:n]) {
			logger.L.Warn("File rejected: Binary content detected in text upload", "format", format)
			return fmt.Errorf("%w: file appears to be binary, not %s", ErrValidationFailed, strings.ToUpper(format))
		}
	default:
		return fmt.Errorf("%w: unsupported format %q", ErrValidationFailed, format)
	}

	logger.L.Debug("File content validated", "format", format)
	return nil
}
