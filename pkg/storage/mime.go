package storage

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// MIME type constants.
const (
	MIMEOctetStream    = "application/octet-stream"
	mimeDetectionBytes = 512 // http.DetectContentType considers at most 512 bytes
)

// mimeExtensions maps MIME types to preferred file extensions.
var mimeExtensions = map[string]string{
	// Images
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/bmp":     ".bmp",
	"image/tiff":    ".tiff",
	"image/x-icon":  ".ico",
	"image/heic":    ".heic",
	"image/heif":    ".heif",
	"image/avif":    ".avif",
	// Documents
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.ms-excel": ".xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.ms-powerpoint":                                             ".ppt",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
	"text/plain":      ".txt",
	"text/csv":        ".csv",
	"text/html":       ".html",
	"text/css":        ".css",
	"application/rtf": ".rtf",
	// Data
	"application/json":       ".json",
	"application/xml":        ".xml",
	"application/javascript": ".js",
	// Video
	"video/mp4":        ".mp4",
	"video/webm":       ".webm",
	"video/ogg":        ".ogv",
	"video/quicktime":  ".mov",
	"video/x-msvideo":  ".avi",
	"video/x-matroska": ".mkv",
	// Audio
	"audio/mpeg": ".mp3",
	"audio/wav":  ".wav",
	"audio/ogg":  ".ogg",
	"audio/webm": ".weba",
	"audio/aac":  ".aac",
	"audio/flac": ".flac",
	"audio/mp4":  ".m4a",
	// Archives
	"application/zip":              ".zip",
	"application/gzip":             ".gz",
	"application/x-tar":            ".tar",
	"application/x-7z-compressed":  ".7z",
	"application/x-rar-compressed": ".rar",
}

// DetectContentType determines the MIME type of an attachment.
// Magic-byte sniffing wins when it is specific; otherwise the filename
// extension decides, and application/octet-stream is the last resort.
func DetectContentType(filename string, content []byte) string {
	sniffed := MIMEOctetStream
	if len(content) > 0 {
		head := content
		if len(head) > mimeDetectionBytes {
			head = head[:mimeDetectionBytes]
		}
		sniffed = http.DetectContentType(head)
	}

	if !isGenericMIME(sniffed) {
		return sniffed
	}

	if byExt := MIMEFromExt(filepath.Ext(filename)); byExt != "" {
		return byExt
	}
	return sniffed
}

// MIMEFromExt returns the MIME type for a file extension such as ".pdf".
// Returns empty string if the extension is unknown.
func MIMEFromExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext == "" {
		return ""
	}
	for mimeType, e := range mimeExtensions {
		if e == ext {
			return mimeType
		}
	}
	if byStd := mime.TypeByExtension(ext); byStd != "" {
		return normalizeMIME(byStd)
	}
	return ""
}

// ExtFromMIME returns the file extension for a MIME type.
// Returns empty string if MIME type is unknown.
func ExtFromMIME(mimeType string) string {
	return mimeExtensions[normalizeMIME(mimeType)]
}

// isGenericMIME reports whether sniffing gave no useful answer.
// Text sniffs are generic because CSV, JSON and plain text look alike.
func isGenericMIME(mimeType string) bool {
	base := normalizeMIME(mimeType)
	return base == MIMEOctetStream || base == "text/plain"
}

// normalizeMIME extracts the base MIME type, removing parameters like charset.
// Returns the lowercase MIME type.
func normalizeMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(mimeType))
}
