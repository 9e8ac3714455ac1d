package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtFromMIME(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mimeType string
		want     string
	}{
		{"jpeg", "image/jpeg", ".jpg"},
		{"pdf", "application/pdf", ".pdf"},
		{"json", "application/json", ".json"},
		{"unknown", "application/unknown", ""},
		{"empty", "", ""},
		{"with charset", "text/plain; charset=utf-8", ".txt"},
		{"uppercase", "IMAGE/JPEG", ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ExtFromMIME(tt.mimeType))
		})
	}
}

func TestMIMEFromExt(t *testing.T) {
	t.Parallel()

	require.Equal(t, "application/pdf", MIMEFromExt(".pdf"))
	require.Equal(t, "text/csv", MIMEFromExt(".CSV"))
	require.Equal(t, "image/jpeg", MIMEFromExt(".jpg"))
	require.Empty(t, MIMEFromExt(""))
	require.Empty(t, MIMEFromExt(".definitely-not-a-real-extension"))
}

func TestDetectContentType(t *testing.T) {
	t.Parallel()

	pdf := []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	tests := []struct {
		name     string
		filename string
		content  []byte
		want     string
	}{
		{"sniffed pdf", "invoice", pdf, "application/pdf"},
		{"sniff beats extension", "image.txt", png, "image/png"},
		{"csv by extension", "report.csv", []byte("a,b\n1,2\n"), "text/csv"},
		{"plain text without extension", "notes", []byte("hello"), "text/plain; charset=utf-8"},
		{"binary without extension", "blob", []byte{0x00, 0x01, 0x02, 0x03}, MIMEOctetStream},
		{"empty content uses extension", "a.pdf", nil, "application/pdf"},
		{"empty content no extension", "a", nil, MIMEOctetStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, DetectContentType(tt.filename, tt.content))
		})
	}
}

func TestNormalizeMIME(t *testing.T) {
	t.Parallel()

	require.Equal(t, "text/html", normalizeMIME("Text/HTML; charset=UTF-8"))
	require.Equal(t, "image/png", normalizeMIME("  image/png  "))
}
