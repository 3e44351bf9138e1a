package resume

import (
	"mime"
	"path/filepath"
	"strings"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeText = "text/plain"
	ContentTypeHTML = "text/html"
)

var extensions = map[string]string{
	".pdf":  ContentTypePDF,
	".docx": ContentTypeDOCX,
	".txt":  ContentTypeText,
	".html": ContentTypeHTML,
	".htm":  ContentTypeHTML,
}

// NormalizeContentType strips parameters and falls back to the file
// extension when the declared type is missing or generic.
func NormalizeContentType(declared, fileName string) string {
	ct := strings.ToLower(strings.TrimSpace(declared))
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		ct = mt
	}
	if ct == "" || ct == "application/octet-stream" {
		if byExt, ok := extensions[strings.ToLower(filepath.Ext(fileName))]; ok {
			return byExt
		}
	}
	return ct
}

func SupportedContentType(ct string) bool {
	switch ct {
	case ContentTypePDF, ContentTypeDOCX, ContentTypeText, ContentTypeHTML:
		return true
	default:
		return false
	}
}

// Extension returns the file extension stored documents get for ct.
func Extension(ct string) string {
	switch ct {
	case ContentTypePDF:
		return ".pdf"
	case ContentTypeDOCX:
		return ".docx"
	case ContentTypeHTML:
		return ".html"
	default:
		return ".txt"
	}
}
