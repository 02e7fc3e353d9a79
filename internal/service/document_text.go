package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"lofty-chat/internal/domain"
)

// TextExtractor obtiene texto plano de un documento subido.
type TextExtractor interface {
	ExtractText(doc domain.Document) (string, error)
}

// PlainTextExtractor lee directamente los archivos de texto. Para PDF/DOCX y demás
// devuelve un marcador con el nombre del archivo.
type PlainTextExtractor struct{}

var plainTextExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".text": true,
}

func (PlainTextExtractor) ExtractText(doc domain.Document) (string, error) {
	if isPlainText(doc) {
		return strings.ToValidUTF8(string(doc.Content), "�"), nil
	}
	return fmt.Sprintf("[Document content would be extracted from %s]", doc.Name), nil
}

func isPlainText(doc domain.Document) bool {
	mime := strings.ToLower(strings.TrimSpace(doc.MimeType))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if strings.HasPrefix(mime, "text/") {
		return true
	}
	if mime == "" || mime == "application/octet-stream" {
		return plainTextExtensions[strings.ToLower(filepath.Ext(doc.Name))]
	}
	return false
}
