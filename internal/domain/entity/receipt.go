package entity

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var receiptExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".pdf":  true,
}

// ReceiptMIMETypes are the content types a receipt may sniff as
var ReceiptMIMETypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"application/pdf",
}

// IsReceiptFileName reports whether name carries an accepted receipt extension
func IsReceiptFileName(name string) bool {
	return receiptExtensions[strings.ToLower(filepath.Ext(name))]
}

// SniffReceipt detects the content type of a receipt and reports whether it
// is one of ReceiptMIMETypes. Empty content is never a receipt.
func SniffReceipt(content []byte) (string, bool) {
	if len(content) == 0 {
		return "", false
	}
	detected := mimetype.Detect(content)
	for _, allowed := range ReceiptMIMETypes {
		if detected.Is(allowed) {
			return detected.String(), true
		}
	}
	return detected.String(), false
}
