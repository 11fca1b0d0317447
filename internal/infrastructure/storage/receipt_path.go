package storage

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// ReceiptsDir is the directory receipts are stored in, relative to the base
const ReceiptsDir = "receipts"

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// SanitizeName returns a filesystem-safe version of name. Path separators,
// parent references and anything outside [a-zA-Z0-9-_] are removed.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")
	return unsafeChars.ReplaceAllString(name, "")
}

// ReceiptPath builds the slash separated storage key of a receipt:
// receipts/<owner>/<id><ext>. The original file name only contributes its
// lower-cased extension.
func ReceiptPath(owner, id, fileName string) string {
	dir := SanitizeName(strings.ReplaceAll(owner, "@", "_at_"))
	if dir == "" {
		dir = "anonymous"
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if SanitizeName(strings.TrimPrefix(ext, ".")) != strings.TrimPrefix(ext, ".") {
		ext = ""
	}
	return path.Join(ReceiptsDir, dir, SanitizeName(id)+ext)
}
