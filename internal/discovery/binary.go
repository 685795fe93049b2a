package discovery

import (
	"bytes"
	"path/filepath"
	"strings"
)

// binaryDetector rejects files that cannot be C-family source text
type binaryDetector struct {
	binaryExtensions map[string]bool
}

func newBinaryDetector() *binaryDetector {
	extensions := map[string]bool{
		// Objects and libraries
		".o": true, ".obj": true, ".a": true, ".lib": true,
		".so": true, ".dylib": true, ".dll": true, ".exe": true,
		// Precompiled headers and modules
		".pch": true, ".gch": true, ".pcm": true, ".ifc": true,
		// Debug info and build databases
		".pdb": true, ".idb": true, ".ilk": true,
		// Archives
		".zip": true, ".tar": true, ".gz": true, ".xz": true, ".7z": true,
		// Images
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
	}
	return &binaryDetector{binaryExtensions: extensions}
}

// IsBinaryByExtension checks the extension only, without any I/O.
func (bd *binaryDetector) IsBinaryByExtension(path string) bool {
	return bd.binaryExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsBinaryContent reports whether the leading bytes contain a NUL byte.
func (bd *binaryDetector) IsBinaryContent(head []byte) bool {
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	return bytes.IndexByte(head, 0) >= 0
}

const sniffLen = 512
