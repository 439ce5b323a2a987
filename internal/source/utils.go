package source

import (
	"path/filepath"
	"slices"
)

// normalizeCRLF replaces every \r\n with \n, leaving lone \r untouched.
// Returns the (possibly new) slice and whether any replacement happened.
func normalizeCRLF(content []byte) ([]byte, bool) {
	// Fast path: no \r at all.
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}

	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}

	return content, false
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content))
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// Empty index: the whole file is a single line.
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	// Binary search: greatest lineIdx[i] strictly before off. That newline
	// terminates line i+1, so off sits on line i+2. A newline byte itself
	// resolves to the end of the line it terminates.
	lo, hi := 0, len(lineIdx)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}

	if hi < 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	startOff := lineIdx[hi] + 1
	return LineCol{Line: uint32(hi + 2), Col: off - startOff + 1}
}

// EncodeForWrite reapplies the on-disk encoding that Load stripped: CRLF
// line endings and the UTF-8 BOM. Files that mixed LF and CRLF come back
// uniformly CRLF.
func EncodeForWrite(content []byte, flags FileFlags) []byte {
	if flags&FileNormalizedCRLF != 0 {
		content = restoreCRLF(content)
	}
	if flags&FileHadBOM != 0 {
		withBOM := make([]byte, 0, len(content)+3)
		withBOM = append(withBOM, 0xEF, 0xBB, 0xBF)
		content = append(withBOM, content...)
	}
	return content
}

func restoreCRLF(content []byte) []byte {
	out := make([]byte, 0, len(content))
	for _, b := range content {
		if b == '\n' {
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	return out
}

func normalizePath(p string) string {
	// Keep a single representation across platforms.
	return filepath.ToSlash(filepath.Clean(p))
}
