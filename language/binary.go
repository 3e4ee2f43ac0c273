package language

// sniffLen is how many leading bytes are inspected for NUL bytes.
const sniffLen = 512

// IsBinaryContent reports whether data looks binary: a NUL byte within
// the first 512 bytes.
func IsBinaryContent(data []byte) bool {
	n := len(data)
	if n > sniffLen {
		n = sniffLen
	}
	for i := 0; i < n; i++ {
		if data[i] == 0 {
			return true
		}
	}
	return false
}

// IsBinaryText is IsBinaryContent for strings, avoiding a copy.
func IsBinaryText(s string) bool {
	n := len(s)
	if n > sniffLen {
		n = sniffLen
	}
	for i := 0; i < n; i++ {
		if s[i] == 0 {
			return true
		}
	}
	return false
}
