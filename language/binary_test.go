package language

import "testing"

func Test_IsBinaryContent_GeneratedSource(t *testing.T) {
	content := []byte("// src/App.tsx\nexport default function App() {}\n")
	if IsBinaryContent(content) {
		t.Error("expected generated source not to be detected as binary")
	}
}

func Test_IsBinaryContent_ImageHeader(t *testing.T) {
	content := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}
	if !IsBinaryContent(content) {
		t.Error("expected PNG header to be detected as binary")
	}
}

func Test_IsBinaryContent_Empty(t *testing.T) {
	if IsBinaryContent(nil) {
		t.Error("expected empty content not to be binary")
	}
}

func Test_IsBinaryText_NullBeyondSniffWindow(t *testing.T) {
	text := make([]byte, 600)
	for i := range text {
		text[i] = 'x'
	}
	text[550] = 0x00
	if IsBinaryText(string(text)) {
		t.Error("expected NUL past the sniff window to be ignored")
	}
	if !IsBinaryText("abc\x00def") {
		t.Error("expected early NUL to be detected")
	}
}
