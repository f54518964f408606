package tomldb

import (
	"bytes"
	"testing"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"simple document", []byte("key = \"value\"\n\n[table]\nn = 1\n")},
		{"empty", []byte{}},
		{"single byte", []byte{0x42}},
		{"binary data", []byte{0x00, 0x01, 0xff, 0xfe, 0x80, 0x7f}},
		{"unicode", []byte("title = \"日本語テキスト\"")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := compress(tt.data)
			decoded, err := decompress(encoded)
			if err != nil {
				t.Fatalf("decompress failed: %v", err)
			}
			if len(tt.data) == 0 {
				if decoded != nil {
					t.Errorf("empty round trip returned %v", decoded)
				}
				return
			}
			if !bytes.Equal(decoded, tt.data) {
				t.Errorf("round trip failed: got %q, want %q", decoded, tt.data)
			}
		})
	}
}

func TestCompressEmpty(t *testing.T) {
	if result := compress([]byte{}); result != "" {
		t.Errorf("compress(empty) = %q, want empty string", result)
	}
}

func TestCompressReducesSize(t *testing.T) {
	// A long run of near-identical entries should compress well.
	data := bytes.Repeat([]byte("key = \"value\"\n"), 1000)

	if encoded := compress(data); len(encoded) >= len(data) {
		t.Errorf("compression did not reduce size: encoded %d >= original %d", len(encoded), len(data))
	}
}

func TestCompressOutputPrintable(t *testing.T) {
	encoded := compress([]byte("content headed for a JSON field"))

	for i, b := range encoded {
		if b < 33 || b > 117 {
			// Ascii85 uses printable chars from ! (33) to u (117).
			t.Errorf("non-printable byte at position %d: %d (%c)", i, b, b)
		}
	}
}

func TestDecompressGarbage(t *testing.T) {
	if _, err := decompress("not ascii85 at all \x01\x02"); err == nil {
		t.Error("expected error for garbage input")
	}
}
