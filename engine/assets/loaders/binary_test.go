package loaders

import (
	"encoding/binary"
	"testing"
)

func spirvBytes(words ...uint32) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

func TestRepackShaderWords(t *testing.T) {
	data := spirvBytes(spirvMagic, 0x00010000, 0xdeadbeef)
	words, err := repackShaderWords("test", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(words))
	}
	if words[0] != spirvMagic || words[2] != 0xdeadbeef {
		t.Fatalf("words repacked wrong: %#x", words)
	}
}

func TestRepackShaderWordsRejectsBadMagic(t *testing.T) {
	if _, err := repackShaderWords("test", spirvBytes(0x12345678)); err == nil {
		t.Fatal("expected an error for a non SPIR-V blob")
	}
}

func TestRepackShaderWordsRejectsOddSize(t *testing.T) {
	if _, err := repackShaderWords("test", []byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error for a truncated blob")
	}
	if _, err := repackShaderWords("test", nil); err == nil {
		t.Fatal("expected an error for an empty blob")
	}
}
