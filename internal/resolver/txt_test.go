package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePlainTextUTF8(t *testing.T) {
	text, err := decodePlainText([]byte("An essay on the water cycle."))
	require.NoError(t, err)
	assert.Equal(t, "An essay on the water cycle.", text)
}

func TestDecodePlainTextStripsBOM(t *testing.T) {
	text, err := decodePlainText([]byte{0xEF, 0xBB, 0xBF, 'h', 'i'})
	require.NoError(t, err)
	assert.Equal(t, "hi", text)
}

func TestDecodePlainTextUTF16LE(t *testing.T) {
	// "ok" as UTF-16LE with BOM
	text, err := decodePlainText([]byte{0xFF, 0xFE, 'o', 0x00, 'k', 0x00})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestDecodePlainTextLatin1Fallback(t *testing.T) {
	// 0xE9 is é in Latin-1 and invalid standalone UTF-8
	text, err := decodePlainText([]byte{'c', 'a', 'f', 0xE9})
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestSniffContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", sniffContentType([]byte("%PDF-1.7 rest"), ""))
	assert.Equal(t, "image/jpeg", sniffContentType([]byte("anything"), "image/jpeg"))
}
