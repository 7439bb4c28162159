package event

// KeyBitmap tracks pressed state for the 7-bit character range. Keys outside
// it are ignored.
type KeyBitmap [2]uint64

// Set records key as pressed or released.
func (b *KeyBitmap) Set(key rune, down bool) {
	if key < 0 || key > 127 {
		return
	}
	word, bit := key>>6, uint64(1)<<(key&63)
	if down {
		b[word] |= bit
	} else {
		b[word] &^= bit
	}
}

// Pressed reports whether key is held.
func (b *KeyBitmap) Pressed(key rune) bool {
	if key < 0 || key > 127 {
		return false
	}
	return b[key>>6]&(uint64(1)<<(key&63)) != 0
}

// Reset releases every key.
func (b *KeyBitmap) Reset() { *b = KeyBitmap{} }
