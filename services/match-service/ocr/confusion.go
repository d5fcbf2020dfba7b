// Package ocr expands a scanned shipment reference into the spellings an OCR
// engine could have produced for it.
package ocr

// confusions maps an uppercase character to the characters OCR commonly
// mistakes it for, most likely first. It is never written after init.
var confusions = map[rune][]rune{
	'0': {'O', 'Q', 'D'},
	'O': {'0', 'Q', 'D'},
	'Q': {'0', 'O'},
	'D': {'0', 'O'},
	'1': {'I', 'l'},
	'I': {'1', 'l'},
	'L': {'1', 'I'},
	'5': {'S'},
	'S': {'5'},
	'8': {'B'},
	'B': {'8'},
	'6': {'G'},
	'G': {'6'},
	'2': {'Z'},
	'Z': {'2'},
}

// Alternatives returns the confusable characters for r, or nil when r has
// none. r must already be uppercase. The slice is a copy.
func Alternatives(r rune) []rune {
	alts, ok := confusions[r]
	if !ok {
		return nil
	}
	out := make([]rune, len(alts))
	copy(out, alts)
	return out
}

// Confusable reports whether r (uppercase) has any OCR alternatives.
func Confusable(r rune) bool {
	_, ok := confusions[r]
	return ok
}
