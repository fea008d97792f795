package bits

import "errors"

// binToSlice converts a string of binary into a corresponding byte slice,
// e.g. "0100 0001 1000 1100" => {0x41,0x8c}. Spaces are ignored.
//
// Ported from github.com/ausocean/av/codec/h264/h264dec/helpers.go so test
// vectors in this package read as the bit layout they exercise rather than
// opaque hex.
func binToSlice(s string) ([]byte, error) {
	var (
		a     byte = 0x80
		cur   byte
		bytes []byte
	)

	for i, c := range s {
		switch c {
		case ' ':
			continue
		case '1':
			cur |= a
		case '0':
		default:
			return nil, errors.New("invalid binary string")
		}

		a >>= 1
		if a == 0 || i == (len(s)-1) {
			bytes = append(bytes, cur)
			cur = 0
			a = 0x80
		}
	}
	return bytes, nil
}
