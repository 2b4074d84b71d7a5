package pix

import "fmt"

const (
	crcInit       uint16 = 0xFFFF
	crcPolynomial uint16 = 0x1021
)

// CRC16 computes CRC-16/CCITT-FALSE over the raw bytes of data.
func CRC16(data []byte) uint16 {
	crc := crcInit
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Checksum returns the CRC of payload as 4 uppercase hex digits.
// The input must be the exact payload prefix, including the trailing "6304".
func Checksum(payload string) string {
	return fmt.Sprintf("%04X", CRC16([]byte(payload)))
}
