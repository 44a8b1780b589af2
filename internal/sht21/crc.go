package sht21

// crcPoly is the Dallas/Maxim CRC-8 generator x^8 + x^5 + x^4 + 1.
const crcPoly = 0x31

// Checksum computes the CRC-8 the sensor appends to every measurement
// transmission: MSB first, zero initial value, over the two data bytes.
func Checksum(msb, lsb byte) byte {
	crc := byte(0)
	for _, b := range [2]byte{msb, lsb} {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ crcPoly
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
