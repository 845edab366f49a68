package unlhauae

import crc16 "github.com/sigurn/crc16"

// LHA uses CRC-16/ARC for both content and level 2 header checks.
var crcTable = crc16.MakeTable(crc16.CRC16_ARC)

func newCRC() crc16.Hash16 {
	return crc16.New(crcTable)
}

func crcSum(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}

// headerSum is the 8-bit additive checksum of level 0 and 1 headers.
func headerSum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}
