// Package hash provides hardware-accelerated checksums for data integrity.
//
// # CRC32-Castagnoli (CRC32C)
//
// Checksums here use CRC32-Castagnoli (CRC32C), which offers hardware
// acceleration on x86 (SSE4.2) and ARM (CRC extension), better error
// detection than CRC32-IEEE, and matches what S3 expects for upload
// integrity validation.
//
// # Usage
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
