// Package hash provides the CRC32-Castagnoli checksums attached to uploaded
// partition blobs.
//
//	sum := hash.CRC32C(data)
//	header := hash.EncodeCRC32C(sum)
//
// Go's crc32 package uses hardware instructions (SSE4.2, ARM CRC) when
// available.
package hash
