// Package codec implements the binary term format used to persist
// statements.
//
// A statement is three consecutive encoded terms (subject, predicate,
// object) without framing: decoding a term consumes exactly its own bytes.
// Every term is a one-byte tag followed by a tag-specific payload:
//
//	tag  kind                    payload
//	1    plain IRI               string
//	2    blank node              string (label)
//	3    plain literal           string
//	4    language literal        string (value), string (language)
//	5    datatyped literal       string (value), nested IRI term (1, 6 or 7)
//	6    constant IRI            1 byte index into the constants table
//	7    numeric IRI             1 byte prefix, 2 byte char, 4 byte id
//
// Strings are a uvarint byte length followed by UTF-8 bytes. Fixed-width
// integers are big-endian.
//
// Partition files wrap the statement stream in a small self-describing
// header that records the compression (none, lz4 or zstd), so files are
// opened without out-of-band configuration.
//
// Codec selection is a breaking-change boundary: the constants and prefix
// tables of the rdf.Vocabulary are part of the format.
package codec
