// Package conv provides checked integer conversions for values decoded from
// untrusted input: partition files and numeric IRI suffixes.
package conv
