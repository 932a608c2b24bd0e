package partition

import (
	"net/url"
	"strings"

	"github.com/hupe1980/wikiflow/rdf"
)

// Ext is the file extension of partition blobs.
const Ext = ".wkf"

// KeyFunc maps a statement to its partition key.
type KeyFunc func(rdf.Triple) string

// ByPredicate keys statements by the full IRI of their predicate.
func ByPredicate(t rdf.Triple) string {
	return t.Predicate.Value()
}

// BlobName returns the blob holding key under prefix.
func BlobName(prefix, key string) string {
	name := url.PathEscape(key) + Ext
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		return prefix + "/" + name
	}
	return name
}

// keyOf inverts BlobName. ok is false for blobs that are not partitions.
func keyOf(prefix, name string) (string, bool) {
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		var found bool
		if name, found = strings.CutPrefix(name, prefix+"/"); !found {
			return "", false
		}
	}
	esc, found := strings.CutSuffix(name, Ext)
	if !found || strings.Contains(esc, "/") {
		return "", false
	}
	key, err := url.PathUnescape(esc)
	if err != nil {
		return "", false
	}
	return key, true
}
