// Package fs abstracts the file system operations the local blob store uses
// to publish blobs, so tests can inject write failures.
//
//   - [LocalFS]: the os-backed implementation ([Default])
//   - [FaultyFS]: wraps a FileSystem and fails matching files
//
// Tests inject a [FaultyFS] to simulate a crash mid-write:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("P31", fs.Fault{FailAfterBytes: 1024})
//	store := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))
//
// Reads do not go through this package; published blobs are memory-mapped.
package fs
