// Package mmap maps local partition blobs read-only into memory.
//
//	m, err := mmap.Open(path)
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix uses mmap(2) and madvise(2); Windows uses a read-only file mapping
// view and ignores access hints.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but the
// slice returned by Bytes must not be used after Close.
package mmap
