// Package partition buckets statements into per-key codec blobs and reads
// them back.
//
// A Writer consumes a statement stream and routes every statement, through a
// KeyFunc, to the single codec writer owning its key. Each key becomes one
// blob named <prefix>/<escaped key>.wkf in a blobstore.BlobStore. Writes for
// different keys proceed in parallel; writes for one key are serialized.
//
// A Resolver opens the blob of one key as a statement sequence and is the
// engine's Partitions implementation. A key without a blob is logged and
// yields no statements.
//
//	w := partition.NewWriter(store, partition.WithCompression(codec.Zstd{}))
//	if err := w.WriteAll(ctx, ntriples.NewReader(f, vocab).All()); err != nil {
//	    return err
//	}
//	if err := w.Close(); err != nil {
//	    return err
//	}
//
//	eng, err := engine.New(engine.WithPartitions(partition.NewResolver(store)))
package partition
