// Package s3 stores partition blobs in Amazon S3 or an S3-compatible service.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("wikidata/partitions"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
// Reads are HTTP range requests. Create streams through the multipart
// upload manager; Put sends a single request with a CRC32C checksum.
//
// # Catalog
//
// CatalogStore records committed blobs in a DynamoDB table. Partitions are
// listed from the table rather than the bucket, so readers only see
// partitions whose upload completed:
//
//	cat, err := s3.NewCatalog(ctx, store, "wikiflow-catalog", "s3://my-bucket/wikidata")
package s3
