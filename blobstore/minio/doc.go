// Package minio stores partition blobs through the MinIO client, which works
// against MinIO and other S3-compatible services (Ceph, Garage, SeaweedFS)
// without pulling in the AWS SDK.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    return err
//	}
//	store := minioblob.NewStore(client, "wikidata", "partitions/")
package minio
