// Package minio provides a BlobStore implementation using the MinIO client.
//
// MinIO is an S3-compatible object store that runs self-hosted, which makes
// it the usual target for on-prem and air-gapped deployments. The same store
// works against Ceph, SeaweedFS, Garage and other S3-compatible systems.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "runs/2026-08-25/")
//
// # Features
//
//   - Ranged reads for partial fetches of spilled results
//   - Streaming uploads for large artifacts
//   - No AWS SDK dependency
package minio
