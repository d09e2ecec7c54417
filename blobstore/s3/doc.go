// Package s3 stores run artifacts in Amazon S3.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil { ... }
//
//	store := s3.New(awss3.NewFromConfig(cfg), "my-bucket", "runs/2026-08-25/")
//
// # Features
//
//   - Ranged GETs, so partial reads of large spilled results never fetch
//     the whole object
//   - Streaming multipart uploads with optional CRC32C validation
//   - Paginated listing with the root prefix stripped from names
//   - ExpressStore for S3 Express One Zone directory buckets, including
//     conditional writes via PutIfNotExists
//   - DDBCommitStore, which backs the CURRENT pointer with a DynamoDB
//     commit log so concurrent coordinators cannot overwrite each other
//   - RunLog, a DynamoDB task commit log that lets an interrupted
//     distributed run resume without re-processing completed tasks
package s3
