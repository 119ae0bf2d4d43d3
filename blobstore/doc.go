// Package blobstore provides storage abstraction for codebook artifacts.
//
// The builder publishes a finished codebook through a BlobStore, and the
// downstream training system fetches it the same way.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with atomic rename-on-put
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3
//   - minio.Store: MinIO and other S3-compatible object stores
package blobstore
