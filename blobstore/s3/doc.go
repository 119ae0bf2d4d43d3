// Package s3 implements blobstore.BlobStore on Amazon S3.
//
// Uploads go through the s3 transfer manager, which splits large artifacts
// into concurrent multipart uploads.
package s3
