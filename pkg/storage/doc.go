// Package storage reads attachment content from S3-compatible object storage.
//
// Templates reference stored objects with an "s3://" source, which the mailer
// package routes to an S3Storage opener:
//
//	store, err := storage.New(storage.Config{
//		Bucket:    "attachments",
//		AccessKey: os.Getenv("S3_ACCESS_KEY"),
//		SecretKey: os.Getenv("S3_SECRET_KEY"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	asm := mailer.NewAssembler(mailer.WithOpener(storage.RefPrefix, store))
//
// Both "s3://key" and "s3://bucket/key" are accepted; the bucket segment must
// name the configured bucket to be stripped.
//
// # MIME Detection
//
// DetectContentType picks an attachment's MIME type from its magic bytes,
// falling back to the filename extension when sniffing is inconclusive.
//
// # Errors
//
// All S3 failures are normalized to sentinel errors (ErrNotFound, ErrAccessDenied,
// ErrDownloadFailed, ErrObjectTooLarge) so callers can use errors.Is.
package storage
