package storage

import "context"

// UploadOptions conveys upload destination metadata.
type UploadOptions struct {
	Bucket    string
	KeyPrefix string
}

// Service mirrors published avatar files to remote object storage.
type Service interface {
	// UploadFile stores the file at localPath under opts.KeyPrefix/name,
	// overwriting any previous object, and returns the object location.
	UploadFile(ctx context.Context, localPath, name string, opts UploadOptions) (string, error)
}
