package price

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

const objectScheme = "s3://"

// ObjectReader reads whole objects from a bucket.
type ObjectReader interface {
	GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, error)
}

// FileOpener opens local files.
type FileOpener struct{}

func (FileOpener) Open(_ context.Context, location string) (io.ReadCloser, error) {
	return os.Open(location)
}

// ObjectOpener opens s3://bucket/object locations from object storage and everything else as a local file.
type ObjectOpener struct {
	objects ObjectReader
	files   FileOpener
}

// NewObjectOpener builds an ObjectOpener over objects.
func NewObjectOpener(objects ObjectReader) *ObjectOpener {
	return &ObjectOpener{objects: objects}
}

func (o *ObjectOpener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, object, ok, err := ParseObjectLocation(location)
	if err != nil {
		return nil, err
	}
	if !ok {
		return o.files.Open(ctx, location)
	}
	if o.objects == nil {
		return nil, fmt.Errorf("object storage is not configured for %s", location)
	}
	return o.objects.GetObject(ctx, bucket, object)
}

// ParseObjectLocation splits s3://bucket/object. ok is false for any other location.
func ParseObjectLocation(location string) (bucket, object string, ok bool, err error) {
	rest, found := strings.CutPrefix(location, objectScheme)
	if !found {
		return "", "", false, nil
	}
	bucket, object, _ = strings.Cut(rest, "/")
	if bucket == "" || object == "" {
		return "", "", false, fmt.Errorf("invalid object location %q", location)
	}
	return bucket, object, true, nil
}

type minioReader struct {
	client *minio.Client
}

// NewMinIOReader connects an ObjectReader to an S3 compatible endpoint.
func NewMinIOReader(endpoint, accessKey, secretKey string, useSSL bool) (ObjectReader, error) {
	if endpoint == "" {
		return nil, errors.New("object storage endpoint is required")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create MinIO client: %w", err)
	}
	return &minioReader{client: client}, nil
}

func (r *minioReader) GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	obj, err := r.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, object, err)
	}
	// GetObject is lazy, Stat surfaces a missing bucket or object.
	if _, err = obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, fmt.Errorf("stat object %s/%s: %w", bucket, object, err)
	}
	return obj, nil
}
