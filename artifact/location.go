package artifact

import (
	"fmt"
	"path"
	"strings"
)

// OutputPrefix is the key prefix under which generated and edited images are stored.
const OutputPrefix = "OutputImages/"

// S3Scheme is the URI scheme of S3 locations.
const S3Scheme = "s3://"

// ParseS3Location splits an s3://bucket/key URI.
func ParseS3Location(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, S3Scheme) {
		return "", "", fmt.Errorf("not an s3 uri: %q", uri)
	}
	rest := strings.TrimPrefix(uri, S3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 uri: %q", uri)
	}
	return bucket, key, nil
}

// Join appends key to namespace with exactly one separator.
func Join(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return strings.TrimSuffix(namespace, "/") + "/" + strings.TrimPrefix(key, "/")
}

// BaseName returns the last path element of a location (key or URI).
func BaseName(location string) string {
	if i := strings.Index(location, "://"); i >= 0 {
		location = location[i+3:]
	}
	return path.Base(location)
}

// OutputKey returns the storage key for a generated artifact file name.
func OutputKey(name string) string { return OutputPrefix + name }
