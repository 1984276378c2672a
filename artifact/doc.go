// Package artifact contains implementations of core.ArtifactStore and helpers
// for artifact locations (s3://bucket/key URIs, output keys, base names).
//
// The canonical interface lives in the core package so that tools depend only
// on the contract. Implementation packages (in-memory here, S3 in the s3
// sub-package) can be swapped without touching calling code.
package artifact
