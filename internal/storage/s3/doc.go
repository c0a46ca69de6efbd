// Package s3 provides the S3-backed object store used by the gateway.
//
// The backend streams object bodies directly from GetObject responses,
// optionally scoped to a single byte range, and maintains a small pool
// of S3 clients so concurrent streams do not contend on one client.
// Not-found conditions from S3 are translated to the gateway's
// OBJECT_NOT_FOUND error code; everything else surfaces as UPSTREAM_ERROR
// without retries.
package s3
