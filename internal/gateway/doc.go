// Package gateway implements the media delivery data path: filename
// resolution against the extension allow-list, alias rewriting, the
// negative lookup cache, strict single-range parsing, upstream fetch,
// response header assembly and budgeted streaming.
package gateway
