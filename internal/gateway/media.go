package gateway

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/mediagate/mediagate/internal/config"
)

// MediaResolver decides which filenames the gateway handles, rewrites
// compatibility aliases, and resolves Content-Type values.
type MediaResolver struct {
	extensions  map[string]struct{}
	overrides   map[string]string
	preferTable bool
	aliasOn     bool
}

// NewMediaResolver builds a resolver from the media configuration.
func NewMediaResolver(cfg *config.MediaConfig) *MediaResolver {
	exts := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		exts[normalizeExt(ext)] = struct{}{}
	}

	overrides := make(map[string]string, len(cfg.MIMEOverrides))
	for ext, mimeType := range cfg.MIMEOverrides {
		overrides[normalizeExt(ext)] = mimeType
	}

	return &MediaResolver{
		extensions:  exts,
		overrides:   overrides,
		preferTable: cfg.PreferMIMETable,
		aliasOn:     cfg.AliasRewrite,
	}
}

// Resolve rewrites compatibility aliases and reports whether the
// resulting filename carries a handled extension. A filename outside
// the allow-list is returned unchanged with handled=false; the caller
// passes those requests through untouched.
func (r *MediaResolver) Resolve(filename string) (resolved string, handled bool) {
	resolved = filename
	if r.aliasOn {
		resolved = r.rewriteAlias(filename)
	}

	ext := normalizeExt(filepath.Ext(resolved))
	if ext == "" {
		return filename, false
	}
	if _, ok := r.extensions[ext]; !ok {
		return filename, false
	}
	return resolved, true
}

// ContentType resolves the Content-Type for a filename. Depending on
// configuration the override table wins over the platform MIME
// database, or the other way round. Falls back to
// application/octet-stream when neither knows the extension.
func (r *MediaResolver) ContentType(filename string) string {
	ext := normalizeExt(filepath.Ext(filename))
	if ext == "" {
		return "application/octet-stream"
	}

	fromTable := r.overrides[ext]
	fromSystem := mime.TypeByExtension("." + ext)

	if r.preferTable {
		if fromTable != "" {
			return fromTable
		}
		if fromSystem != "" {
			return fromSystem
		}
	} else {
		if fromSystem != "" {
			return fromSystem
		}
		if fromTable != "" {
			return fromTable
		}
	}

	return "application/octet-stream"
}

// rewriteAlias strips a trailing compatibility suffix: a name like
// "clip.mkv.mp4" is served from the underlying "clip.mkv" object.
func (r *MediaResolver) rewriteAlias(filename string) string {
	if !strings.HasSuffix(filename, ".mp4") {
		return filename
	}

	inner := strings.TrimSuffix(filename, ".mp4")
	innerExt := normalizeExt(filepath.Ext(inner))
	if innerExt == "" || innerExt == "mp4" {
		return filename
	}
	if _, ok := r.extensions[innerExt]; !ok {
		return filename
	}
	return inner
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
