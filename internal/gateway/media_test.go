package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mediagate/mediagate/internal/config"
)

func testMediaConfig() *config.MediaConfig {
	return &config.MediaConfig{
		AllowedExtensions: []string{"mp4", "mkv", "webm", "mp3", "vtt"},
		MIMEOverrides: map[string]string{
			"mkv": "video/x-matroska",
			"vtt": "text/vtt",
		},
		PreferMIMETable: true,
		AliasRewrite:    true,
	}
}

func TestResolverResolve(t *testing.T) {
	r := NewMediaResolver(testMediaConfig())

	tests := []struct {
		name         string
		filename     string
		wantResolved string
		wantHandled  bool
	}{
		{"plain mp4", "clip.mp4", "clip.mp4", true},
		{"mkv", "movie.mkv", "movie.mkv", true},
		{"case insensitive", "CLIP.MP4", "CLIP.MP4", true},
		{"alias rewrite", "movie.mkv.mp4", "movie.mkv", true},
		{"webm alias", "show.webm.mp4", "show.webm", true},
		{"double mp4 not an alias", "clip.mp4.mp4", "clip.mp4.mp4", true},
		{"unlisted extension", "report.pdf", "report.pdf", false},
		{"unknown inner alias", "file.xyz.mp4", "file.xyz.mp4", true},
		{"no extension", "README", "README", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, handled := r.Resolve(tt.filename)
			assert.Equal(t, tt.wantHandled, handled)
			if handled {
				assert.Equal(t, tt.wantResolved, resolved)
			}
		})
	}
}

func TestResolverAliasDisabled(t *testing.T) {
	cfg := testMediaConfig()
	cfg.AliasRewrite = false
	r := NewMediaResolver(cfg)

	resolved, handled := r.Resolve("movie.mkv.mp4")
	assert.True(t, handled)
	assert.Equal(t, "movie.mkv.mp4", resolved)
}

func TestResolverContentTypeTableFirst(t *testing.T) {
	r := NewMediaResolver(testMediaConfig())

	assert.Equal(t, "video/x-matroska", r.ContentType("movie.mkv"))
	assert.Equal(t, "text/vtt", r.ContentType("subs.vtt"))

	// Not in the table, the platform database answers
	assert.Contains(t, r.ContentType("clip.mp4"), "video/mp4")

	assert.Equal(t, "application/octet-stream", r.ContentType("noext"))
}

func TestResolverContentTypeSystemFirst(t *testing.T) {
	cfg := testMediaConfig()
	cfg.PreferMIMETable = false
	cfg.MIMEOverrides["mp4"] = "application/custom"
	r := NewMediaResolver(cfg)

	// The platform database knows mp4, so the override loses
	assert.Contains(t, r.ContentType("clip.mp4"), "video/mp4")

	// mkv is typically unknown to the platform database, override wins
	assert.Equal(t, "video/x-matroska", r.ContentType("movie.mkv"))
}
