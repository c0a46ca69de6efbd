/*
Package config provides configuration management for mediagate with
multi-source support.

Configuration is assembled from three sources with increasing precedence:
compiled-in defaults, a YAML file, and environment variables. Secrets
(object store credentials, Redis password) are expected through the
environment rather than the file.

Configuration file format:

	global:
	  log_level: INFO

	server:
	  listen_addr: ":8080"

	storage:
	  bucket: "media-archive"
	  region: "eu-central-1"
	  pool_size: 8

	media:
	  allowed_extensions: [mp4, mkv, webm, mp3, vtt, jpg, png]
	  mime_overrides:
	    mkv: video/x-matroska
	  prefer_mime_table: true
	  alias_rewrite: true
	  cache_max_age: 168h
	  negative_cache_ttl: 1h

	throttle:
	  daily_budget: "200GB"
	  window: 24h

	rate_limit:
	  burst:
	    limit: 100
	    window: 1m
	  daily:
	    limit: 50000
	    window: 24h
	    fallback_limit: 5000

	redis:
	  addr: "localhost:6379"

Environment variable mapping:

	MEDIAGATE_LOG_LEVEL="DEBUG"
	MEDIAGATE_LISTEN_ADDR=":9000"
	MEDIAGATE_S3_BUCKET="media-archive"
	MEDIAGATE_S3_ENDPOINT="http://localhost:9090"
	MEDIAGATE_REDIS_ADDR="redis:6379"
	MEDIAGATE_REDIS_PASSWORD="..."
	MEDIAGATE_DAILY_BUDGET="50GB"
	AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY

Validation runs after all sources are applied; a missing bucket, an empty
extension allow-list, a malformed size string, or inconsistent rate-limit
ceilings are rejected at startup.
*/
package config
