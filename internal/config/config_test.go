package config

import "testing"

func TestLoadAppliesQuotaDefaults(t *testing.T) {
	t.Setenv("STORAGE_QUOTA_BYTES", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("STORAGE_BACKEND", "")

	cfg := Load()
	if cfg.StorageQuotaBytes != 5<<30 {
		t.Fatalf("expected default 5 GiB quota, got %d", cfg.StorageQuotaBytes)
	}
	if cfg.MaxUploadBytes != 100<<20 {
		t.Fatalf("expected default 100 MiB upload cap, got %d", cfg.MaxUploadBytes)
	}
	if cfg.StorageBackend != "local" {
		t.Fatalf("expected default local backend, got %q", cfg.StorageBackend)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("STORAGE_QUOTA_BYTES", "1073741824")
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "drive-content")
	t.Setenv("API_RATE_LIMIT_RPS", "5")
	t.Setenv("NATS_SUBJECT", "files.analyze.staging")

	cfg := Load()
	if cfg.StorageQuotaBytes != 1<<30 {
		t.Fatalf("expected 1 GiB quota override, got %d", cfg.StorageQuotaBytes)
	}
	if cfg.StorageBackend != "s3" || cfg.S3Bucket != "drive-content" {
		t.Fatalf("expected s3 backend override, got %q/%q", cfg.StorageBackend, cfg.S3Bucket)
	}
	if cfg.APIRateLimitRPS != 5 {
		t.Fatalf("expected rate limit override, got %d", cfg.APIRateLimitRPS)
	}
	if cfg.NATSSubject != "files.analyze.staging" {
		t.Fatalf("expected subject override, got %q", cfg.NATSSubject)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("STORAGE_QUOTA_BYTES", "lots")
	t.Setenv("API_RATE_LIMIT_RPS", "fast")

	cfg := Load()
	if cfg.StorageQuotaBytes != 5<<30 {
		t.Fatalf("malformed quota must fall back to default, got %d", cfg.StorageQuotaBytes)
	}
	if cfg.APIRateLimitRPS != 50 {
		t.Fatalf("malformed rps must fall back to default, got %d", cfg.APIRateLimitRPS)
	}
}
