package config

import (
	"errors"
	"testing"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_MODE", "dev")
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("STORAGE_DRIVER", "local")
	t.Setenv("JWT_EXPIRY_DAYS", "")
	t.Setenv("UPLOAD_PUBLIC_URL", "")
	t.Setenv("UPLOAD_MAX_BYTES", "")
	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("REDIS_URL", "")
}

func TestFromEnvDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.JWT.ExpiryDays != 7 {
		t.Errorf("expiry days = %d, want 7", cfg.JWT.ExpiryDays)
	}
	if cfg.Storage.PublicURL != "/uploads" || cfg.Storage.MaxBytes != 5*1024*1024 {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Cookie.Secure {
		t.Error("cookie is secure in dev by default")
	}
	if cfg.GetAllowedOrigins() != "*" {
		t.Errorf("origins = %q, want *", cfg.GetAllowedOrigins())
	}
}

func TestFromEnvRequiresJWTSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "  ")

	_, err := FromEnv()
	if !errors.Is(err, ErrMissingJWTSecret) {
		t.Fatalf("FromEnv() error = %v, want ErrMissingJWTSecret", err)
	}
}

func TestFromEnvValidation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"short secret in prod", "APP_MODE", "prod"},
		{"bad mode", "APP_MODE", "staging"},
		{"bad db driver", "DB_DRIVER", "oracle"},
		{"bad storage driver", "STORAGE_DRIVER", "ftp"},
		{"s3 without bucket", "STORAGE_DRIVER", "s3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv("S3_BUCKET", "")
			t.Setenv(tt.key, tt.val)
			if _, err := FromEnv(); err == nil {
				t.Error("FromEnv() error = nil")
			}
		})
	}
}

func TestS3Prefix(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		want    string
		wantErr bool
	}{
		{"default", "", "documents", false},
		{"custom", "/medirelay/docs/", "medirelay/docs", false},
		{"bucket root", "/", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv("STORAGE_DRIVER", "s3")
			t.Setenv("S3_BUCKET", "medirelay-uploads")
			t.Setenv("S3_PUBLIC_URL", "")
			t.Setenv("S3_PREFIX", tt.prefix)

			cfg, err := FromEnv()
			if tt.wantErr {
				if err == nil {
					t.Error("FromEnv() error = nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("FromEnv() error = %v", err)
			}
			if cfg.Storage.S3Prefix != tt.want {
				t.Errorf("prefix = %q, want %q", cfg.Storage.S3Prefix, tt.want)
			}
		})
	}
}

func TestProdCookieSecure(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_MODE", "prod")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if !cfg.Cookie.Secure {
		t.Error("cookie not secure in prod")
	}
	if cfg.GetAllowedOrigins() == "*" {
		t.Error("wildcard origin in prod")
	}
}
