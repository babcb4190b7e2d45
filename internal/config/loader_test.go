package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/fairway/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.ArtifactPath, convey.ShouldEqual, "model/artifact.json")
				convey.So(cfg.IdempotencyCacheSize, convey.ShouldEqual, 10_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FAIRWAY_ADDR", ":8080")
			_ = os.Setenv("FAIRWAY_DATABASE_URL", "postgres://golf@localhost/golf")
			_ = os.Setenv("FAIRWAY_BASE_PRICE", "80.5")
			_ = os.Setenv("FAIRWAY_WEATHER_CACHE_TTL_SECONDS", "60")
			_ = os.Setenv("FAIRWAY_LOG_FORMAT", "json")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DatabaseURL, convey.ShouldEqual, "postgres://golf@localhost/golf")
				convey.So(cfg.BasePrice, convey.ShouldEqual, 80.5)
				convey.So(cfg.WeatherCacheTTLSeconds, convey.ShouldEqual, 60)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
artifact_path: /srv/fairway/model.json
redis_url: redis://localhost:6379/0
timezone: Europe/London
idempotency_cache_size: 500
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("FAIRWAY_CONFIG", tmpFile)
			_ = os.Setenv("FAIRWAY_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")                           // env
				convey.So(cfg.ArtifactPath, convey.ShouldEqual, "/srv/fairway/model.json") // file
				convey.So(cfg.RedisURL, convey.ShouldEqual, "redis://localhost:6379/0")    // file
				convey.So(cfg.Timezone, convey.ShouldEqual, "Europe/London")               // file
				convey.So(cfg.IdempotencyCacheSize, convey.ShouldEqual, 500)               // file
				convey.So(cfg.BasePrice, convey.ShouldEqual, 75)                           // default
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("FAIRWAY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("FAIRWAY_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("FAIRWAY_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "Addr")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("FAIRWAY_DB_MAX_CONNS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fairway.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, name := range []string{
		"FAIRWAY_CONFIG",
		"FAIRWAY_ADDR",
		"FAIRWAY_DATABASE_URL",
		"FAIRWAY_BASE_PRICE",
		"FAIRWAY_WEATHER_CACHE_TTL_SECONDS",
		"FAIRWAY_LOG_FORMAT",
		"FAIRWAY_DB_MAX_CONNS",
	} {
		_ = os.Unsetenv(name)
	}
}
