// Package config resolves imgsync settings from the environment and an
// optional .env file. Command-line flags override these values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/AnyUserName/imgsync/internal/mirror"
	"github.com/AnyUserName/imgsync/internal/profile"
)

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

type Config struct {
	CatalogPath    string
	ImagesDir      string
	URLPrefix      string
	Profile        string
	Quality        int
	Persist        string
	HTTPTimeout    time.Duration
	ConnectTimeout time.Duration
	MenuCSV        string
	Pexels         PexelsConfig
	Mirror         mirror.Config
}

type PexelsConfig struct {
	APIKey  string
	BaseURL string
	Delay   time.Duration
}

// Load reads envFile (a missing file is fine) and then the process
// environment, which wins over the file.
func Load(envFile string) (*Config, error) {
	fileEnv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileEnv = m
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	get := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(fileEnv[key])
	}

	cfg := &Config{
		CatalogPath: firstNonEmpty(get("IMGSYNC_CATALOG"), "public/data/imageMap.json"),
		ImagesDir:   firstNonEmpty(get("IMGSYNC_IMAGES_DIR"), "public/images"),
		URLPrefix:   firstNonEmpty(get("IMGSYNC_URL_PREFIX"), "/images/"),
		Profile:     firstNonEmpty(get("IMGSYNC_PROFILE"), profile.DefaultName),
		Persist:     firstNonEmpty(get("IMGSYNC_PERSIST"), "progress"),
		MenuCSV:     firstNonEmpty(get("IMGSYNC_MENU_CSV"), "docs/menu_items.csv"),
		Pexels: PexelsConfig{
			APIKey:  get("PEXELS_API_KEY"),
			BaseURL: firstNonEmpty(get("PEXELS_BASE_URL"), "https://api.pexels.com/v1"),
		},
		Mirror: mirror.Config{
			Endpoint:  get("IMGSYNC_S3_ENDPOINT"),
			Region:    firstNonEmpty(get("IMGSYNC_S3_REGION"), "us-east-1"),
			AccessKey: get("IMGSYNC_S3_ACCESS_KEY"),
			SecretKey: get("IMGSYNC_S3_SECRET_KEY"),
			Bucket:    get("IMGSYNC_S3_BUCKET"),
			Prefix:    firstNonEmpty(get("IMGSYNC_S3_PREFIX"), "images"),
		},
	}

	var err error
	if cfg.Quality, err = intVar(get, "IMGSYNC_QUALITY", 0); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = durationVar(get, "IMGSYNC_HTTP_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.ConnectTimeout, err = durationVar(get, "IMGSYNC_CONNECT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Pexels.Delay, err = durationVar(get, "PEXELS_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.Mirror.UseSSL, err = boolVar(get, "IMGSYNC_S3_USE_SSL", true); err != nil {
		return nil, err
	}
	return cfg, nil
}

func intVar(get func(string) string, key string, def int) (int, error) {
	raw := get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func durationVar(get func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := get(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func boolVar(get func(string) string, key string, def bool) (bool, error) {
	raw := get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
