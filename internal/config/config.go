package config

import (
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ProcessingConfig holds the knobs for the file classifier and processors.
type ProcessingConfig struct {
	// TempDir is the scratch area for processor staging; empty means os.TempDir.
	TempDir string
	// PdftoppmBin is the external renderer used to rasterize PDF pages.
	PdftoppmBin string
	// RenderDPI is the target resolution for rendered PDF pages.
	RenderDPI int
	// JPEGQuality applies to rendered pages and recompressed images.
	JPEGQuality int
	// ImageMaxWidth/ImageMaxHeight bound the box images are downscaled into.
	ImageMaxWidth  int
	ImageMaxHeight int
}

// PolicyConfig configures the static schema/type-access policy.
type PolicyConfig struct {
	// DefaultSchema is applied to dossiers created without an explicit schema.
	DefaultSchema string
	// AllowedExtensions is the extension allowlist applied when no
	// per-(schema, type) rule is configured.
	AllowedExtensions []string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost    string
	Port       string
	Database   DatabaseConfig
	MinIO      MinIOConfig
	Processing ProcessingConfig
	Policy     PolicyConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Processing: ProcessingConfig{
			TempDir:        getEnv("STORAGE_TMP_DIR", ""),
			PdftoppmBin:    getEnv("PDFTOPPM_BIN", "pdftoppm"),
			RenderDPI:      getEnvInt("PDF_RENDER_DPI", 150),
			JPEGQuality:    getEnvInt("JPEG_QUALITY", 85),
			ImageMaxWidth:  getEnvInt("IMAGE_MAX_WIDTH", 1600),
			ImageMaxHeight: getEnvInt("IMAGE_MAX_HEIGHT", 1600),
		},
		Policy: PolicyConfig{
			DefaultSchema: getEnv("DEFAULT_SCHEMA", "default"),
			AllowedExtensions: getEnvList("POLICY_ALLOWED_EXTENSIONS",
				"pdf,jpg,jpeg,png,gif,bmp,tif,tiff,webp,doc,docx,xls,xlsx,ppt,pptx,odt,ods,txt,csv,zip"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvList(key, def string) []string {
	raw := getEnv(key, def)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(strings.ToLower(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
