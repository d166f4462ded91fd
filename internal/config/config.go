package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/valyala/fastjson"
	"go.uber.org/multierr"

	"github.com/CRDigitalAndMining/go-service-template/internal/logging"
)

const (
	defaultTitle          = "Go Service"
	defaultVersion        = "0.1.0"
	defaultAPIPrefix      = "/api/v1"
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Settings aggregates the typed application settings resolved from the
// layered env-file sources. Precedence: override file > base file > defaults.
type Settings struct {
	IsLocal bool
	Debug   bool

	Title       string
	Summary     string
	Description string
	Version     string
	APIPrefix   string

	AllowedHosts []string

	Port           string
	RateLimitRPS   float64
	RateLimitBurst int

	// ConnectionString identifies the remote telemetry endpoint. Opaque to
	// this package; required only when IsLocal is false.
	ConnectionString string
}

// Sources names the two layered KEY=VALUE files consumed by Load.
// A missing file contributes nothing to the merge.
type Sources struct {
	Base     string
	Override string
}

// DefaultSources returns the conventional env-file pair.
func DefaultSources() Sources {
	return Sources{Base: ".env", Override: ".env.local"}
}

// Load resolves Settings by merging the override source over the base source
// over the declared defaults, field by field. Conversion runs over the fully
// merged set and every failing field is reported; a single failure means no
// Settings value is handed out at all.
func Load(src Sources) (Settings, error) {
	merged, err := mergeSources(src)
	if err != nil {
		return Settings{}, err
	}

	s := defaultSettings()

	errs := multierr.Combine(
		setBool(merged, "IS_LOCAL", &s.IsLocal),
		setBool(merged, "DEBUG", &s.Debug),
		setString(merged, "TITLE", &s.Title),
		setString(merged, "SUMMARY", &s.Summary),
		setString(merged, "DESCRIPTION", &s.Description),
		setString(merged, "VERSION", &s.Version),
		setString(merged, "API_PREFIX", &s.APIPrefix),
		setStringList(merged, "ALLOWED_HOSTS", &s.AllowedHosts),
		setString(merged, "PORT", &s.Port),
		setFloat(merged, "RATE_LIMIT_RPS", &s.RateLimitRPS),
		setInt(merged, "RATE_LIMIT_BURST", &s.RateLimitBurst),
		setString(merged, "APPLICATIONINSIGHTS_CONNECTION_STRING", &s.ConnectionString),
	)
	if errs != nil {
		return Settings{}, errs
	}

	if !s.IsLocal && strings.TrimSpace(s.ConnectionString) == "" {
		return Settings{}, &ValidationError{
			Field:  "APPLICATIONINSIGHTS_CONNECTION_STRING",
			Reason: "required when IS_LOCAL is false",
		}
	}

	return s, nil
}

// LogMode maps the resolved settings onto a logger mode so that callers never
// branch on IS_LOCAL themselves.
func (s Settings) LogMode() logging.Mode {
	if s.IsLocal {
		return logging.ModeLocal
	}
	return logging.ModeRemote
}

func defaultSettings() Settings {
	return Settings{
		IsLocal:        true,
		Debug:          false,
		Title:          defaultTitle,
		Version:        defaultVersion,
		APIPrefix:      defaultAPIPrefix,
		AllowedHosts:   []string{"*"},
		Port:           defaultPort,
		RateLimitRPS:   defaultRateLimitRPS,
		RateLimitBurst: defaultRateLimitBurst,
	}
}

// mergeSources reads both env files and merges them key by key, later
// sources winning.
func mergeSources(src Sources) (map[string]string, error) {
	merged := make(map[string]string)
	for _, path := range []string{src.Base, src.Override} {
		if path == "" {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read settings file %s: %w", path, err)
		}
		for key, value := range values {
			merged[key] = value
		}
	}
	return merged, nil
}

func setBool(values map[string]string, key string, dst *bool) error {
	raw, ok := values[key]
	if !ok {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		*dst = true
	case "false", "0", "no":
		*dst = false
	default:
		return &ValidationError{Field: key, Value: raw, Reason: "expected true/false, 1/0, or yes/no"}
	}
	return nil
}

func setString(values map[string]string, key string, dst *string) error {
	if raw, ok := values[key]; ok {
		*dst = raw
	}
	return nil
}

func setInt(values map[string]string, key string, dst *int) error {
	raw, ok := values[key]
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return &ValidationError{Field: key, Value: raw, Reason: "expected an integer"}
	}
	*dst = value
	return nil
}

func setFloat(values map[string]string, key string, dst *float64) error {
	raw, ok := values[key]
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return &ValidationError{Field: key, Value: raw, Reason: "expected a number"}
	}
	*dst = value
	return nil
}

func setStringList(values map[string]string, key string, dst *[]string) error {
	raw, ok := values[key]
	if !ok {
		return nil
	}
	list, err := parseStringList(raw)
	if err != nil {
		return &ValidationError{Field: key, Value: raw, Reason: err.Error()}
	}
	*dst = list
	return nil
}

// parseStringList accepts a JSON array of strings and nothing else.
// Comma-separated bare values are a conversion error, not a convenience.
func parseStringList(raw string) ([]string, error) {
	value, err := fastjson.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("expected a JSON array of strings")
	}
	items, err := value.Array()
	if err != nil {
		return nil, fmt.Errorf("expected a JSON array of strings")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		b, err := item.StringBytes()
		if err != nil {
			return nil, fmt.Errorf("array elements must be strings")
		}
		out = append(out, string(b))
	}
	return out, nil
}
