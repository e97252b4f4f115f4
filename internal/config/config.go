package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
)

// Sources holds the location of every input dataset. A location is a local
// path, a file://, http(s):// or s3://bucket/key URI.
type Sources struct {
	Boundaries string
	Social     string
	Fire       string
	Clay       string
	Water      string
	Cavities   string
	Movements  string
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	DepartmentCode    string
	FireWindow        domain.FireWindow
	ProximityRadiusKm float64
	Stations          []domain.Station
	FetchTimeout      time.Duration

	Sources Sources

	// S3 source configuration.
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	currentYear, err := parsePositiveInt("FIRE_CURRENT_YEAR", "2024")
	if err != nil {
		return nil, err
	}
	windowYears, err := parsePositiveInt("FIRE_WINDOW_YEARS", "10")
	if err != nil {
		return nil, err
	}

	radius, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("PROXIMITY_RADIUS_KM", "15"), 64)
	if err != nil || radius <= 0 {
		return nil, errors.New("invalid PROXIMITY_RADIUS_KM")
	}

	stations, err := loadStations(os.Getenv("STATIONS_FILE"))
	if err != nil {
		return nil, err
	}

	pathStyle := false
	if v := os.Getenv("S3_PATH_STYLE"); v != "" {
		pathStyle, err = strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid S3_PATH_STYLE")
		}
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DepartmentCode:    domain.NormalizeCode(sharedcfg.EnvOrDefault("DEPARTMENT_CODE", "33")),
		FireWindow:        domain.FireWindow{CurrentYear: currentYear, Years: windowYears},
		ProximityRadiusKm: radius,
		Stations:          stations,
		FetchTimeout:      fetchTimeout,

		Sources: Sources{
			Boundaries: sharedcfg.EnvOrDefault("SOURCE_BOUNDARIES", "data/communes-gironde.json"),
			Social:     sharedcfg.EnvOrDefault("SOURCE_SOCIAL", "data/filosofi_gironde.csv"),
			Fire:       sharedcfg.EnvOrDefault("SOURCE_FIRE", "data/NewIncendies.csv"),
			Clay:       sharedcfg.EnvOrDefault("SOURCE_CLAY", "data/ri_alearga_s.csv"),
			Water:      sharedcfg.EnvOrDefault("SOURCE_WATER", "data/Vigicrues_Hauteurs_O972001001.csv"),
			Cavities:   sharedcfg.EnvOrDefault("SOURCE_CAVITIES", "data/cavite_33.csv"),
			Movements:  sharedcfg.EnvOrDefault("SOURCE_MOVEMENTS", "data/mvt_dptList_33.csv"),
		},

		S3Region:    sharedcfg.EnvOrDefault("S3_REGION", "eu-west-3"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3PathStyle: pathStyle,
	}

	if cfg.DepartmentCode == "" {
		return nil, errors.New("DEPARTMENT_CODE is required")
	}
	if strings.TrimSpace(cfg.Sources.Boundaries) == "" {
		return nil, errors.New("SOURCE_BOUNDARIES is required")
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key, def string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, def))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func loadStations(path string) ([]domain.Station, error) {
	if path == "" {
		return domain.DefaultStations, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("STATIONS_FILE: %w", err)
	}
	defer f.Close()
	stations, err := domain.ParseStations(f)
	if err != nil {
		return nil, fmt.Errorf("STATIONS_FILE: %w", err)
	}
	return stations, nil
}
