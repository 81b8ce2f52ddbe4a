package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds the application's configuration values.
type Config struct {
	AppName string `json:"appname"`
	AppEnv  string `json:"appenv"`
	AppPort uint16 `json:"appport"`
	GinMode string `json:"ginmode"`

	StoreBackend string `json:"store_backend"`
	DBDriver     string `json:"db_driver"`
	DBPath       string `json:"db_path"`
	DBHost       string `json:"dbhost"`
	DBPort       uint16 `json:"dbport"`
	DBName       string `json:"dbname"`
	DBUSER       string `json:"dbuser"`
	DBPass       string `json:"-"`
	MongoURI     string `json:"-"`
	MongoDB      string `json:"mongo_db"`
	DoctorSeed   string `json:"doctor_seed"`

	AdminEmail        string `json:"admin_email"`
	AdminPassword     string `json:"-"`
	AdminPasswordHash string `json:"-"`
	SecretKey         string `json:"-"`
	JWTSecret         string `json:"-"`
	TokenTTL          time.Duration

	NotifyProvider string `json:"notify_provider"`
	SendGridAPIKey string `json:"-"`
	FromEmail      string `json:"from_email"`
	SMTPHost       string `json:"smtp_host"`
	SMTPPort       uint16 `json:"smtp_port"`
	SMTPUsername   string `json:"smtp_username"`
	SMTPPassword   string `json:"-"`
	NotifyTimeout  time.Duration

	LoginRateLimit  int
	LoginRateWindow time.Duration

	StaticDir      string   `json:"static_dir"`
	GeoIPPath      string   `json:"geoip_path"`
	GeoIPURL       string   `json:"geoip_url"`
	AllowedOrigins []string `json:"allowed_origins"`
}

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		// A missing .env is fine; the process environment still applies.
		if err := godotenv.Load(); err != nil {
			log.Debug().Err(err).Msg("no .env file loaded")
		}
		config = fromEnv()
	})
	return config
}

// ResetConfigForTest drops the cached config so the next LoadConfig re-reads the environment.
func ResetConfigForTest() {
	config = nil
	once = sync.Once{}
}

func fromEnv() *Config {
	appPort := envUint16("APPPORT", 10000)
	if appPort == 0 {
		appPort = 10000
	}

	return &Config{
		AppName: envString("APPNAME", "Hospital Booking"),
		AppEnv:  envString("APPENV", "development"),
		AppPort: appPort,
		GinMode: envString("GINMODE", "debug"),

		StoreBackend: strings.ToLower(envString("STORE_BACKEND", "sql")),
		DBDriver:     strings.ToLower(envString("DB_DRIVER", "sqlite")),
		DBPath:       envString("DB_PATH", "hospital.db"),
		DBHost:       os.Getenv("DBHOST"),
		DBPort:       envUint16("DBPORT", 0),
		DBName:       os.Getenv("DBNAME"),
		DBUSER:       os.Getenv("DBUSER"),
		DBPass:       os.Getenv("DBPASS"),
		MongoURI:     os.Getenv("MONGO_URI"),
		MongoDB:      envString("MONGO_DB", "hospital"),
		DoctorSeed:   envString("DOCTOR_SEED", "standard"),

		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		SecretKey:         os.Getenv("SECRET_KEY"),
		JWTSecret:         os.Getenv("JWTSECRET"),
		TokenTTL:          envDuration("TOKEN_TTL", 12*time.Hour),

		NotifyProvider: strings.ToLower(os.Getenv("NOTIFY_PROVIDER")),
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		FromEmail:      os.Getenv("FROM_EMAIL"),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       envUint16("SMTP_PORT", 587),
		SMTPUsername:   os.Getenv("SMTP_USERNAME"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		NotifyTimeout:  envDuration("NOTIFY_TIMEOUT", 10*time.Second),

		LoginRateLimit:  envInt("LOGIN_RATE_LIMIT", 5),
		LoginRateWindow: envDuration("LOGIN_RATE_WINDOW", 15*time.Minute),

		StaticDir:      envString("STATIC_DIR", "static"),
		GeoIPPath:      os.Getenv("GEOIP_DB_PATH"),
		GeoIPURL:       os.Getenv("GEOIP_DB_URL"),
		AllowedOrigins: envList("ALLOWED_ORIGINS"),
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envUint16(key string, def uint16) uint16 {
	v, err := strconv.ParseUint(os.Getenv(key), 10, 16)
	if err != nil {
		return def
	}
	return uint16(v)
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// envDuration accepts Go durations ("90s") or a bare number of seconds.
func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Dialector returns the gorm dialector for the configured SQL driver.
func (c *Config) Dialector() (gorm.Dialector, error) {
	switch c.DBDriver {
	case "", "sqlite":
		return sqlite.Open(c.DBPath), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", c.DBUSER, c.DBPass, c.DBHost, c.DBPort, c.DBName)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", c.DBHost, c.DBPort, c.DBUSER, c.DBPass, c.DBName)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
}

// ConnectDatabase opens the configured SQL database. With APPENV=test it uses
// a private in-memory sqlite database instead.
func ConnectDatabase() (*gorm.DB, error) {
	cfg := LoadConfig()

	var (
		dialector gorm.Dialector
		err       error
	)
	if cfg.AppEnv == "test" || os.Getenv("APPENV") == "test" {
		dialector = sqlite.Open("file::memory:")
	} else {
		dialector, err = cfg.Dialector()
		if err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	if dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite serializes writers; one connection also keeps :memory: databases alive
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}
