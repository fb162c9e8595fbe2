package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"    // time parses the duration-valued settings
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  The pickup-code and
// reservation windows are the design constants the core revolves
// around: RotateInterval must not exceed CodeTTL so no order is ever
// left with an expired, unrotated code for more than one tick.
type Config struct {
    Env            string        // application environment (e.g. "dev", "prod")
    Port           string        // HTTP port to listen on
    DBUser         string        // database username
    DBPass         string        // database password (optional)
    DBHost         string        // database host address
    DBPort         string        // database port number
    DBName         string        // database name
    JWTSecret      string        // secret used to sign JWTs
    AccessTTLMin   int           // access token time-to-live in minutes
    RefreshTTLDays int           // refresh token time-to-live in days
    BcryptCost     int           // bcrypt cost for password hashing
    CodeHashCost   int           // bcrypt cost for pickup-code hashing (lower: redemption scans many orders)
    CodeTTL        time.Duration // pickup-code validity window
    RotateInterval time.Duration // cadence of the code rotation scheduler
    ReservationTTL time.Duration // soft-hold lifetime
    RatingGrace    time.Duration // post-pickup window for feedback
    UploadDir      string        // directory for stored images
    UploadBaseURL  string        // public URL prefix for stored images
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
// The window/cadence settings carry defaults so a bare environment
// still yields a correct rotation setup.
func Load() Config {
    cfg := Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"),
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),
        CodeHashCost:   envInt("PICKUP_CODE_BCRYPT_COST", 6),
        CodeTTL:        envDur("PICKUP_CODE_TTL", 2*time.Minute),
        RotateInterval: envDur("PICKUP_CODE_ROTATE_INTERVAL", 30*time.Second),
        ReservationTTL: envDur("RESERVATION_TTL", 10*time.Minute),
        RatingGrace:    envDur("RATING_GRACE", 7*24*time.Hour),
        UploadDir:      getenv("UPLOAD_DIR", "uploads"),
        UploadBaseURL:  getenv("UPLOAD_BASE_URL", "/uploads"),
    }
    if cfg.RotateInterval > cfg.CodeTTL {
        log.Printf("config: rotate interval %s exceeds code ttl %s, clamping", cfg.RotateInterval, cfg.CodeTTL)
        cfg.RotateInterval = cfg.CodeTTL
    }
    return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

func envInt(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return def
}

func envDur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if d, err := time.ParseDuration(v); err == nil {
        return d
    }
    return def
}
