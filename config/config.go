package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string
	StoreDriver    string
	MongoURI       string
	MongoDB        string
	Transactions   bool
	JWTSecret      string
	TokenTTL       time.Duration
	BcryptCost     int
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	NATSURL        string
	AuthRatePerMin int
	LogLevel       string
	CORSOrigin     string
	TrustedProxies []string
}

// Load reads an optional .env file and then the process environment.
// It reports whether a .env file was found.
func Load() (Config, bool) {
	dotenv := godotenv.Load() == nil

	addr := envString("ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":8080"
		}
	}

	return Config{
		Addr:           addr,
		StoreDriver:    envString("STORE_DRIVER", "mongo"),
		MongoURI:       envString("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        envString("MONGO_DB", "sosmed"),
		Transactions:   envBool("MONGO_TRANSACTIONS", false),
		JWTSecret:      envString("JWT_SECRET", "dev-jwt-secret"),
		TokenTTL:       envDuration("TOKEN_TTL", time.Hour),
		BcryptCost:     envInt("BCRYPT_COST", 10),
		RedisAddr:      envString("REDIS_ADDR", ""),
		RedisPassword:  envString("REDIS_PASSWORD", ""),
		RedisDB:        envInt("REDIS_DB", 0),
		NATSURL:        envString("NATS_URL", ""),
		AuthRatePerMin: envInt("AUTH_RATE_PER_MIN", 20),
		LogLevel:       envString("LOG_LEVEL", "info"),
		CORSOrigin:     envString("CORS_ORIGIN", "*"),
		TrustedProxies: envList("TRUSTED_PROXIES"),
	}, dotenv
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envList splits a comma separated variable, dropping empty entries.
func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
