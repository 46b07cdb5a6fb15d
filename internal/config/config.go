package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Gateways whose parameters are read from the environment. Every variable
// prefixed with the upper-cased gateway name becomes a named parameter:
// PSBANK_GATEWAY_KEY -> "gateway.key".
var GatewayNames = []string{"psbank", "qiwi", "robokassa"}

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string
	SecretKey  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PublicBaseURL string
	Languages     []string
	Timezone      string
	RatesRefresh  string

	Gateways map[string]GatewayParams
}

// GatewayParams is the opaque named configuration of one gateway.
type GatewayParams map[string]string

// Get returns the named parameter or an empty string.
func (p GatewayParams) Get(name string) string {
	return p[name]
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:        os.Getenv("DB_HOST"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBPort:        os.Getenv("DB_PORT"),
		AppPort:       getEnv("APP_PORT", "8080"),
		AppEnv:        os.Getenv("APP_ENV"),
		SecretKey:     os.Getenv("SECRET_KEY"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		Languages:     splitList(getEnv("LANGUAGES", "ru,en")),
		Timezone:      getEnv("TIMEZONE", "Local"),
		RatesRefresh:  getEnv("RATES_REFRESH", "@every 10m"),
		Gateways:      loadGatewayParams(os.Environ()),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func loadGatewayParams(environ []string) map[string]GatewayParams {
	out := make(map[string]GatewayParams, len(GatewayNames))
	for _, name := range GatewayNames {
		out[name] = GatewayParams{}
	}

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		for _, name := range GatewayNames {
			prefix := strings.ToUpper(name) + "_"
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			param := strings.ToLower(strings.TrimPrefix(key, prefix))
			out[name][strings.ReplaceAll(param, "_", ".")] = value
		}
	}

	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
