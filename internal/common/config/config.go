package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Postgres struct {
		URL          string        `env:"DATABASE_URL,required"`
		MaxConns     int32         `env:"DB_MAX_CONNS" envDefault:"10"`
		MinConns     int32         `env:"DB_MIN_CONNS" envDefault:"2"`
		ConnLifetime time.Duration `env:"DB_CONN_LIFETIME" envDefault:"1h"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	JWT struct {
		Secret string        `env:"JWT_SECRET_KEY" envDefault:"devjwt"`
		TTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
	}

	Admin struct {
		Username   string        `env:"ADMIN_USERNAME,required"`
		Password   string        `env:"ADMIN_PASSWORD,required"`
		SessionTTL time.Duration `env:"ADMIN_SESSION_TTL" envDefault:"12h"`
	}

	Vonage struct {
		APIKey    string `env:"VONAGE_API_KEY" envDefault:""`
		APISecret string `env:"VONAGE_API_SECRET" envDefault:""`
		From      string `env:"VONAGE_FROM" envDefault:"PolyGreen"`
	}

	OTP struct {
		TTL           time.Duration `env:"OTP_TTL" envDefault:"5m"`
		SendRateLimit time.Duration `env:"OTP_SEND_RATE_LIMIT" envDefault:"1m"`
	}

	// Deposit crediting rate applied when the machine does not supply one.
	PointsPerBottle int64 `env:"POINTS_PER_BOTTLE" envDefault:"10"`
}

func Load() (*Config, error) {
	// A missing .env file is fine; in production the variables are set
	// directly in the environment.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
