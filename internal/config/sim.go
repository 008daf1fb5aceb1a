package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type SimConfig struct {
	DecayInterval time.Duration `env:"DECAY_INTERVAL" envDefault:"5s"`
	RentInterval  time.Duration `env:"RENT_INTERVAL" envDefault:"1s"`
	FlushInterval time.Duration `env:"FLUSH_INTERVAL" envDefault:"10s"`

	// TokenPriceFiat is the fiat value of one token, used by the
	// exchange and the profit projection.
	TokenPriceFiat float64 `env:"TOKEN_PRICE_FIAT" envDefault:"1.0"`
}

func LoadSim() (SimConfig, error) {
	var cfg SimConfig
	err := env.Parse(&cfg)
	return cfg, err
}
