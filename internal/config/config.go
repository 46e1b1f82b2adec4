package config

import (
	"errors"
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"net/url"
	"time"
)

var (
	ErrConfigNotLoaded = errors.New("config not loaded")
)

type Environment string

const (
	Production  Environment = "prod"
	Development Environment = "dev"
)

func (e *Environment) SetValue(s string) error {
	*e = Environment(s)
	if *e != Production && *e != Development {
		return configNotLoadedErr(`only "prod" and "dev" environments are allowed`)
	}
	return nil
}

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMemory   Driver = "memory"
)

func (d *Driver) SetValue(s string) error {
	*d = Driver(s)
	if *d != DriverPostgres && *d != DriverMemory {
		return configNotLoadedErr(`only "postgres" and "memory" drivers are allowed`)
	}
	return nil
}

type Config struct {
	App struct {
		Env Environment `yaml:"env" env:"ENV" env-required:""`
	} `yaml:"app" env-prefix:"APP_" env-required:""`

	Server struct {
		Host string `yaml:"host" env:"HOST" env-default:"localhost"`
		Port int    `yaml:"port" env:"PORT" env-default:"8080"`
	} `yaml:"server" env-prefix:"SERVER_"`

	DB struct {
		Driver Driver `yaml:"driver" env:"DRIVER" env-default:"postgres"`
		DSN    string `yaml:"dsn" env:"DSN"`
	} `yaml:"db" env-prefix:"DB_"`

	Dependencies struct {
		TrainerBaseURL string        `yaml:"trainer_base_url" env:"TRAINER_BASE_URL" env-required:""`
		TeamBaseURL    string        `yaml:"team_base_url" env:"TEAM_BASE_URL" env-required:""`
		MemberBaseURL  string        `yaml:"member_base_url" env:"MEMBER_BASE_URL" env-required:""`
		Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT" env-default:"3s"`
	} `yaml:"dependencies" env-prefix:"DEPENDENCIES_" env-required:""`

	Seed struct {
		Demo bool `yaml:"demo" env:"DEMO" env-default:"false"`
	} `yaml:"seed" env-prefix:"SEED_"`
}

// Validate checks values read from the file and settings that depend on each other.
func (c *Config) Validate() error {
	if err := c.App.Env.SetValue(string(c.App.Env)); err != nil {
		return err
	}
	if err := c.DB.Driver.SetValue(string(c.DB.Driver)); err != nil {
		return err
	}
	if c.DB.Driver == DriverPostgres && c.DB.DSN == "" {
		return configNotLoadedErr("db.dsn is required for the postgres driver")
	}

	urls := map[string]string{
		"trainer_base_url": c.Dependencies.TrainerBaseURL,
		"team_base_url":    c.Dependencies.TeamBaseURL,
		"member_base_url":  c.Dependencies.MemberBaseURL,
	}
	for name, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return configNotLoadedErr("dependencies.%s must be an absolute url, got %q", name, raw)
		}
	}

	if c.Dependencies.Timeout <= 0 {
		return configNotLoadedErr("dependencies.timeout must be positive")
	}
	return nil
}

func Load(filePath string) (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadConfig(filePath, cfg); err != nil {
		return nil, configNotLoadedErr("config not loaded: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad(filePath string) *Config {
	cfg, err := Load(filePath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func configNotLoadedErr(format string, args ...any) error {
	return errors.Join(fmt.Errorf(format, args...), ErrConfigNotLoaded)
}
