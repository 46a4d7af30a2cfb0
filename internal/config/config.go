// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env        string `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	Mongo      MongoConnection `yaml:"mongo"`
	Redis      RedisConnection `yaml:"redis_connection"`
	RabbitMQ   RabbitMQ        `yaml:"rabbitmq"`
	RevenueCat RevenueCat      `yaml:"revenuecat"`
	AuditLog   AuditLog        `yaml:"audit_log"`
	Cache      CacheTTL        `yaml:"cache"`
	JWTToken   `yaml:"jwttoken"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimit   float64       `yaml:"rate_limit" env-default:"20"`
	RateBurst   int           `yaml:"rate_burst" env-default:"40"`
}

// MongoConnection структура для подключения к MongoDB
type MongoConnection struct {
	URI            string        `yaml:"uri" env:"MONGO_URI" env-required:"true"`
	Database       string        `yaml:"database" env:"MONGO_DATABASE" env-default:"boost_admin"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env-default:"10s"`
	MigrationsPath string        `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает кэш.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitMQ настройки публикации событий аудита. Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange   string        `yaml:"exchange" env-default:"audit"`
	MaxRetries int           `yaml:"max_retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// RevenueCat настройки клиента биллинг-провайдера.
type RevenueCat struct {
	APIKey       string        `yaml:"api_key" env:"REVENUECAT_API_KEY"`
	ProjectID    string        `yaml:"project_id" env:"REVENUECAT_PROJECT_ID"`
	BaseURL      string        `yaml:"base_url" env-default:"https://api.revenuecat.com/v2"`
	Timeout      time.Duration `yaml:"timeout" env-default:"5s"`
	MaxRedirects int           `yaml:"max_redirects" env-default:"5"`
}

// AuditLog настройки хранения журнала аудита.
type AuditLog struct {
	RetentionDays int    `yaml:"retention_days" env:"AUDIT_RETENTION_DAYS" env-default:"90"`
	SweepSchedule string `yaml:"sweep_schedule" env-default:"0 3 * * *"`
	SweepOnStart  bool   `yaml:"sweep_on_start"`
}

// CacheTTL время жизни закэшированных данных.
type CacheTTL struct {
	Settings time.Duration `yaml:"settings" env-default:"10m"`
	Catalog  time.Duration `yaml:"catalog" env-default:"5m"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// MustLoad загружает конфиг из файла, путь к которому задан в CONFIG_PATH.
// Переменные окружения переопределяют значения из файла.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг по указанному пути.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file: %s - does not exist", configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Mongo:\n"+
			"  Database: %s\n"+
			"  ConnectTimeout: %s\n"+
			"Redis:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"RabbitMQ:\n"+
			"  Enabled: %t\n"+
			"  Exchange: %s\n"+
			"RevenueCat:\n"+
			"  Configured: %t\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"AuditLog:\n"+
			"  RetentionDays: %d\n"+
			"  SweepSchedule: %s\n",
		c.Env,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.Mongo.Database,
		c.Mongo.ConnectTimeout,
		c.Redis.AddressRedis,
		c.Redis.DB,
		c.RabbitMQ.URL != "",
		c.RabbitMQ.Exchange,
		c.RevenueCat.APIKey != "",
		c.RevenueCat.BaseURL,
		c.RevenueCat.Timeout,
		c.AuditLog.RetentionDays,
		c.AuditLog.SweepSchedule,
	)
}
