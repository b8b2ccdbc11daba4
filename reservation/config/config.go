package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Astemirdum/booking-service/pkg/auth"
	"github.com/Astemirdum/booking-service/pkg/circuit_breaker"
	"github.com/Astemirdum/booking-service/pkg/database"
	"github.com/Astemirdum/booking-service/pkg/kafka"
	"github.com/Astemirdum/booking-service/pkg/logger"
	"github.com/Astemirdum/booking-service/pkg/rabbitmq"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"RESERVATION_HTTP_HOST"`
	Port         string        `yaml:"port" envconfig:"RESERVATION_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
}

type Session struct {
	TTL   time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	Redis auth.RedisConfig
}

type Events struct {
	// Broker is one of none, kafka or amqp.
	Broker  string `envconfig:"EVENTS_BROKER" default:"none"`
	Breaker circuit_breaker.Config
}

type Config struct {
	Server   HTTPServer  `yaml:"server"`
	Database database.DB `yaml:"db"`
	Log      logger.Log  `yaml:"log"`
	Auth     auth.Config
	Session  Session
	Events   Events
	Kafka    kafka.Config
	AMQP     rabbitmq.Config
	// TimeZone interprets submitted dates and times; empty means the host zone.
	TimeZone string `envconfig:"TIME_ZONE"`
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return &cfg
}

func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}

func printConfig(cfg Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
