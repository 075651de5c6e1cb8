// shared/config/config.go
package config

import (
	"fmt"
	"net/url"

	"github.com/spf13/viper"
)

// CommonConfig holds the infrastructure endpoints shared by the console's
// optional sinks: the session database, the activity topic and the notice
// queue.
type CommonConfig struct {
	// Database (PostgreSQL) config
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string
	DB_HOST     string
	DB_PORT     string
	// Kafka config
	KAFKA_TOPIC  string
	KAFKA_BROKER string
	// RabbitMQ config
	RABBITMQ_USER     string
	RABBITMQ_PASSWORD string
	RABBITMQ_HOST     string
	RABBITMQ_PORT     string
	RABBITMQ_QUEUE    string
}

// SetCommonDefaults registers the shared keys on v so that AutomaticEnv and
// config files both resolve them.
func SetCommonDefaults(v *viper.Viper) {
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "tms")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("KAFKA_TOPIC", "tms.operator-activity")
	v.SetDefault("KAFKA_BROKER", "")
	v.SetDefault("RABBITMQ_USER", "guest")
	v.SetDefault("RABBITMQ_PASSWORD", "guest")
	v.SetDefault("RABBITMQ_HOST", "")
	v.SetDefault("RABBITMQ_PORT", "5672")
	v.SetDefault("RABBITMQ_QUEUE", "tms.notices")
}

// LoadCommonConfig reads the shared infrastructure config from v.
func LoadCommonConfig(v *viper.Viper) *CommonConfig {
	return &CommonConfig{
		DB_USER:     v.GetString("DB_USER"),
		DB_PASSWORD: v.GetString("DB_PASSWORD"),
		DB_HOST:     v.GetString("DB_HOST"),
		DB_PORT:     v.GetString("DB_PORT"),
		DB_NAME:     v.GetString("DB_NAME"),

		KAFKA_TOPIC:  v.GetString("KAFKA_TOPIC"),
		KAFKA_BROKER: v.GetString("KAFKA_BROKER"),

		RABBITMQ_USER:     v.GetString("RABBITMQ_USER"),
		RABBITMQ_PASSWORD: v.GetString("RABBITMQ_PASSWORD"),
		RABBITMQ_HOST:     v.GetString("RABBITMQ_HOST"),
		RABBITMQ_PORT:     v.GetString("RABBITMQ_PORT"),
		RABBITMQ_QUEUE:    v.GetString("RABBITMQ_QUEUE"),
	}
}

// GetDBURL formats the config into a PostgreSQL connection string
func (c *CommonConfig) GetDBURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB_USER, c.DB_PASSWORD),
		Host:     c.DB_HOST + ":" + c.DB_PORT,
		Path:     "/" + c.DB_NAME,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// GetRabbitMQURL formats the config into a RabbitMQ connection string
func (c *CommonConfig) GetRabbitMQURL() string {
	// default standard port if missing
	port := c.RABBITMQ_PORT
	if port == "" {
		port = "5672"
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		url.PathEscape(c.RABBITMQ_USER), url.PathEscape(c.RABBITMQ_PASSWORD), c.RABBITMQ_HOST, port)
}

// KafkaEnabled reports whether activity events have somewhere to go.
func (c *CommonConfig) KafkaEnabled() bool {
	return c.KAFKA_BROKER != "" && c.KAFKA_TOPIC != ""
}

// RabbitMQEnabled reports whether notices are forwarded to a queue.
func (c *CommonConfig) RabbitMQEnabled() bool {
	return c.RABBITMQ_HOST != ""
}
