package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoadCommonConfig_Defaults(t *testing.T) {
	v := viper.New()
	SetCommonDefaults(v)
	c := LoadCommonConfig(v)

	assert.False(t, c.KafkaEnabled())
	assert.False(t, c.RabbitMQEnabled())
	assert.Equal(t, "tms.notices", c.RABBITMQ_QUEUE)
}

func TestURLs(t *testing.T) {
	c := &CommonConfig{
		DB_USER: "tms", DB_PASSWORD: "p@ss", DB_HOST: "db", DB_PORT: "5432", DB_NAME: "tms",
		RABBITMQ_USER: "guest", RABBITMQ_PASSWORD: "guest", RABBITMQ_HOST: "mq",
	}
	assert.Equal(t, "postgres://tms:p%40ss@db:5432/tms?sslmode=disable", c.GetDBURL())
	assert.Equal(t, "amqp://guest:guest@mq:5672/", c.GetRabbitMQURL())
}
