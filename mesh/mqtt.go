package mesh

import (
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// resolveMQTT merges MQTT_* environment variables over the config file
// settings. Environment values win.
func resolveMQTT(cfg MQTTConfig) MQTTConfig {
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		cfg.Broker = v
	}
	if v := os.Getenv("MQTT_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "colormesh"
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("MQTT_PUBLISH_PREFIX"); v != "" {
		cfg.PublishPrefix = v
	}
	return cfg
}

// NewMQTTOptions builds paho client options from the resolved settings
func NewMQTTOptions(cfg MQTTConfig) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("[MQTT] connection interrupted (%v), auto-reconnect will retry", err)
	})
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Println("[MQTT] connected")
	})
	return opts
}

// ConnectMQTT connects to the configured broker and returns the client along
// with the effective settings. When no broker is configured MQTT is disabled
// and a nil client is returned with no error.
func ConnectMQTT(cfg MQTTConfig, timeout time.Duration) (mqtt.Client, MQTTConfig, error) {
	cfg = resolveMQTT(cfg)
	if cfg.Broker == "" {
		log.Println("[MQTT] disabled: MQTT_BROKER not set")
		return nil, cfg, nil
	}

	client := mqtt.NewClient(NewMQTTOptions(cfg))
	log.Printf("[MQTT] connecting to %s as %s...", cfg.Broker, cfg.ClientID)

	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, cfg, fmt.Errorf("connecting to %s: timeout after %v", cfg.Broker, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, cfg, fmt.Errorf("connecting to %s: %w", cfg.Broker, err)
	}
	return client, cfg, nil
}
