package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries everything main needs to wire the service. Values come from
// environment variables with local-dev defaults, same as the other services.
type Config struct {
	Port string

	BackendBaseURL string
	GatewayBaseURL string

	ChainRPCURL     string
	PaymentContract string
	Recipient       string

	WalletProvider     string // "connector", "social" or "" (crypto disabled)
	WalletConnectorURL string
	SocialWalletURL    string
	SocialWalletToken  string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	SessionTTL    time.Duration

	KafkaBrokers      []string
	EventsTopic       string
	ConfirmationTopic string
	ConsumerGroup     string

	JWTSecret       string
	SessionTokenTTL time.Duration
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8084"),

		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:9000/api/v1"),
		GatewayBaseURL: getEnv("GATEWAY_BASE_URL", "http://localhost:9100"),

		ChainRPCURL:     getEnv("CHAIN_RPC_URL", "http://localhost:8545"),
		PaymentContract: getEnv("PAYMENT_CONTRACT_ADDRESS", "0x7a1f8e9c4b2d6a3e5f0c9b8d7e6a5f4c3b2a1d0e"),
		Recipient:       getEnv("PAYMENT_RECIPIENT_ADDRESS", "0x52908400098527886e0f7030069857d2e4169ee7"),

		WalletProvider:     getEnv("WALLET_PROVIDER", ""),
		WalletConnectorURL: getEnv("WALLET_CONNECTOR_URL", "http://localhost:8545"),
		SocialWalletURL:    getEnv("SOCIAL_WALLET_URL", "http://localhost:9200"),
		SocialWalletToken:  getEnv("SOCIAL_WALLET_TOKEN", ""),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionTTL:    getEnvMinutes("SESSION_TTL_MINUTES", 30),

		KafkaBrokers:      strings.Split(getEnv("KAFKA_BROKER", "localhost:9092"), ","),
		EventsTopic:       getEnv("KAFKA_EVENTS_TOPIC", "checkout_events"),
		ConfirmationTopic: getEnv("KAFKA_CONFIRMATION_TOPIC", "payment_confirmations"),
		ConsumerGroup:     getEnv("KAFKA_CONSUMER_GROUP", "checkout-svc"),

		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		SessionTokenTTL: getEnvMinutes("SESSION_TOKEN_TTL_MINUTES", 60),
	}
}

func (c Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvMinutes(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * time.Minute
		}
	}
	return time.Duration(defaultValue) * time.Minute
}
