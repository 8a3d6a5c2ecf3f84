package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/pkg/auth"
	"github.com/PremHer/kasvarealty-sub001/pkg/kafka"
	"github.com/PremHer/kasvarealty-sub001/pkg/money"
	"github.com/PremHer/kasvarealty-sub001/pkg/observability"
	"github.com/PremHer/kasvarealty-sub001/pkg/postgres"
	"github.com/PremHer/kasvarealty-sub001/pkg/tlsutil"
)

type KafkaConfig struct {
	Brokers        []string
	EventsTopic    string
	PaymentsTopic  string
	ConsumerGroup  string
	SASLMechanism  string
	SASLUsername   string
	SASLPassword   string
	TLS            bool
	PaymentsIntake bool
}

// Client builds the pkg/kafka settings shared by producer and consumer.
func (k KafkaConfig) Client(serviceName string) kafka.Config {
	return kafka.Config{
		Brokers:       k.Brokers,
		ClientID:      serviceName,
		ConsumerGroup: k.ConsumerGroup,
		SASLMechanism: k.SASLMechanism,
		SASLUsername:  k.SASLUsername,
		SASLPassword:  k.SASLPassword,
		SASLEnabled:   k.SASLUsername != "",
		TLS:           k.TLS,
	}
}

type SchedulerConfig struct {
	OutboxRelaySchedule  string
	OutboxBatchSize      int
	OutboxPurgeSchedule  string
	OutboxRetention      time.Duration
	OverdueSweepSchedule string
}

type EngineConfig struct {
	DefaultCurrency         string
	DefaultLateInterestRate string
	StrictCustomDateOrder   bool
}

type Config struct {
	GRPCPort    int
	HTTPPort    int
	DB          postgres.Config
	Kafka       KafkaConfig
	Scheduler   SchedulerConfig
	Engine      EngineConfig
	Log         observability.LogConfig
	Tracing     observability.TracingConfig
	JWT         auth.JWTConfig
	JWTKeyFile  string
	TLS         tlsutil.Config
	ServiceName string
}

// Load reads the environment, after an optional .env file.
func Load() Config {
	_ = godotenv.Load()

	const serviceName = "installment-service"
	return Config{
		GRPCPort: getEnvInt("GRPC_PORT", 9090),
		HTTPPort: getEnvInt("HTTP_PORT", 8080),
		DB: postgres.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "kasva"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "kasva_installments"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 1)),
		},
		Kafka: KafkaConfig{
			Brokers:        kafka.ParseBrokers(getEnv("KAFKA_BROKERS", "localhost:9092")),
			EventsTopic:    getEnv("KAFKA_TOPIC", "installment-events"),
			PaymentsTopic:  getEnv("KAFKA_PAYMENTS_TOPIC", "installment-payments"),
			ConsumerGroup:  getEnv("KAFKA_CONSUMER_GROUP", serviceName),
			SASLMechanism:  getEnv("KAFKA_SASL_MECHANISM", ""),
			SASLUsername:   getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:   getEnv("KAFKA_SASL_PASSWORD", ""),
			TLS:            getEnvBool("KAFKA_TLS", false),
			PaymentsIntake: getEnvBool("KAFKA_PAYMENTS_INTAKE", true),
		},
		Scheduler: SchedulerConfig{
			OutboxRelaySchedule:  getEnv("OUTBOX_RELAY_SCHEDULE", "@every 5s"),
			OutboxBatchSize:      getEnvInt("OUTBOX_BATCH_SIZE", 100),
			OutboxPurgeSchedule:  getEnv("OUTBOX_PURGE_SCHEDULE", "@hourly"),
			OutboxRetention:      getEnvDuration("OUTBOX_RETENTION", 7*24*time.Hour),
			OverdueSweepSchedule: getEnv("OVERDUE_SWEEP_SCHEDULE", "0 6 * * *"),
		},
		Engine: EngineConfig{
			DefaultCurrency:         getEnv("DEFAULT_CURRENCY", "PEN"),
			DefaultLateInterestRate: getEnv("DEFAULT_LATE_INTEREST_RATE", ""),
			StrictCustomDateOrder:   getEnvBool("STRICT_CUSTOM_DATE_ORDER", false),
		},
		Log: observability.LogConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Format:  getEnv("LOG_FORMAT", "json"),
			Service: serviceName,
		},
		Tracing: observability.TracingConfig{
			ServiceName: serviceName,
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRatio: getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1),
		},
		JWT: auth.JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			Issuer:     getEnv("JWT_ISSUER", "kasva"),
			Expiration: getEnvDuration("JWT_EXPIRATION", time.Hour),
		},
		JWTKeyFile: getEnv("JWT_PUBLIC_KEY_FILE", ""),
		TLS: tlsutil.Config{
			CertFile:     getEnv("GRPC_TLS_CERT_FILE", ""),
			KeyFile:      getEnv("GRPC_TLS_KEY_FILE", ""),
			ClientCAFile: getEnv("GRPC_TLS_CLIENT_CA_FILE", ""),
		},
		ServiceName: serviceName,
	}
}

// Validate reports every missing or malformed setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.DB.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD is required"))
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required"))
	}
	if c.JWT.Secret == "" && c.JWTKeyFile == "" {
		errs = append(errs, errors.New("JWT_SECRET or JWT_PUBLIC_KEY_FILE is required"))
	}
	if _, err := money.NewCurrency(c.Engine.DefaultCurrency); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_CURRENCY: %w", err))
	}
	if _, err := c.DefaultLateInterestRate(); err != nil {
		errs = append(errs, err)
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for key, spec := range map[string]string{
		"OUTBOX_RELAY_SCHEDULE":  c.Scheduler.OutboxRelaySchedule,
		"OUTBOX_PURGE_SCHEDULE":  c.Scheduler.OutboxPurgeSchedule,
		"OVERDUE_SWEEP_SCHEDULE": c.Scheduler.OverdueSweepSchedule,
	} {
		if spec == "" {
			continue
		}
		if _, err := parser.Parse(spec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if c.TLS.CertFile != "" && c.TLS.KeyFile == "" || c.TLS.CertFile == "" && c.TLS.KeyFile != "" {
		errs = append(errs, errors.New("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"))
	}
	return errors.Join(errs...)
}

// DefaultLateInterestRate parses DEFAULT_LATE_INTEREST_RATE; empty means no
// default.
func (c Config) DefaultLateInterestRate() (decimal.NullDecimal, error) {
	raw := strings.TrimSpace(c.Engine.DefaultLateInterestRate)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.NullDecimal{}, fmt.Errorf("DEFAULT_LATE_INTEREST_RATE: invalid rate %q", raw)
	}
	return decimal.NewNullDecimal(d), nil
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
