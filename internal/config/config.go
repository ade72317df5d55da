package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Dhoini/storefront-billing/internal/domain"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Интервалы тарификации подписок.
const (
	IntervalMonthly = "monthly"
	IntervalYearly  = "yearly"
)

// Plan описывает тарифный план и его price ID у провайдера.
type Plan struct {
	Name          string `mapstructure:"name"`
	PriceID       string `mapstructure:"priceId"`
	PriceIDYearly string `mapstructure:"priceIdYearly"`
}

// Config представляет структуру конфигурации для приложения.
type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	// PublicURL - базовый URL фронтенда, из него строятся success/cancel редиректы.
	PublicURL string `mapstructure:"publicUrl"`
	Stripe    struct {
		APIKey        string `mapstructure:"apiKey"`
		WebhookSecret string `mapstructure:"webhookSecret"`
	} `mapstructure:"stripe"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	// Plans - каталог тарифов: имя плана -> price ID провайдера.
	Plans map[string]Plan `mapstructure:"plans"`
}

// LoadConfig загружает конфигурацию из файла или переменных окружения.
func LoadConfig(path string) (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		// .env опционален, его отсутствие не ошибка
		_ = godotenv.Load(path)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // Чтение переменных окружения

	if err := viper.ReadInConfig(); err != nil {
		// Файл конфигурации опционален, но ошибки парсинга фатальны
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	applyEnvOverrides(&config)
	applyDefaults(&config)

	// Секретный ключ провайдера обязателен: без него сервис бесполезен,
	// падаем сразу на старте (fail fast).
	if config.Stripe.APIKey == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is not set in environment variables")
	}

	return &config, nil
}

// applyEnvOverrides подхватывает переменные окружения с привычными именами.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		cfg.Stripe.APIKey = v
	}
	if v := os.Getenv("STRIPE_WEBHOOK_SECRET"); v != "" {
		cfg.Stripe.WebhookSecret = v
	}
	if v := os.Getenv("PUBLIC_URL"); v != "" {
		cfg.PublicURL = v
	}
	if v := os.Getenv("APP_PORT"); v != "" {
		cfg.App.Port = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = "http://localhost:3000"
	}
	if len(cfg.Plans) == 0 {
		cfg.Plans = DefaultPlans()
	}
}

// DefaultPlans возвращает каталог тарифов по умолчанию.
func DefaultPlans() map[string]Plan {
	return map[string]Plan{
		"basic": {
			Name:          "Basic Plan",
			PriceID:       "price_1RqSK0Cu6bmtuBQfCjwQ4pkI",
			PriceIDYearly: "price_1RqTE0Cu6bmtuBQfYBroUu9a",
		},
		"pro": {
			Name:          "Pro Plan",
			PriceID:       "price_1RqTG8Cu6bmtuBQfxhba36iM",
			PriceIDYearly: "price_1QyHtWCu6bmtuBQfVY0a0Uxb",
		},
		"enterprise": {
			Name:          "Enterprise Plan",
			PriceID:       "price_1RqTG8Cu6bmtuBQfxhba36iM",
			PriceIDYearly: "price_1QyHtWCu6bmtuBQfVY0a0Uxb",
		},
	}
}

// ResolvePrice возвращает price ID для плана и интервала тарификации.
// Пустой интервал трактуется как месячный.
func (c *Config) ResolvePrice(planType, interval string) (string, error) {
	plan, ok := c.Plans[planType]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidPlan, planType)
	}

	switch interval {
	case "", IntervalMonthly:
		return plan.PriceID, nil
	case IntervalYearly:
		if plan.PriceIDYearly == "" {
			return "", fmt.Errorf("%w: plan %q has no yearly price", domain.ErrInvalidPlan, planType)
		}
		return plan.PriceIDYearly, nil
	default:
		return "", fmt.Errorf("%w: unknown interval %q", domain.ErrInvalidPlan, interval)
	}
}
