package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Policy   PolicyConfig
}

var (
	ConfigInstance *Config
	once           sync.Once
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URI renders the postgres DSN used by GORM.
func (d DatabaseConfig) URI() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	URI          string
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type JWTConfig struct {
	Secret         string
	ExpirationTime time.Duration
}

// PolicyConfig holds the heuristic weights of the graph engine. They are
// tuning knobs, not business rules, so every one of them can be overridden
// from the environment.
type PolicyConfig struct {
	// Suggestion ranking weights.
	SuggestionMutualWeight   int
	SuggestionLocationWeight int
	SuggestionTypeWeight     int
	SuggestionSkillWeight    int
	SuggestionVerifiedWeight int

	// Strength scoring.
	InteractionIncrements map[string]int
	InteractionWindow     time.Duration
	StrengthTypeBonus     int
	StrengthLocationBonus int
	StrengthSkillPoints   int
	StrengthSkillCap      int
	StrengthMutualFull    int // mutuals counted at 2 points each up to here
	StrengthMutualTail    int // further mutuals counted at 1 point each up to here
	StrengthDurationStep  time.Duration
	StrengthDurationCap   int

	// Introduction workflow.
	IntroductionExpiry time.Duration
}

func LoadConfig() (*Config, error) {
	once.Do(func() {
		viper.SetDefault("CONNECT_HOST", "")
		viper.SetDefault("CONNECT_PORT", "8080")
		viper.SetDefault("CONNECT_READ_TIMEOUT", 30*time.Second)
		viper.SetDefault("CONNECT_WRITE_TIMEOUT", 30*time.Second)
		viper.SetDefault("CONNECT_IDLE_TIMEOUT", 60*time.Second)
		viper.SetDefault("CONNECT_JWT_SECRET", "secret")
		viper.SetDefault("CONNECT_JWT_EXPIRE", "24h")
		viper.SetDefault("REDIS_URL", "redis://:mypassword@127.0.0.1:6379/0")
		viper.SetDefault("REDIS_MAX_RETRIES", 3)
		viper.SetDefault("REDIS_POOL_SIZE", 100)
		viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
		viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
		viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
		viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
		viper.SetDefault("POSTGRES_USER", "postgres")
		viper.SetDefault("POSTGRES_PASSWORD", "password")
		viper.SetDefault("POSTGRES_HOST", "localhost")
		viper.SetDefault("POSTGRES_PORT", "5432")
		viper.SetDefault("POSTGRES_DB", "postgres")
		viper.SetDefault("POSTGRES_SSLMODE", "disable")
		viper.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
		viper.SetDefault("KAFKA_TOPIC", "connect-events")

		viper.SetDefault("POLICY_SUGGESTION_MUTUAL_WEIGHT", 10)
		viper.SetDefault("POLICY_SUGGESTION_LOCATION_WEIGHT", 20)
		viper.SetDefault("POLICY_SUGGESTION_TYPE_WEIGHT", 15)
		viper.SetDefault("POLICY_SUGGESTION_SKILL_WEIGHT", 5)
		viper.SetDefault("POLICY_SUGGESTION_VERIFIED_WEIGHT", 10)
		viper.SetDefault("POLICY_INTERACTION_MESSAGE", 2)
		viper.SetDefault("POLICY_INTERACTION_PROFILE_VIEW", 1)
		viper.SetDefault("POLICY_INTERACTION_OPPORTUNITY", 3)
		viper.SetDefault("POLICY_INTERACTION_ENDORSEMENT", 5)
		viper.SetDefault("POLICY_INTERACTION_RECOMMENDATION", 10)
		viper.SetDefault("POLICY_INTERACTION_WINDOW", 90*24*time.Hour)
		viper.SetDefault("POLICY_STRENGTH_TYPE_BONUS", 10)
		viper.SetDefault("POLICY_STRENGTH_LOCATION_BONUS", 10)
		viper.SetDefault("POLICY_STRENGTH_SKILL_POINTS", 2)
		viper.SetDefault("POLICY_STRENGTH_SKILL_CAP", 10)
		viper.SetDefault("POLICY_STRENGTH_MUTUAL_FULL", 10)
		viper.SetDefault("POLICY_STRENGTH_MUTUAL_TAIL", 15)
		viper.SetDefault("POLICY_STRENGTH_DURATION_STEP", 90*24*time.Hour)
		viper.SetDefault("POLICY_STRENGTH_DURATION_CAP", 5)
		viper.SetDefault("POLICY_INTRODUCTION_EXPIRY", 30*24*time.Hour)
		viper.AutomaticEnv()

		ConfigInstance = &Config{
			Server: ServerConfig{
				Host:         viper.GetString("CONNECT_HOST"),
				Port:         viper.GetString("CONNECT_PORT"),
				ReadTimeout:  viper.GetDuration("CONNECT_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("CONNECT_WRITE_TIMEOUT"),
				IdleTimeout:  viper.GetDuration("CONNECT_IDLE_TIMEOUT"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("POSTGRES_HOST"),
				Port:     viper.GetString("POSTGRES_PORT"),
				User:     viper.GetString("POSTGRES_USER"),
				Password: viper.GetString("POSTGRES_PASSWORD"),
				DBName:   viper.GetString("POSTGRES_DB"),
				SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
			},
			Redis: RedisConfig{
				URI:          viper.GetString("REDIS_URL"),
				MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
				DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
				ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
				PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
				MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
			},
			Kafka: KafkaConfig{
				Brokers: viper.GetStringSlice("KAFKA_BROKERS"),
				Topic:   viper.GetString("KAFKA_TOPIC"),
			},
			JWT: JWTConfig{
				Secret:         viper.GetString("CONNECT_JWT_SECRET"),
				ExpirationTime: viper.GetDuration("CONNECT_JWT_EXPIRE"),
			},
			Policy: PolicyConfig{
				SuggestionMutualWeight:   viper.GetInt("POLICY_SUGGESTION_MUTUAL_WEIGHT"),
				SuggestionLocationWeight: viper.GetInt("POLICY_SUGGESTION_LOCATION_WEIGHT"),
				SuggestionTypeWeight:     viper.GetInt("POLICY_SUGGESTION_TYPE_WEIGHT"),
				SuggestionSkillWeight:    viper.GetInt("POLICY_SUGGESTION_SKILL_WEIGHT"),
				SuggestionVerifiedWeight: viper.GetInt("POLICY_SUGGESTION_VERIFIED_WEIGHT"),
				InteractionIncrements: map[string]int{
					"message":                 viper.GetInt("POLICY_INTERACTION_MESSAGE"),
					"profile_view":            viper.GetInt("POLICY_INTERACTION_PROFILE_VIEW"),
					"opportunity_interaction": viper.GetInt("POLICY_INTERACTION_OPPORTUNITY"),
					"endorsement":             viper.GetInt("POLICY_INTERACTION_ENDORSEMENT"),
					"recommendation":          viper.GetInt("POLICY_INTERACTION_RECOMMENDATION"),
				},
				InteractionWindow:     viper.GetDuration("POLICY_INTERACTION_WINDOW"),
				StrengthTypeBonus:     viper.GetInt("POLICY_STRENGTH_TYPE_BONUS"),
				StrengthLocationBonus: viper.GetInt("POLICY_STRENGTH_LOCATION_BONUS"),
				StrengthSkillPoints:   viper.GetInt("POLICY_STRENGTH_SKILL_POINTS"),
				StrengthSkillCap:      viper.GetInt("POLICY_STRENGTH_SKILL_CAP"),
				StrengthMutualFull:    viper.GetInt("POLICY_STRENGTH_MUTUAL_FULL"),
				StrengthMutualTail:    viper.GetInt("POLICY_STRENGTH_MUTUAL_TAIL"),
				StrengthDurationStep:  viper.GetDuration("POLICY_STRENGTH_DURATION_STEP"),
				StrengthDurationCap:   viper.GetInt("POLICY_STRENGTH_DURATION_CAP"),
				IntroductionExpiry:    viper.GetDuration("POLICY_INTRODUCTION_EXPIRY"),
			},
		}
	})

	return ConfigInstance, nil
}

// DefaultPolicy returns the built-in policy values without touching viper.
// Used by tests and the seeder.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		SuggestionMutualWeight:   10,
		SuggestionLocationWeight: 20,
		SuggestionTypeWeight:     15,
		SuggestionSkillWeight:    5,
		SuggestionVerifiedWeight: 10,
		InteractionIncrements: map[string]int{
			"message":                 2,
			"profile_view":            1,
			"opportunity_interaction": 3,
			"endorsement":             5,
			"recommendation":          10,
		},
		InteractionWindow:     90 * 24 * time.Hour,
		StrengthTypeBonus:     10,
		StrengthLocationBonus: 10,
		StrengthSkillPoints:   2,
		StrengthSkillCap:      10,
		StrengthMutualFull:    10,
		StrengthMutualTail:    15,
		StrengthDurationStep:  90 * 24 * time.Hour,
		StrengthDurationCap:   5,
		IntroductionExpiry:    30 * 24 * time.Hour,
	}
}
