package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Auth      AuthConfig      `mapstructure:"auth"`
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Models    ModelsConfig    `mapstructure:"models"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool `mapstructure:"-"` // 仅迁移模式（迁移后退出）
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

// AuthConfig 服务令牌认证,access_key_hash为访问密钥的bcrypt哈希
type AuthConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	AccessKeyHash string `mapstructure:"access_key_hash"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// DifficultyWeights 章节难度四个子分的权重,加载时校验总和为1
type DifficultyWeights struct {
	Dropout    float64 `mapstructure:"dropout"`
	Completion float64 `mapstructure:"completion"`
	Score      float64 `mapstructure:"score"`
	Time       float64 `mapstructure:"time"`
}

// AnalyticsConfig 分析管道的可调参数
type AnalyticsConfig struct {
	CompletionThreshold float64           `mapstructure:"completion_threshold"`
	RiskHighThreshold   float64           `mapstructure:"risk_high_threshold"`
	RiskMediumThreshold float64           `mapstructure:"risk_medium_threshold"`
	DifficultyWeights   DifficultyWeights `mapstructure:"difficulty_weights"`
	MinChapterSample    int               `mapstructure:"min_chapter_sample"`
	StrictValidation    bool              `mapstructure:"strict_validation"`
	Seed                int64             `mapstructure:"seed"`
}

// ModelsConfig 训练产物的加载配置
type ModelsConfig struct {
	CompletionPath string `mapstructure:"completion_path"`
	DropoutPath    string `mapstructure:"dropout_path"`
	Autoload       bool   `mapstructure:"autoload"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("LEARNING_INTEL")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT / Auth
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("auth.enabled", "AUTH_ENABLED")
	viper.BindEnv("auth.access_key_hash", "AUTH_ACCESS_KEY_HASH")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Storage / OSS
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	viper.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	viper.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	viper.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Analytics / Models
	viper.BindEnv("analytics.risk_high_threshold", "ANALYTICS_RISK_HIGH")
	viper.BindEnv("analytics.risk_medium_threshold", "ANALYTICS_RISK_MEDIUM")
	viper.BindEnv("analytics.strict_validation", "ANALYTICS_STRICT_VALIDATION")
	viper.BindEnv("models.completion_path", "MODELS_COMPLETION_PATH")
	viper.BindEnv("models.dropout_path", "MODELS_DROPOUT_PATH")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	cfg.Analytics.applyDefaults()
	if err := cfg.Analytics.Validate(); err != nil {
		return nil, err
	}

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && cfg.Auth.Enabled && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

// applyDefaults 未配置的分析参数回落到默认值
func (a *AnalyticsConfig) applyDefaults() {
	if a.CompletionThreshold == 0 {
		a.CompletionThreshold = 0.5
	}
	if a.RiskHighThreshold == 0 {
		a.RiskHighThreshold = 0.7
	}
	if a.RiskMediumThreshold == 0 {
		a.RiskMediumThreshold = 0.4
	}
	w := a.DifficultyWeights
	if w.Dropout == 0 && w.Completion == 0 && w.Score == 0 && w.Time == 0 {
		a.DifficultyWeights = DifficultyWeights{
			Dropout:    0.35,
			Completion: 0.25,
			Score:      0.20,
			Time:       0.20,
		}
	}
	if a.MinChapterSample == 0 {
		a.MinChapterSample = 3
	}
	if a.Seed == 0 {
		a.Seed = 42
	}
}

// Validate 校验阈值区间与权重总和
func (a *AnalyticsConfig) Validate() error {
	if a.CompletionThreshold <= 0 || a.CompletionThreshold >= 1 {
		return fmt.Errorf("analytics: completion_threshold必须在(0,1)内, 当前%v", a.CompletionThreshold)
	}
	if a.RiskMediumThreshold <= 0 || a.RiskHighThreshold >= 1 || a.RiskMediumThreshold >= a.RiskHighThreshold {
		return fmt.Errorf("analytics: 风险阈值必须满足 0 < medium < high < 1, 当前medium=%v high=%v",
			a.RiskMediumThreshold, a.RiskHighThreshold)
	}
	w := a.DifficultyWeights
	sum := w.Dropout + w.Completion + w.Score + w.Time
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("analytics: 难度权重总和必须为1, 当前%v", sum)
	}
	if w.Dropout < 0 || w.Completion < 0 || w.Score < 0 || w.Time < 0 {
		return fmt.Errorf("analytics: 难度权重不能为负")
	}
	if a.MinChapterSample < 1 {
		return fmt.Errorf("analytics: min_chapter_sample必须至少为1, 当前%d", a.MinChapterSample)
	}
	return nil
}
