package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	HttpTimeoutSec       int `mapstructure:"HTTP_TIMEOUT_SEC"`
	HttpRetryCount       int `mapstructure:"HTTP_RETRY_COUNT"`
	HttpRetryBaseDelayMs int `mapstructure:"HTTP_RETRY_BASE_DELAY_MS"`
	HttpRetryMaxDelayMs  int `mapstructure:"HTTP_RETRY_MAX_DELAY_MS"`

	CacheBackend       string `mapstructure:"CACHE_BACKEND"`
	CacheDefaultTTLSec int    `mapstructure:"CACHE_DEFAULT_TTL_SEC"`
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int    `mapstructure:"REDIS_DB"`
	RedisKeyPrefix     string `mapstructure:"REDIS_KEY_PREFIX"`

	StoreBackend string `mapstructure:"STORE_BACKEND"`
	DataDir      string `mapstructure:"DATA_DIR"`
	SQLitePath   string `mapstructure:"SQLITE_PATH"`
	MySQLDSN     string `mapstructure:"MYSQL_DSN"`
	PostgresDSN  string `mapstructure:"POSTGRES_DSN"`
	MongoURI     string `mapstructure:"MONGO_URI"`
	MongoDB      string `mapstructure:"MONGO_DB"`

	// Douyin web cookies, optional. The share-page route works without
	// them but some regions gate it.
	DouyinCookies string `mapstructure:"DOUYIN_COOKIES"`

	// TikTok author enrichment (follower/likes counts) costs one extra
	// profile call per resolution; off means the record still resolves
	// without those fields.
	TikTokEnrichAuthor bool `mapstructure:"TIKTOK_ENRICH_AUTHOR"`

	// Bilibili playurl quality (qn). 80 = 1080p.
	BiliQn int `mapstructure:"BILI_QN"`

	FFprobePath string `mapstructure:"FFPROBE_PATH"`

	// Delivery channel album-size limit; chat platforms cap media
	// groups, Telegram at 10.
	AlbumChunkSize int `mapstructure:"ALBUM_CHUNK_SIZE"`
}

var AppConfig Config

func LoadConfig(path string) error {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("HTTP_TIMEOUT_SEC", 60)
	viper.SetDefault("HTTP_RETRY_COUNT", 3)
	viper.SetDefault("HTTP_RETRY_BASE_DELAY_MS", 500)
	viper.SetDefault("HTTP_RETRY_MAX_DELAY_MS", 4000)
	viper.SetDefault("CACHE_BACKEND", "memory")
	viper.SetDefault("CACHE_DEFAULT_TTL_SEC", 3600)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_KEY_PREFIX", "video_relay:")
	viper.SetDefault("STORE_BACKEND", "sqlite")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("SQLITE_PATH", "data/video_relay.db")
	viper.SetDefault("MYSQL_DSN", "")
	viper.SetDefault("POSTGRES_DSN", "")
	viper.SetDefault("MONGO_URI", "")
	viper.SetDefault("MONGO_DB", "video_relay")
	viper.SetDefault("DOUYIN_COOKIES", "")
	viper.SetDefault("TIKTOK_ENRICH_AUTHOR", true)
	viper.SetDefault("BILI_QN", 80)
	viper.SetDefault("FFPROBE_PATH", "ffprobe")
	viper.SetDefault("ALBUM_CHUNK_SIZE", 10)

	viper.SetEnvPrefix("VIDEO_RELAY")
	viper.AutomaticEnv()

	// If no config file found, just use defaults/env
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return err
	}
	Normalize(&AppConfig)
	return nil
}

func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cfg.CacheBackend))
	if cfg.AlbumChunkSize <= 0 {
		cfg.AlbumChunkSize = 10
	}
	if cfg.BiliQn <= 0 {
		cfg.BiliQn = 80
	}
}
