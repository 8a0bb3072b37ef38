package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConf struct {
	Env            string `mapstructure:"env"`
	Port           int    `mapstructure:"port"`
	ShutdownSecond int    `mapstructure:"shutdown_seconds"`
}

type MongoConf struct {
	URI              string `mapstructure:"uri"`
	Database         string `mapstructure:"database"`
	ImagesCollection string `mapstructure:"images_collection"`
	VideosCollection string `mapstructure:"videos_collection"`
	EventsCollection string `mapstructure:"events_collection"`
}

type AWSConf struct {
	Region   string `mapstructure:"region"`
	Bucket   string `mapstructure:"bucket"`
	Endpoint string `mapstructure:"endpoint"`
}

type S3Conf struct {
	PresignTTL int `mapstructure:"presign_ttl_seconds"`
}

type RedisConf struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	SignedTTL int    `mapstructure:"signed_url_cache_ttl_seconds"`
}

type KafkaConf struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type AuthConf struct {
	AdminPasswordHash string `mapstructure:"admin_password_hash"`
	JWTSecret         string `mapstructure:"jwt_secret"`
	TokenTTLMinutes   int    `mapstructure:"token_ttl_minutes"`
}

type UploadConf struct {
	ThumbWidth    int   `mapstructure:"thumb_width"`
	ThumbHeight   int   `mapstructure:"thumb_height"`
	ThumbQuality  int   `mapstructure:"thumb_quality"`
	MaxFileBytes  int64 `mapstructure:"max_file_bytes"`
	ConfirmTTLSec int   `mapstructure:"confirm_ttl_seconds"`
}

type Config struct {
	App    AppConf    `mapstructure:"app"`
	Mongo  MongoConf  `mapstructure:"mongodb"`
	AWS    AWSConf    `mapstructure:"aws"`
	S3     S3Conf     `mapstructure:"s3"`
	Redis  RedisConf  `mapstructure:"redis"`
	Kafka  KafkaConf  `mapstructure:"kafka"`
	Auth   AuthConf   `mapstructure:"auth"`
	Upload UploadConf `mapstructure:"upload"`
	Log    struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	// derived
	ShutdownTimeout time.Duration
	PresignTTL      time.Duration
	SignedURLTTL    time.Duration
	TokenTTL        time.Duration
	ConfirmTTL      time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.App.ShutdownSecond == 0 {
		cfg.App.ShutdownSecond = 15
	}
	if cfg.S3.PresignTTL == 0 {
		cfg.S3.PresignTTL = 600
	}
	if cfg.Redis.SignedTTL == 0 {
		cfg.Redis.SignedTTL = cfg.S3.PresignTTL
	}
	if cfg.Auth.TokenTTLMinutes == 0 {
		cfg.Auth.TokenTTLMinutes = 720
	}
	if cfg.Mongo.ImagesCollection == "" {
		cfg.Mongo.ImagesCollection = "images"
	}
	if cfg.Mongo.VideosCollection == "" {
		cfg.Mongo.VideosCollection = "videos"
	}
	if cfg.Mongo.EventsCollection == "" {
		cfg.Mongo.EventsCollection = "events"
	}
	if cfg.Upload.ThumbWidth == 0 {
		cfg.Upload.ThumbWidth = 400
	}
	if cfg.Upload.ThumbHeight == 0 {
		cfg.Upload.ThumbHeight = 400
	}
	if cfg.Upload.ThumbQuality == 0 {
		cfg.Upload.ThumbQuality = 80
	}
	if cfg.Upload.MaxFileBytes == 0 {
		cfg.Upload.MaxFileBytes = 200 * 1024 * 1024
	}
	if cfg.Upload.ConfirmTTLSec == 0 {
		cfg.Upload.ConfirmTTLSec = 120
	}
	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSecond) * time.Second
	cfg.PresignTTL = time.Duration(cfg.S3.PresignTTL) * time.Second
	cfg.SignedURLTTL = time.Duration(cfg.Redis.SignedTTL) * time.Second
	cfg.TokenTTL = time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute
	cfg.ConfirmTTL = time.Duration(cfg.Upload.ConfirmTTLSec) * time.Second
	return &cfg, nil
}
