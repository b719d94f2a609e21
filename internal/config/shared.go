package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Station struct {
		Name       string `mapstructure:"name"`
		Newscaster string `mapstructure:"newscaster"`
		Location   string `mapstructure:"location"`
		Role       string `mapstructure:"role"` // "admin" broadcasts state, "listener" follows it
		APIAddr    string `mapstructure:"api_addr"`
		TempDir    string `mapstructure:"temp_dir"`
	} `mapstructure:"station"`
	Storage struct {
		Provider      string `mapstructure:"provider"` // "s3" or "local"
		LocalRoot     string `mapstructure:"local_root"`
		KeyID         string `mapstructure:"key_id"`
		AppKey        string `mapstructure:"app_key"`
		Endpoint      string `mapstructure:"endpoint"`
		Region        string `mapstructure:"region"`
		BucketMedia   string `mapstructure:"bucket_media"`
		PublicBaseURL string `mapstructure:"public_base_url"`
	} `mapstructure:"storage"`
	Database struct {
		Driver   string `mapstructure:"driver"` // "postgres" or "sqlite"
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		Path     string `mapstructure:"path"` // sqlite file
	} `mapstructure:"database"`
	Sync struct {
		Transport     string `mapstructure:"transport"` // "local" or "redis"
		RedisAddr     string `mapstructure:"redis_addr"`
		RedisPassword string `mapstructure:"redis_password"`
		RedisDB       int    `mapstructure:"redis_db"`
		ChannelName   string `mapstructure:"channel_name"`
	} `mapstructure:"sync"`
	Broadcast struct {
		Enabled    bool   `mapstructure:"enabled"`
		GridPath   string `mapstructure:"grid_path"`
		SampleRate int    `mapstructure:"sample_rate"`
	} `mapstructure:"broadcast"`
	AI struct {
		APIKey    string `mapstructure:"api_key"`
		NewsModel string `mapstructure:"news_model"`
		TTSModel  string `mapstructure:"tts_model"`
		Voice     string `mapstructure:"voice"`
	} `mapstructure:"ai"`
	Auth struct {
		JWTSecret     string `mapstructure:"jwt_secret"`
		AdminUser     string `mapstructure:"admin_user"`
		AdminPassword string `mapstructure:"admin_password"`
	} `mapstructure:"auth"`
	Ingest struct {
		SourceDir       string `mapstructure:"source_dir"`
		PollingInterval int    `mapstructure:"polling_interval_seconds"`
		MetricsPort     string `mapstructure:"metrics_port"`
	} `mapstructure:"ingest"`
}

func Load() *Config {
	viper.SetEnvPrefix("RADIO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Register keys
	viper.BindEnv("station.name")
	viper.BindEnv("station.newscaster")
	viper.BindEnv("station.location")
	viper.BindEnv("station.role")
	viper.BindEnv("station.api_addr")
	viper.BindEnv("station.temp_dir")

	viper.BindEnv("storage.provider")
	viper.BindEnv("storage.local_root")
	viper.BindEnv("storage.key_id")
	viper.BindEnv("storage.app_key")
	viper.BindEnv("storage.endpoint")
	viper.BindEnv("storage.region")
	viper.BindEnv("storage.bucket_media")
	viper.BindEnv("storage.public_base_url")

	viper.BindEnv("database.driver")
	viper.BindEnv("database.host")
	viper.BindEnv("database.port")
	viper.BindEnv("database.user")
	viper.BindEnv("database.password")
	viper.BindEnv("database.name")
	viper.BindEnv("database.path")

	viper.BindEnv("sync.transport")
	viper.BindEnv("sync.redis_addr")
	viper.BindEnv("sync.redis_password")
	viper.BindEnv("sync.redis_db")
	viper.BindEnv("sync.channel_name")

	viper.BindEnv("broadcast.enabled")
	viper.BindEnv("broadcast.grid_path")
	viper.BindEnv("broadcast.sample_rate")

	viper.BindEnv("ai.api_key")
	viper.BindEnv("ai.news_model")
	viper.BindEnv("ai.tts_model")
	viper.BindEnv("ai.voice")

	viper.BindEnv("auth.jwt_secret")
	viper.BindEnv("auth.admin_user")
	viper.BindEnv("auth.admin_password")

	viper.BindEnv("ingest.source_dir")
	viper.BindEnv("ingest.polling_interval_seconds")
	viper.BindEnv("ingest.metrics_port")

	// Station Defaults
	viper.SetDefault("station.name", "Nigeria Diaspora Radio")
	viper.SetDefault("station.newscaster", "Adaeze")
	viper.SetDefault("station.location", "Lagos")
	viper.SetDefault("station.role", "listener")
	viper.SetDefault("station.api_addr", ":8090")
	viper.SetDefault("station.temp_dir", "/tmp/")

	viper.SetDefault("storage.provider", "local")
	viper.SetDefault("storage.local_root", "./data")
	viper.SetDefault("storage.bucket_media", "media")

	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "./ndr.db")
	viper.SetDefault("database.port", "5432")

	viper.SetDefault("sync.transport", "local")
	viper.SetDefault("sync.redis_addr", "localhost:6379")
	viper.SetDefault("sync.channel_name", "station_sync")

	// Broadcast Defaults (hourly news grid)
	viper.SetDefault("broadcast.enabled", true)
	viper.SetDefault("broadcast.grid_path", "./broadcast.yaml")
	viper.SetDefault("broadcast.sample_rate", 24000)

	viper.SetDefault("ai.news_model", "gemini-2.0-flash")
	viper.SetDefault("ai.tts_model", "gemini-2.0-flash")
	viper.SetDefault("ai.voice", "Kore")

	viper.SetDefault("auth.admin_user", "admin")

	viper.SetDefault("ingest.source_dir", "./incoming")
	viper.SetDefault("ingest.polling_interval_seconds", 10)
	viper.SetDefault("ingest.metrics_port", ":9091")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Config error: %s", err)
		} else {
			log.Println("Info: config.yaml not found, using Environment Variables only.")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("Critical: JWT secret is missing (RADIO_AUTH_JWT_SECRET)")
	}

	return &cfg
}
