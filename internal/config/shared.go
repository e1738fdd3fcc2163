package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/audio"
)

type Config struct {
	Server struct {
		Port            string `mapstructure:"port"`
		MetricsPort     string `mapstructure:"metrics_port"`
		TempDir         string `mapstructure:"temp_dir"`
		LogLevel        string `mapstructure:"log_level"`
		JWTSecret       string `mapstructure:"jwt_secret"`
		PollingInterval int    `mapstructure:"polling_interval_seconds"`
	} `mapstructure:"server"`
	Database struct {
		Driver   string `mapstructure:"driver"` // sqlite or postgres
		Path     string `mapstructure:"path"`   // sqlite file
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Storage struct {
		Provider      string `mapstructure:"provider"` // local or s3
		LocalRoot     string `mapstructure:"local_root"`
		KeyID         string `mapstructure:"key_id"`
		AppKey        string `mapstructure:"app_key"`
		Endpoint      string `mapstructure:"endpoint"`
		Region        string `mapstructure:"region"`
		BucketImports string `mapstructure:"bucket_imports"`
		BucketExports string `mapstructure:"bucket_exports"`
	} `mapstructure:"storage"`
	Mix struct {
		HarmonicWeight      float64 `mapstructure:"harmonic_weight"`
		MissingTempoPenalty float64 `mapstructure:"missing_tempo_penalty"`
		MaxSongs            int     `mapstructure:"max_songs"`
	} `mapstructure:"mix"`
	Analysis struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"analysis"`
	Services struct {
		GetSongBPMKey       string `mapstructure:"getsongbpm_key"`
		SpotifyClientID     string `mapstructure:"spotify_client_id"`
		SpotifyClientSecret string `mapstructure:"spotify_client_secret"`
		ContactEmail        string `mapstructure:"contact_email"`
	} `mapstructure:"services"`
}

// Weights returns the transition weights the sequencer should score with.
func (c *Config) Weights() audio.Weights {
	return audio.Weights{
		Harmonic:     c.Mix.HarmonicWeight,
		MissingTempo: c.Mix.MissingTempoPenalty,
	}
}

var keys = []string{
	"server.port",
	"server.metrics_port",
	"server.temp_dir",
	"server.log_level",
	"server.jwt_secret",
	"server.polling_interval_seconds",

	"database.driver",
	"database.path",
	"database.host",
	"database.port",
	"database.user",
	"database.password",
	"database.name",

	"storage.provider",
	"storage.local_root",
	"storage.key_id",
	"storage.app_key",
	"storage.endpoint",
	"storage.region",
	"storage.bucket_imports",
	"storage.bucket_exports",

	"mix.harmonic_weight",
	"mix.missing_tempo_penalty",
	"mix.max_songs",

	"analysis.enabled",

	"services.getsongbpm_key",
	"services.spotify_client_id",
	"services.spotify_client_secret",
	"services.contact_email",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8081")
	v.SetDefault("server.metrics_port", ":9091")
	v.SetDefault("server.temp_dir", "/tmp/")
	v.SetDefault("server.log_level", "error")
	v.SetDefault("server.polling_interval_seconds", 10)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "djset.db")
	v.SetDefault("database.port", "5432")

	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.local_root", "./data")
	v.SetDefault("storage.bucket_imports", "imports")
	v.SetDefault("storage.bucket_exports", "exports")

	v.SetDefault("mix.harmonic_weight", audio.DefaultWeights.Harmonic)
	v.SetDefault("mix.missing_tempo_penalty", audio.DefaultWeights.MissingTempo)
	v.SetDefault("mix.max_songs", 1500)

	v.SetDefault("analysis.enabled", false)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("DJSET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, k := range keys {
		v.BindEnv(k)
	}
	setDefaults(v)
	return v
}

// Load reads config.yaml (if any) and DJSET_* environment variables.
func Load() *Config {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("../")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Config error: %s", err)
		} else {
			log.Println("Info: config.yaml not found, using Environment Variables only.")
		}
	}

	cfg, err := decode(v)
	if err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	if cfg.Storage.Provider == "s3" && cfg.Storage.KeyID == "" {
		log.Fatal("Critical: S3 KeyID is missing (DJSET_STORAGE_KEY_ID)")
	}
	if cfg.Mix.HarmonicWeight < 0 || cfg.Mix.MissingTempoPenalty < 0 {
		log.Fatal("Critical: mix weights must not be negative")
	}

	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
