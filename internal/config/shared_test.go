package config

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/audio"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := decode(v)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if cfg.Server.Port != ":8081" {
		t.Errorf("Server.Port = %q; want :8081", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q; want sqlite", cfg.Database.Driver)
	}
	if cfg.Mix.MaxSongs != 1500 {
		t.Errorf("Mix.MaxSongs = %d; want 1500", cfg.Mix.MaxSongs)
	}
	if got := cfg.Weights(); got != audio.DefaultWeights {
		t.Errorf("Weights() = %+v; want %+v", got, audio.DefaultWeights)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DJSET_MIX_HARMONIC_WEIGHT", "2.5")
	t.Setenv("DJSET_STORAGE_BUCKET_IMPORTS", "crates")

	cfg, err := decode(newViper())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if cfg.Mix.HarmonicWeight != 2.5 {
		t.Errorf("HarmonicWeight = %v; want 2.5", cfg.Mix.HarmonicWeight)
	}
	if cfg.Storage.BucketImports != "crates" {
		t.Errorf("BucketImports = %q; want crates", cfg.Storage.BucketImports)
	}
	if cfg.Mix.MissingTempoPenalty != 100 {
		t.Errorf("MissingTempoPenalty = %v; want default 100", cfg.Mix.MissingTempoPenalty)
	}
}
