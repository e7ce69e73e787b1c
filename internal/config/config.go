// Package config loads the already-parsed configuration record spec.md
// §1 says the core receives from its caller. The loader itself —
// reading a file into that record — is carried as ambient stack via
// github.com/spf13/viper (grounded on Alexander-D-Karpov-amp/go.mod),
// even though config-file parsing proper is out of scope for the core.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config is the parsed record the core operates on (spec.md §6).
type Config struct {
	Socket        string
	Playlist      string
	AudioSystem   string
	OnSongChange  string
	PlayerShuffle bool
	PlayerRepeat  bool
	PlayerNext    bool
	PlayerVolume  int
}

// Default mirrors the defaults a fresh dizid install would ship.
func Default() Config {
	return Config{
		Socket:       "/tmp/dizi.sock",
		Playlist:     "dizi.m3u",
		AudioSystem:  "",
		PlayerNext:   true,
		PlayerVolume: 50,
	}
}

// Load reads path (TOML, YAML, or JSON by extension) via viper,
// overlaying it on Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("DIZI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("socket", cfg.Socket)
	v.SetDefault("playlist", cfg.Playlist)
	v.SetDefault("audio_system", cfg.AudioSystem)
	v.SetDefault("on_song_change", cfg.OnSongChange)
	v.SetDefault("player.shuffle", cfg.PlayerShuffle)
	v.SetDefault("player.repeat", cfg.PlayerRepeat)
	v.SetDefault("player.next", cfg.PlayerNext)
	v.SetDefault("player.volume", cfg.PlayerVolume)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	return Config{
		Socket:        v.GetString("socket"),
		Playlist:      v.GetString("playlist"),
		AudioSystem:   v.GetString("audio_system"),
		OnSongChange:  v.GetString("on_song_change"),
		PlayerShuffle: v.GetBool("player.shuffle"),
		PlayerRepeat:  v.GetBool("player.repeat"),
		PlayerNext:    v.GetBool("player.next"),
		PlayerVolume:  v.GetInt("player.volume"),
	}, nil
}
