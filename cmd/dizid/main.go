// Command dizid is the headless music-player daemon entrypoint,
// following the flag/log-file/signal-handling shape of the teacher's
// cmd/resonate-server/main.go.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"

	"github.com/dizictl/dizi/internal/config"
	"github.com/dizictl/dizi/internal/controller"
	"github.com/dizictl/dizi/internal/hub"
	"github.com/dizictl/dizi/internal/playlist"
	"github.com/dizictl/dizi/internal/playlistio"
	"github.com/dizictl/dizi/internal/supervisor"
)

var log = logging.Logger("main")

func main() {
	configPath := flag.String("config", "", "path to config file")
	socketFlag := flag.String("socket", "", "override socket path")
	playlistFlag := flag.String("playlist", "", "override .m3u path")
	audioSystem := flag.String("audio-system", "", "override audio host (alsa/jack/coreaudio/asio)")
	logFile := flag.String("log-file", "", "also write logs to this file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *logFile != "" {
		lc := logging.GetConfig()
		lc.File = *logFile
		lc.Stderr = true
		logging.SetupLogging(lc)
	}

	if *debug {
		logging.SetAllLoggers(logging.LevelDebug)
	} else {
		logging.SetAllLoggers(logging.LevelInfo)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config load failed:", err)
		os.Exit(1)
	}
	if *socketFlag != "" {
		cfg.Socket = *socketFlag
	}
	if *playlistFlag != "" {
		cfg.Playlist = *playlistFlag
	}
	if *audioSystem != "" {
		cfg.AudioSystem = *audioSystem
	}

	os.Remove(cfg.Socket)
	listener, err := net.Listen("unix", cfg.Socket)
	if err != nil {
		log.Fatalw("failed to bind socket", "socket", cfg.Socket, "err", err)
	}
	defer listener.Close()

	sup := supervisor.New()
	supStop := make(chan struct{})
	go sup.Run(supStop)
	defer close(supStop)

	ctrl := controller.New(sup, cfg.AudioSystem, cfg.OnSongChange, controller.State{
		Status:       controller.Stopped,
		PlaylistKind: playlist.PlaylistFile,
		Volume:       cfg.PlayerVolume,
		Next:         cfg.PlayerNext,
		Repeat:       cfg.PlayerRepeat,
		Shuffle:      cfg.PlayerShuffle,
		AudioHost:    cfg.AudioSystem,
	})

	if loaded, err := playlistio.FromM3U(".", cfg.Playlist); err == nil {
		ctrl.FilePlaylist = loaded
	} else {
		log.Debugw("no existing playlist loaded", "path", cfg.Playlist, "err", err)
	}

	h := hub.New(listener, ctrl, sup, cfg.Playlist)

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigC
		log.Info("signal received, shutting down")
		listener.Close()
		h.Quit()
	}()

	log.Infow("dizid listening", "socket", cfg.Socket)
	h.Run()
}
