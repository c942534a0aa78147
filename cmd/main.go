package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"webex-room-archiver/internal/archiver"
	"webex-room-archiver/internal/attachments"
	"webex-room-archiver/internal/config"
	"webex-room-archiver/internal/downloader"
	"webex-room-archiver/internal/logging"
	"webex-room-archiver/internal/render"
	"webex-room-archiver/internal/webexapi"
)

func main() {
	var (
		configPath string
		rooms      []string
	)
	pflag.StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")
	pflag.StringSliceVarP(&rooms, "room", "r", nil, "room ID to archive (repeatable, overrides the config file)")
	pflag.Parse()

	log := logging.New()

	// .env is optional; the token may come from the real environment
	_ = godotenv.Load()
	token := os.Getenv("WEBEX_ACCESS_TOKEN")
	if token == "" {
		log.Fatal("WEBEX_ACCESS_TOKEN is not set")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Error reading configuration file: %v", err)
	}

	if len(rooms) == 0 {
		rooms = cfg.Rooms
	}
	if len(rooms) == 0 {
		log.Fatal("No rooms to archive: pass --room or list rooms in the configuration file")
	}

	client := webexapi.NewRESTClient(cfg.APIBase, token, cfg.Timeout)
	httpClient := &http.Client{Timeout: cfg.Timeout}
	probe := attachments.NewProbe(httpClient, token)
	dl := downloader.New(httpClient, token, log)
	renderer := render.NewRenderer(render.NewEngine(), log)

	arch := archiver.New(client, probe, dl, renderer, log)

	log.Infof("Archiving %d room(s)", len(rooms))

	failures := 0
	for _, roomID := range rooms {
		bundle, err := arch.ArchiveRoom(roomID, cfg.Archive)
		if err != nil {
			// One room failing must not abort the batch
			log.WithError(err).Errorf("Archiving room %s failed", roomID)
			failures++
			continue
		}
		log.Infof("Room %s archived to %s", roomID, bundle)
	}

	if failures > 0 {
		os.Exit(1)
	}
}
