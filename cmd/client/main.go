package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/pixelgl"
	log "github.com/sirupsen/logrus"

	"github.com/julian-ornelas/ai-open-source-prework/pkg/client"
	"github.com/julian-ornelas/ai-open-source-prework/pkg/shared"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config")
	addr := flag.String("addr", "", "address of server")
	protocol := flag.String("protocol", "", fmt.Sprintf("network protocol to use. available %s | %s | %s",
		shared.ProtocolWS, shared.ProtocolTCP, shared.ProtocolKCP))
	username := flag.String("username", "", "name to join the world with")
	worldImage := flag.String("world", "", "path to the world background image")
	debug := flag.Bool("d", false, "enable debug logging")
	flag.Parse()

	cfg, err := client.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *protocol != "" {
		cfg.Protocol = *protocol
	}
	if *username != "" {
		cfg.Username = *username
	}
	if *worldImage != "" {
		cfg.WorldImage = *worldImage
	}
	if cfg.Username == "" {
		log.Fatal("username must be provided")
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	if *debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		for sig := range c {
			log.Fatalf("detected sig: %s, shutting down", sig)
		}
	}()

	pixelgl.Run(func() {
		if err := run(cfg); err != nil {
			log.Fatal(err)
		}
	})
}

func run(cfg *client.Config) error {
	log.Infof("dialing %s over %s", cfg.Addr, cfg.Protocol)
	conn, err := shared.Dial(cfg.Protocol, cfg.Addr)
	if err != nil {
		// socket never opened; the user may retry
		return err
	}

	winCfg := pixelgl.WindowConfig{
		Title:     cfg.WindowTitle,
		Bounds:    pixel.R(0, 0, cfg.WindowWidth, cfg.WindowHeight),
		VSync:     true,
		Resizable: true,
	}
	win, err := pixelgl.NewWindow(winCfg)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating window: %v", err)
	}

	return client.NewClient(cfg, win, conn, nil).Run()
}
