package main

import (
	"flag"
	"log"
	"os"
	"os/user"
	"runtime"

	"raycast-place/internal/game"
	"raycast-place/internal/maps"
	"raycast-place/internal/persistence"
	"raycast-place/internal/render"
	"raycast-place/internal/tui"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	mapFile := flag.String("map", "", "JSON map file (default: built-in sample)")
	atlasFile := flag.String("atlas", "", "wall texture atlas (optional)")
	dbFile := flag.String("db", "", "JSON pose file; empty keeps poses in memory")
	seed := flag.Int64("seed", 1, "palette seed for walls without a legend color")
	logFile := flag.String("log", "play.log", "log file (the terminal is taken by the view)")
	flag.Parse()

	if f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	m := maps.DefaultMap()
	if *mapFile != "" {
		var err error
		if m, err = maps.LoadMap(*mapFile); err != nil {
			log.Fatalf("Load map: %v", err)
		}
	}

	var atlas *render.Atlas
	if *atlasFile != "" {
		var err error
		if atlas, err = render.LoadAtlasFile(*atlasFile); err != nil {
			log.Printf("Textures disabled: %v", err)
			atlas = nil
		}
	}

	var store persistence.Storage = persistence.NewMemoryStore()
	if *dbFile != "" {
		js, err := persistence.NewJSONStore(*dbFile)
		if err != nil {
			log.Fatalf("Failed to initialize persistence: %v", err)
		}
		store = js
	}
	defer store.Close()

	world := game.NewWorld(map[string]*maps.Map{m.Name: m}, m.Name)
	cfg := render.DefaultConfig()
	cfg.Workers = runtime.NumCPU()
	assets, err := game.NewAssets(world, *seed, atlas, cfg)
	if err != nil {
		log.Fatalf("Assets: %v", err)
	}
	if _, err := assets.NewSession(m); err != nil {
		log.Fatalf("Map %s cannot be rendered: %v", m.Name, err)
	}

	name := "player"
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username
	}

	gameLoop := game.NewGameLoop(world, store)
	go gameLoop.Run()
	defer gameLoop.Stop()

	screen, err := tui.NewScreen()
	if err != nil {
		log.Fatalf("Terminal: %v", err)
	}

	playerID, _, renderCh := gameLoop.AddPlayer(name)
	quit := make(chan struct{})
	go screen.Pump(playerID, gameLoop.InputChan(), quit)

	err = game.Watch(quit, renderCh, playerID, assets, world, screen)
	screen.Fini()
	gameLoop.RemovePlayer(playerID)
	if err != nil {
		log.Fatalf("Render: %v", err)
	}
}
