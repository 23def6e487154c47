package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"raycast-place/internal/game"
	"raycast-place/internal/maps"
	"raycast-place/internal/persistence"
	"raycast-place/internal/render"
	"raycast-place/internal/server"
)

const (
	defaultAddr   = ":2222"
	defaultWSAddr = ":8080"
	hostKeyPath   = "host_key"
	mapsDir       = "assets/maps"
	atlasPath     = "assets/walltext.png"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	addr := flag.String("addr", defaultAddr, "SSH listen address (PORT overrides)")
	wsAddr := flag.String("ws", defaultWSAddr, "websocket listen address, empty to disable (WS_ADDR overrides)")
	mapsPath := flag.String("maps", mapsDir, "directory of JSON maps")
	defaultMap := flag.String("map", "", "map new players spawn on (default: first by name)")
	atlasFile := flag.String("atlas", atlasPath, "wall texture atlas, empty to disable")
	seed := flag.Int64("seed", 1, "palette seed for walls without a legend color")
	workers := flag.Int("workers", runtime.NumCPU(), "column workers per frame")
	flag.Parse()

	if port := os.Getenv("PORT"); port != "" {
		*addr = ":" + port
	}
	if ws, ok := os.LookupEnv("WS_ADDR"); ok {
		*wsAddr = ws
	}

	// Generate host key if it doesn't exist
	if err := ensureHostKey(hostKeyPath); err != nil {
		log.Fatalf("Host key error: %v", err)
	}

	// Load all maps from directory
	allMaps, err := maps.LoadMaps(*mapsPath)
	if err != nil {
		log.Printf("Could not load maps from %s: %v; using default map", *mapsPath, err)
		dm := maps.DefaultMap()
		allMaps = map[string]*maps.Map{dm.Name: dm}
	}
	names := make([]string, 0, len(allMaps))
	for name, m := range allMaps {
		names = append(names, name)
		log.Printf("Map loaded: %s (%dx%d, %d legend entries)", name, m.Width, m.Height, len(m.Legend))
	}
	sort.Strings(names)
	if *defaultMap == "" {
		*defaultMap = names[0]
	}
	if _, ok := allMaps[*defaultMap]; !ok {
		log.Fatalf("Default map %q not found", *defaultMap)
	}

	// Textures are optional: a bad atlas falls back to flat colors
	var atlas *render.Atlas
	if *atlasFile != "" {
		atlas, err = render.LoadAtlasFile(*atlasFile)
		if err != nil {
			log.Printf("Textures disabled: %v", err)
			atlas = nil
		} else {
			log.Printf("Atlas loaded: %d textures of %dpx", atlas.TileCount(), atlas.TileSize())
		}
	}

	store, err := openStore()
	if err != nil {
		log.Fatalf("Failed to initialize persistence: %v", err)
	}
	defer store.Close()

	world := game.NewWorld(allMaps, *defaultMap)
	cfg := render.DefaultConfig()
	cfg.Workers = *workers
	assets, err := game.NewAssets(world, *seed, atlas, cfg)
	if err != nil {
		log.Fatalf("Assets: %v", err)
	}
	for name, m := range allMaps {
		if _, err := assets.NewSession(m); err != nil {
			log.Fatalf("Map %s cannot be rendered: %v", name, err)
		}
	}

	gameLoop := game.NewGameLoop(world, store)
	go gameLoop.Run()
	defer gameLoop.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sshServer := server.NewSSHServer(*addr, hostKeyPath, gameLoop, assets)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(sshServer.Start)
	g.Go(func() error {
		<-ctx.Done()
		return sshServer.Close()
	})

	if *wsAddr != "" {
		wsServer := server.NewWSServer(*wsAddr, gameLoop, assets)
		g.Go(wsServer.Start)
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return wsServer.Shutdown(shutdownCtx)
		})
	}

	log.Printf("Starting Raycast Place; connect with: ssh -t -p %s YourName@localhost", (*addr)[1:])
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Server error: %v", err)
	}
	log.Println("Shut down")
}

// openStore picks the pose store from DB_TYPE: "postgres" uses DATABASE_URL,
// "memory" keeps poses in process, anything else writes DB_FILE.
func openStore() (persistence.Storage, error) {
	switch os.Getenv("DB_TYPE") {
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			dsn = "host=localhost user=raycast password=raycast dbname=raycast_place sslmode=disable"
		}
		log.Println("Using PostgreSQL persistence")
		return persistence.NewPostgresStore(dsn)
	case "memory":
		log.Println("Using in-memory persistence")
		return persistence.NewMemoryStore(), nil
	default:
		dbFile := os.Getenv("DB_FILE")
		if dbFile == "" {
			dbFile = "poses.json"
		}
		log.Println("Using JSON persistence")
		return persistence.NewJSONStore(dbFile)
	}
}

func ensureHostKey(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // key already exists
	}

	log.Println("Generating new host key...")
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}

	keyBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return pem.Encode(f, &pem.Block{Type: "PRIVATE KEY", Bytes: keyBytes})
}
