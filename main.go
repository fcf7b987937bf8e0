package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/careloop/medassist/internal/catalog"
	"github.com/careloop/medassist/internal/chat"
	"github.com/careloop/medassist/internal/classifier"
	"github.com/careloop/medassist/internal/config"
	"github.com/careloop/medassist/internal/diet"
	"github.com/careloop/medassist/internal/predict"
	"github.com/careloop/medassist/internal/refdata"
	"github.com/careloop/medassist/internal/server"
	"github.com/careloop/medassist/internal/session"
	"github.com/careloop/medassist/internal/severity"
	"github.com/careloop/medassist/internal/suggest"
)

var version = "dev"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to YAML configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	pack := flag.String("pack", "", "Path to the SQLite data pack (overrides config)")
	modelPath := flag.String("model", "", "Path to the trained model file (overrides config)")
	importDir := flag.String("import-csv", "", "Import reference CSVs from this directory into the data pack, then exit")
	train := flag.Bool("train", false, "Train the model from the data pack and save it, then exit")
	chatMode := flag.Bool("chat", false, "Run an interactive symptom check in the terminal instead of serving HTTP")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("MedAssist v%s\n", version)
		os.Exit(0)
	}

	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.Version = version
	if *port != 0 {
		cfg.Port = *port
	}
	if *pack != "" {
		cfg.DataPack = *pack
	}
	if *modelPath != "" {
		cfg.ModelPath = *modelPath
	}

	if *importDir != "" {
		if err := refdata.ImportCSVDir(*importDir, cfg.DataPack); err != nil {
			log.Fatalf("CSV import failed: %v", err)
		}
		log.Printf("Imported reference data from %s into %s", *importDir, cfg.DataPack)
		return
	}

	if *train {
		if err := trainModel(cfg); err != nil {
			log.Fatalf("Training failed: %v", err)
		}
		return
	}

	if *chatMode {
		deps, err := buildDeps(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		if err := chat.New(deps, os.Stdin, os.Stdout).Run(); err != nil {
			log.Fatalf("Chat error: %v", err)
		}
		return
	}

	// Find an available port (try up to 10 ports starting from the requested one)
	availablePort, err := findAvailablePort(cfg.Port, 10)
	if err != nil {
		log.Fatalf("Failed to find available port: %v", err)
	}
	if availablePort != cfg.Port {
		log.Printf("Port %d in use, using port %d instead", cfg.Port, availablePort)
		cfg.Port = availablePort
	}

	log.Printf("MedAssist v%s starting on port %d", version, cfg.Port)

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-stop:
		log.Printf("Received %v signal, shutting down...", sig)
		if err := srv.Stop(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}
}

// trainModel fits the classifier from the data pack's association
// counts and writes the result to the configured model path.
func trainModel(cfg config.Config) error {
	store, err := refdata.Open(cfg.DataPack)
	if err != nil {
		return fmt.Errorf("opening data pack: %w", err)
	}

	cat := catalog.New(store.Symptoms())
	model := classifier.New(classifier.DefaultConfig())
	if err := model.Fit(store.AssociationCounts(), cat.Symptoms()); err != nil {
		return fmt.Errorf("fitting model: %w", err)
	}
	if err := model.Save(cfg.ModelPath); err != nil {
		return fmt.Errorf("saving model: %w", err)
	}

	log.Printf("Trained on %d conditions x %d symptoms, saved to %s",
		len(model.Classes()), cat.Size(), cfg.ModelPath)
	return nil
}

// buildDeps wires the session collaborators for terminal mode.
func buildDeps(cfg config.Config) (session.Deps, error) {
	store, err := refdata.Open(cfg.DataPack)
	if err != nil {
		return session.Deps{}, fmt.Errorf("opening data pack: %w", err)
	}

	model := classifier.New(classifier.DefaultConfig())
	if err := model.Load(cfg.ModelPath); err != nil {
		return session.Deps{}, fmt.Errorf("loading model: %w", err)
	}

	cat := catalog.New(store.Symptoms())
	engine, err := predict.New(cat, model, store)
	if err != nil {
		return session.Deps{}, fmt.Errorf("model does not match data pack: %w", err)
	}

	return session.Deps{
		Predictor: engine,
		Scorer:    severity.NewScorer(store),
		Suggester: suggest.New(store, cat),
		Diet:      diet.New(store.Diets(), diet.WithChooser(diet.SeededChooser(cfg.DietSeed))),
	}, nil
}

// findAvailablePort finds an available port, starting from the given port.
// If the port is in use, it tries subsequent ports up to maxAttempts times.
func findAvailablePort(startPort int, maxAttempts int) (int, error) {
	for i := 0; i < maxAttempts; i++ {
		port := startPort + i
		addr := fmt.Sprintf(":%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port found after %d attempts starting from %d", maxAttempts, startPort)
}
