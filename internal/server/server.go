package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/careloop/medassist/internal/api"
	"github.com/careloop/medassist/internal/catalog"
	"github.com/careloop/medassist/internal/classifier"
	"github.com/careloop/medassist/internal/config"
	"github.com/careloop/medassist/internal/diet"
	"github.com/careloop/medassist/internal/predict"
	"github.com/careloop/medassist/internal/refdata"
	"github.com/careloop/medassist/internal/session"
	"github.com/careloop/medassist/internal/severity"
	"github.com/careloop/medassist/internal/suggest"
	"github.com/gorilla/mux"
)

// Server holds all the components for the web application
type Server struct {
	cfg        config.Config
	httpServer *http.Server
	router     *mux.Router
	store      *refdata.Store
	engine     *predict.Engine
	sessions   *session.Manager
}

// New creates a new Server with all components initialized. The data
// pack and the trained model are both required; a model whose shape
// does not match the pack's symptom catalog is rejected up front.
func New(cfg config.Config) (*Server, error) {
	store, err := refdata.Open(cfg.DataPack)
	if err != nil {
		return nil, fmt.Errorf("opening data pack: %w", err)
	}

	model := classifier.New(classifier.DefaultConfig())
	if err := model.Load(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("loading model: %w", err)
	}

	cat := catalog.New(store.Symptoms())
	engine, err := predict.New(cat, model, store)
	if err != nil {
		return nil, fmt.Errorf("model does not match data pack: %w", err)
	}

	scorer := severity.NewScorer(store)
	suggester := suggest.New(store, cat)
	dietRec := diet.New(store.Diets(), diet.WithChooser(diet.SeededChooser(cfg.DietSeed)))

	sessions := session.NewManager(session.Deps{
		Predictor: engine,
		Scorer:    scorer,
		Suggester: suggester,
		Diet:      dietRec,
	})

	s := &Server{
		cfg:      cfg,
		router:   mux.NewRouter(),
		store:    store,
		engine:   engine,
		sessions: sessions,
	}

	apiRouter := s.router.PathPrefix("/api").Subrouter()
	apiHandler := api.NewHandler(engine, scorer, sessions, store, cfg)
	apiHandler.RegisterRoutes(apiRouter)

	log.Printf("Loaded data pack %s: %d symptoms, %d conditions",
		cfg.DataPack, cat.Size(), len(store.Conditions()))

	return s, nil
}

// Router exposes the configured routes, mainly for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start begins listening for HTTP connections
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server listening on http://localhost:%d", s.cfg.Port)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
