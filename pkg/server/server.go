package server

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"warehouse-in-go/pkg/config"
	"warehouse-in-go/pkg/observations"
	"warehouse-in-go/pkg/server/store"
	"warehouse-in-go/pkg/storage"
)

// Stores bundles the storage interfaces the endpoints need.
type Stores struct {
	Projects     store.ProjectsStore
	Releases     store.ReleasesStore
	Files        store.FilesStore
	Users        store.UsersStore
	Observations store.ObservationsStore
	Health       store.HealthStore
}

type Server struct {
	Stores    Stores
	Storage   storage.FileStorage
	Evaluator *observations.Evaluator
	Config    *config.WarehouseConfig
	Router    *mux.Router
	DB        *gorm.DB
	srv       *http.Server
}

func NewServer(
	stores Stores,
	fileStorage storage.FileStorage,
	evaluator *observations.Evaluator,
	cfg *config.WarehouseConfig,
	db *gorm.DB,
	host string,
	port string,
) *Server {

	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		// Reads are generous to accommodate large archive uploads.
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  5 * time.Minute,
	}

	return &Server{
		Stores:    stores,
		Storage:   fileStorage,
		Evaluator: evaluator,
		Config:    cfg,
		Router:    router,
		DB:        db,
		srv:       srv,
	}
}

func (s Server) Start() error {
	return s.srv.ListenAndServe()
}
