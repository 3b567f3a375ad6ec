package server

import (
	"crypto/tls"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/serisow/paperinsight/handlers"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"
)

type Deps struct {
	UploadStore    handlers.UploadStore
	PaperReader    handlers.PaperReader
	Ingestor       handlers.PaperIngestor
	Features       handlers.FeatureRunner
	MaxUploadBytes int64
}

func SetupRoutes(deps Deps, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()

	uploadHandler := handlers.NewUploadHandler(deps.UploadStore, deps.Ingestor, deps.MaxUploadBytes, logger)
	r.Handle("/upload-paper", uploadHandler).Methods("POST")

	paperHandler := handlers.NewPaperHandler(deps.PaperReader, logger)
	r.HandleFunc("/papers", paperHandler.ListPapers).Methods("GET")
	r.HandleFunc("/papers/{id}", paperHandler.GetPaper).Methods("GET")

	featureHandler := handlers.NewFeatureHandler(deps.Features, logger)
	r.HandleFunc("/papers/{id}/summarize", featureHandler.Summarize).Methods("POST")
	r.HandleFunc("/papers/{id}/extract-definitions", featureHandler.ExtractDefinitions).Methods("POST")
	r.HandleFunc("/papers/{id}/generate-questions", featureHandler.GenerateQuestions).Methods("POST")

	return r
}

// ServeProduction builds the server when we operate in a production environment.
func ServeProduction(n *negroni.Negroni, domains []string, certCacheDir string) {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(certCacheDir),
	}

	// Listen for HTTP requests on port 80 in a new goroutine. Use
	// autocertManager.HTTPHandler(nil) as the handler. This will send ACME
	// "http-01" challenge responses as necessary, and 302 redirect all other
	// requests to HTTPS.
	go func() {
		srv := &http.Server{
			Addr:         ":80",
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	tlsConfig := &tls.Config{
		GetCertificate:           autocertManager.GetCertificate,
		PreferServerCipherSuites: true,
		CurvePreferences:         []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:         ":443",
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	err := srv.ListenAndServeTLS("", "") // Key and cert provided automatically by autocert.
	log.Fatal(err)
}

// ServeDevelopment starts the server when we operate in a dev environment.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
