package handler

import (
	"net/http"
	"sync"

	"cafebook/config"
	"cafebook/di"
	"cafebook/shared/logger"
	transportHTTP "cafebook/transport/http"
)

var (
	server *transportHTTP.HTTP
	once   sync.Once
)

// Handler serves the HTTP front end from a serverless function. The
// scheduler does not run here; an external cron calls POST /v1/reminders/run.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		server = di.InitializeService()
	})

	server.ServeHTTP(w, r)
}
