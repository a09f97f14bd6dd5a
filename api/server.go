package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/matt-g-everett/ledbelt/belt"
	"github.com/rs/zerolog/log"
)

const (
	writeWait   = 2 * time.Second
	sendBacklog = 64
)

type progressMessage struct {
	Progress float64 `json:"progress"`
}

type errorMessage struct {
	Error string `json:"error"`
}

// Api serves the options and progress of a Belt over HTTP.
type Api struct {
	belt     *belt.Belt
	router   *mux.Router
	upgrader websocket.Upgrader
}

// NewApi creates an instance of an Api.
func NewApi(b *belt.Belt) *Api {
	a := new(Api)
	a.belt = b
	a.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	a.router = mux.NewRouter()
	a.router.HandleFunc("/options", a.getOptions).Methods(http.MethodGet)
	a.router.HandleFunc("/options", a.patchOptions).Methods(http.MethodPatch)
	a.router.HandleFunc("/run", a.run).Methods(http.MethodPost)
	a.router.HandleFunc("/progress", a.progress)
	return a
}

// Handler returns the router.
func (a *Api) Handler() http.Handler {
	return a.router
}

// Serve listens on addr until ctx is done.
func (a *Api) Serve(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: a.router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("context", "api").Str("addr", addr).Msg("listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (a *Api) getOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, belt.SettingsOf(a.belt.Options()))
}

func (a *Api) patchOptions(w http.ResponseWriter, r *http.Request) {
	var settings belt.Settings
	if err := belt.DecodeStrict(r.Body, &settings); err != nil {
		writeJSON(w, http.StatusBadRequest, errorMessage{err.Error()})
		return
	}
	p, err := settings.Partial()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorMessage{err.Error()})
		return
	}
	a.belt.SetAll(p)
	log.Info().Str("context", "api").Interface("options", settings).Msg("options_changed")
	writeJSON(w, http.StatusOK, belt.SettingsOf(a.belt.Options()))
}

func (a *Api) run(w http.ResponseWriter, r *http.Request) {
	a.belt.Run()
	w.WriteHeader(http.StatusAccepted)
}

// progress streams every update of the belt to a websocket client.
func (a *Api) progress(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Str("context", "api").Err(err).Msg("ws_upgrade_failed")
		return
	}
	id := uuid.NewString()
	logger := log.With().Str("context", "api").Str("client", id).Logger()
	logger.Info().Msg("ws_connected")

	send := make(chan float64, sendBacklog)
	sub := a.belt.On(belt.EventUpdate, func(v float64) {
		select {
		case send <- v:
		default:
			// Slow client, drop the frame.
		}
	})

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		a.belt.Off(belt.EventUpdate, sub)
		conn.Close()
		logger.Info().Msg("ws_disconnected")
	}()

	for {
		select {
		case <-closed:
			return
		case v := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(progressMessage{Progress: v}); err != nil {
				logger.Error().Err(err).Msg("ws_write_failed")
				return
			}
		}
	}
}
