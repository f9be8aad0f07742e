package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/jsphweid/accompanist/export"
	"github.com/jsphweid/accompanist/logger"
	"github.com/jsphweid/accompanist/midi"
	"github.com/jsphweid/accompanist/model"
	"github.com/jsphweid/accompanist/musicxml"
	"github.com/jsphweid/accompanist/pipeline"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

const maxBodyBytes = 32 << 20

// one accompaniment at a time per process
var runMu sync.Mutex

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves accompaniment generation over HTTP",
	Long: `Serves accompaniment generation over HTTP.

  POST /accompaniment   MusicXML body, returns MusicXML (or MIDI with ?format=midi)
  GET  /health`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), ":"+cfg.Port)
	},
}

func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/health", HandleHealth).Methods(http.MethodGet)
	router.HandleFunc("/accompaniment", HandleAccompaniment).Methods(http.MethodPost)
	return cors.Default().Handler(router)
}

func serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Listening", logger.Fields{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{Status: "ok", Version: Version})
}

// HandleAccompaniment reads a MusicXML score from the request body and
// responds with the score plus its accompaniment.
func HandleAccompaniment(w http.ResponseWriter, r *http.Request) {
	format := export.MusicXML
	if f := r.URL.Query().Get("format"); f != "" {
		var err error
		if format, err = export.ParseFormat(f); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	score, err := musicxml.Read(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not parse MusicXML: "+err.Error())
		return
	}

	runMu.Lock()
	defer runMu.Unlock()

	combined, err := pipeline.Accompany(score)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var buf bytes.Buffer
	contentType := "application/vnd.recordare.musicxml+xml"
	if format == export.Midi {
		contentType = "audio/midi"
		err = writeMidi(&buf, combined)
	} else {
		err = musicxml.Write(&buf, combined)
	}
	if err != nil {
		logger.Error("Could not encode response", err, logger.Fields{"format": string(format)})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func writeMidi(buf *bytes.Buffer, score *model.Score) error {
	s, err := midi.FromScore(score)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(buf)
	return err
}
