package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/TesterNaN/ccmz2mid/constants"
	"github.com/TesterNaN/ccmz2mid/convert"
	"github.com/TesterNaN/ccmz2mid/model"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the conversion server",
	Long:  `Runs the conversion server`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: detail})
}

// HandleConvert converts a ccmz container posted as the request body and
// replies with the MIDI bytes. Resolution comes from the query string.
func HandleConvert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "empty request body")
		return
	}

	resolution := uint16(constants.DefaultResolution)
	if q := r.URL.Query().Get("resolution"); q != "" {
		v, err := strconv.ParseUint(q, 10, 16)
		if err != nil || v == 0 {
			writeError(w, http.StatusBadRequest, "invalid resolution")
			return
		}
		resolution = uint16(v)
	}

	midi, err := convert.Convert(body, resolution)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "audio/midi")
	w.Write(midi)
}

func serve() {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/convert", HandleConvert).Methods("POST")
	handler := cors.Default().Handler(router)
	fmt.Printf("Listening on %v\n", serveAddr)
	log.Fatal(http.ListenAndServe(serveAddr, handler))
}
