// Command mockstt is a stand-in speech-to-text server for local testing.
// It accepts the capture daemon's multipart uploads and answers with a
// canned transcription describing the received audio.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type transcriptionResponse struct {
	Text string `json:"text"`
}

var (
	delay  = flag.Duration("delay", 200*time.Millisecond, "Simulated processing time per request")
	fail   = flag.Int("fail-every", 0, "Fail every Nth request with a 503, 0 disables")
	listen = flag.String("listen", ":9000", "Listen address")
)

var requestCount int

func transcribeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestCount++

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		http.Error(w, "Error getting audio file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	audioData, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Error reading audio file", http.StatusInternalServerError)
		return
	}

	log.Printf("request %d: file=%s size=%d sample_rate=%s auth=%q",
		requestCount, header.Filename, len(audioData),
		r.FormValue("sample_rate"), r.Header.Get("Authorization"))

	if *fail > 0 && requestCount%*fail == 0 {
		log.Printf("request %d: simulating server error", requestCount)
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}

	time.Sleep(*delay)

	response := transcriptionResponse{
		Text: fmt.Sprintf("mock transcription of %d bytes of audio", len(audioData)),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func main() {
	flag.Parse()

	http.HandleFunc("/transcribe", transcribeHandler)

	log.Printf("Mock STT server starting on %s", *listen)
	log.Printf("Point the capture daemon at http://localhost%s/transcribe", *listen)

	if err := http.ListenAndServe(*listen, nil); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
