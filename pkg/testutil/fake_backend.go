package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// RecordedRequest is what the fake backend saw for one submission
type RecordedRequest struct {
	Path          string
	Text          string
	History       string
	HasHistory    bool
	ImageName     string
	ImageType     string
	ImageData     []byte
	Authorization string
	Accept        string
}

// FakeBackend serves the multi-agent endpoints over httptest. The reply is
// split into delta frames of chunkSize runes, and the encoded stream is
// written writeSize bytes at a time so frames straddle reads.
type FakeBackend struct {
	server *httptest.Server

	mu           sync.Mutex
	agent        string
	reply        string
	chunkSize    int
	writeSize    int
	chunkDelay   time.Duration
	failAfter    int    // Abort the connection after N frames (0 = no failure)
	errorMessage string // Sent as an error frame after the deltas
	status       int    // Non-zero answers every submission with this status
	omitEnd      bool
	requests     []RecordedRequest
}

// NewFakeBackend starts a backend that answers every submission as agent
func NewFakeBackend(agent, reply string) *FakeBackend {
	b := &FakeBackend{
		agent:     agent,
		reply:     reply,
		chunkSize: 8,
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.handle))
	return b
}

// URL is the API base URL, with trailing slash
func (b *FakeBackend) URL() string {
	return b.server.URL + "/api/"
}

func (b *FakeBackend) Close() {
	b.server.Close()
}

// SetChunkSize sets the number of runes per delta frame
func (b *FakeBackend) SetChunkSize(size int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chunkSize = size
}

// SetWriteSize splits the encoded stream into writes of n bytes
func (b *FakeBackend) SetWriteSize(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writeSize = n
}

// SetChunkDelay sets the delay between writes
func (b *FakeBackend) SetChunkDelay(delay time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chunkDelay = delay
}

// SetFailAfter drops the connection after n frames
func (b *FakeBackend) SetFailAfter(frames int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failAfter = frames
}

// SetErrorMessage makes the stream report a backend error after the deltas
func (b *FakeBackend) SetErrorMessage(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errorMessage = msg
}

// SetStatus answers every submission with status instead of a reply
func (b *FakeBackend) SetStatus(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
}

// OmitEnd closes the stream without an end frame
func (b *FakeBackend) OmitEnd() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.omitEnd = true
}

// Requests returns the submissions received so far
func (b *FakeBackend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// Frames is the encoded stream the backend sends for its reply
func (b *FakeBackend) Frames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames()
}

func (b *FakeBackend) frames() []string {
	var frames []string
	for _, delta := range splitRunes(b.reply, b.chunkSize) {
		frames = append(frames, dataFrame(map[string]string{"agent": b.agent, "delta": delta}))
	}
	if b.errorMessage != "" {
		frames = append(frames, dataFrame(map[string]string{"error": b.errorMessage}))
	}
	if !b.omitEnd {
		frames = append(frames, "event: end\ndata: {}\n\n")
	}
	return frames
}

func dataFrame(payload map[string]string) string {
	encoded, _ := json.Marshal(payload)
	return "data: " + string(encoded) + "\n\n"
}

func splitRunes(s string, size int) []string {
	if size <= 0 {
		size = len(s)
	}
	runes := []rune(s)
	var out []string
	for i := 0; i < len(runes); i += size {
		out = append(out, string(runes[i:min(i+size, len(runes))]))
	}
	return out
}

func (b *FakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	rec, err := record(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.requests = append(b.requests, rec)
	status := b.status
	frames := b.frames()
	writeSize, delay, failAfter := b.writeSize, b.chunkDelay, b.failAfter
	agent, reply := b.agent, b.reply
	b.mu.Unlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	switch r.URL.Path {
	case "/api/multiagent/chat/":
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": reply, "agent": agent})
		return
	case "/api/multiagent/stream/":
	default:
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	flusher, _ := w.(http.Flusher)

	if failAfter > 0 && failAfter < len(frames) {
		frames = frames[:failAfter]
	} else {
		failAfter = 0
	}

	stream := strings.Join(frames, "")
	size := writeSize
	if size <= 0 {
		size = len(stream)
	}
	for i := 0; i < len(stream); i += size {
		if delay > 0 && i > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Write([]byte(stream[i:min(i+size, len(stream))]))
		if flusher != nil {
			flusher.Flush()
		}
	}

	if failAfter > 0 {
		// Drop the connection mid-stream
		panic(http.ErrAbortHandler)
	}
}

func record(r *http.Request) (RecordedRequest, error) {
	rec := RecordedRequest{
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		Accept:        r.Header.Get("Accept"),
	}
	if r.Method != http.MethodPost {
		return rec, nil
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return rec, fmt.Errorf("bad multipart body: %w", err)
	}
	rec.Text = r.FormValue("text")
	if values, ok := r.MultipartForm.Value["history"]; ok && len(values) > 0 {
		rec.HasHistory = true
		rec.History = values[0]
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return rec, fmt.Errorf("bad image part: %w", err)
		}
		rec.ImageName = header.Filename
		rec.ImageType = header.Header.Get("Content-Type")
		rec.ImageData = data
	}
	return rec, nil
}
