package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/ironsheep/retrotape-tracker/internal/detection"
	"github.com/ironsheep/retrotape-tracker/internal/imaging"
	"github.com/ironsheep/retrotape-tracker/internal/tracker"
)

const maxViewerMsg = 512

// Upgrader upgrades viewer connections; any origin may watch.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// FrameMessage is the JSON sent to viewers for every processed frame.
type FrameMessage struct {
	Seq      uint64            `json:"seq"`
	Time     time.Time         `json:"time"`
	Module   string            `json:"module"`
	Target   *detection.Target `json:"target,omitempty"`
	Lines    int               `json:"lines"`
	Serial   string            `json:"serial,omitempty"`
	Image    string            `json:"image,omitempty"`
	MimeType string            `json:"mime_type,omitempty"`
}

// Status is served on /status.
type Status struct {
	Module     string            `json:"module"`
	Frames     uint64            `json:"frames"`
	Found      uint64            `json:"found"`
	Clients    int               `json:"clients"`
	LastSeq    uint64            `json:"last_seq"`
	LastTarget *detection.Target `json:"last_target,omitempty"`
	LastSerial string            `json:"last_serial,omitempty"`
}

// Server publishes module results to viewers.
type Server struct {
	hub    *Hub
	module string
	logger *slog.Logger

	mu     sync.RWMutex
	status Status
}

// NewServer creates a viewer server for the named module.
func NewServer(hub *Hub, module string, logger *slog.Logger) *Server {
	return &Server{
		hub:    hub,
		module: module,
		logger: logger,
		status: Status{Module: module},
	}
}

// Handler returns the HTTP routes: /ws for viewers, /healthz and /status.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleViewer)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

// Publish records res and sends it to every viewer. The output frame, when
// present, is sent as a base64 JPEG.
func (s *Server) Publish(res *tracker.Result) error {
	s.mu.Lock()
	s.status.Frames++
	s.status.LastSeq = res.Seq
	if res.Found() {
		s.status.Found++
		s.status.LastTarget = res.Target
		s.status.LastSerial = res.Serial
	}
	s.mu.Unlock()

	if s.hub.ClientCount() == 0 {
		return nil
	}

	msg := FrameMessage{
		Seq:    res.Seq,
		Time:   res.Time,
		Module: s.module,
		Target: res.Target,
		Lines:  len(res.Lines),
		Serial: res.Serial,
	}
	if res.Output != nil {
		img, err := imaging.EncodeBase64(res.Output, imaging.FormatJPEG)
		if err != nil {
			return errors.Wrap(err, "encode viewer frame")
		}
		msg.Image = img
		msg.MimeType = imaging.FormatJPEG.MimeType()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal viewer frame")
	}
	if !s.hub.Broadcast(data) {
		s.logger.Debug("viewers behind, frame dropped", "seq", res.Seq)
	}
	return nil
}

// Status returns a snapshot of the publishing counters.
func (s *Server) Status() Status {
	s.mu.RLock()
	st := s.status
	s.mu.RUnlock()
	st.Clients = s.hub.ClientCount()
	return st
}

// ListenAndServe runs the hub and serves HTTP on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("viewer stream listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "viewer stream")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown viewer stream")
		}
		return nil
	}
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	connection, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	connection.SetReadLimit(maxViewerMsg)
	wait := s.hub.pongWait
	connection.SetReadDeadline(time.Now().Add(wait))
	connection.SetPongHandler(func(string) error {
		return connection.SetReadDeadline(time.Now().Add(wait))
	})

	if !s.hub.Register(connection) {
		connection.Close()
		return
	}
	defer s.hub.Unregister(connection)

	// Viewers only listen; reading keeps control frames flowing and notices
	// the close.
	for {
		if _, _, err := connection.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("viewer read ended", "error", err)
			}
			return
		}
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Status()); err != nil {
		s.logger.Warn("failed to write status", "error", err)
	}
}
