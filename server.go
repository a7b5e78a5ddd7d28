package wsecho

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/ForeverZi/wsecho/encoder"
	"github.com/ForeverZi/wsecho/handler"
	"github.com/ForeverZi/wsecho/log"
	"github.com/ForeverZi/wsecho/wconn"
)

// NewServer builds the hub and routes for one process. A nil logger uses
// the process zap logger.
func NewServer(publicDir string, logger wconn.Logger, options ...wconn.Option) *Server {
	if logger == nil {
		logger = log.New()
	}
	echo := handler.NewTermEcho(logger)
	opts := append([]wconn.Option{
		wconn.SetLogger(logger),
		wconn.ProtocolOption(echo),
	}, options...)
	s := &Server{
		Logger:    logger,
		PublicDir: publicDir,
		Hub:       wconn.NewHub(opts...),
	}
	s.Router = s.routes()
	return s
}

// StatusPath reports hub state as JSON. It sits outside the names a public
// directory normally holds so it does not hide a static file.
const StatusPath = "/_status"

type Server struct {
	Logger    wconn.Logger
	PublicDir string
	Hub       *wconn.Hub
	Router    http.Handler
}

type statusResponse struct {
	Status    string    `json:"status"`
	Online    int       `json:"online"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.MatcherFunc(func(req *http.Request, _ *mux.RouteMatch) bool {
		return websocket.IsWebSocketUpgrade(req)
	}).Handler(s.Hub)
	r.Path(StatusPath).Methods(http.MethodGet).HandlerFunc(s.handleStatus)
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.PublicDir)))
	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	online, err := s.Hub.OnlineCount()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	data, err := encoder.JSON.Marshal(statusResponse{
		Status:    "running",
		Online:    online,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// ListenAndServe starts serving in the background and returns the server
// so the caller can shut it down.
func (s *Server) ListenAndServe(addr string) *http.Server {
	logger := s.Logger
	server := &http.Server{
		Handler: s.Router,
		Addr:    addr,
	}
	go func() {
		logger.Println("wsecho start", "listen", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Println("wsecho interrupt", "err", err)
		}
		logger.Println("wsecho server stopped")
	}()
	return server
}

// Close drops every live WebSocket connection. http.Server.Shutdown does not
// track hijacked connections, so call this after it.
func (s *Server) Close() {
	s.Hub.Close()
}
