package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"pointquadtree/quadtree"
	"pointquadtree/simulation"
)

// Server exposes a World over HTTP and streams snapshots to websocket
// clients.
type Server struct {
	world    *simulation.World
	upgrader websocket.Upgrader

	clients   map[string]*client
	clientsMu sync.RWMutex
	nextID    int
}

type client struct {
	conn *websocket.Conn
	id   string
	// Serializes writes; gorilla connections allow one concurrent writer.
	mu sync.Mutex
}

func (c *client) send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// clientMessage is what a websocket client sends to steer the world.
type clientMessage struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
}

// snapshotMessage is what the server pushes to websocket clients.
type snapshotMessage struct {
	Type     string              `json:"type"`
	Time     int64               `json:"time"`
	Snapshot simulation.Snapshot `json:"snapshot"`
}

// PointsResponse is the body of a region query.
type PointsResponse struct {
	Points []simulation.PointView `json:"points"`
	Count  int                    `json:"count"`
	Region simulation.Box         `json:"region"`
}

func New(world *simulation.World) *Server {
	return &Server{
		world:   world,
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the routes wrapped with CORS support. Requests are logged
// to accessLog in combined log format unless it is nil.
func (s *Server) Handler(accessLog io.Writer) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/api/points", s.handleQuery).Methods("GET")
	router.HandleFunc("/api/points", s.handleAdd).Methods("POST")
	router.HandleFunc("/api/points", s.handleRemove).Methods("DELETE")
	router.HandleFunc("/api/tree", s.handleSnapshot).Methods("GET")
	router.HandleFunc("/ws", s.HandleWebSocket)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	var h http.Handler = cors(router)
	if accessLog != nil {
		h = handlers.CombinedLoggingHandler(accessLog, h)
	}
	return h
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing parameter %q", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %q: %w", name, err)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.Warningf("writing response: %v", err)
	}
}

// handleQuery answers GET /api/points?x=&y=[&r=]. Without r the world's
// collision area is used.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	x, err := floatParam(r, "x")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	y, err := floatParam(r, "y")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var points []simulation.PointView
	var region quadtree.AABB
	if r.URL.Query().Has("r") {
		radius, err := floatParam(r, "r")
		if err != nil || radius < 0 {
			http.Error(w, "parameter \"r\" must be a non-negative number", http.StatusBadRequest)
			return
		}
		region = quadtree.NewAABB(quadtree.Point{X: x, Y: y}, quadtree.Point{X: radius, Y: radius})
		points = s.world.Region(region)
	} else {
		points, region = s.world.Nearby(x, y)
	}

	writeJSON(w, http.StatusOK, PointsResponse{
		Points: points,
		Count:  len(points),
		Region: simulation.BoxOf(region),
	})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X  float64 `json:"x"`
		Y  float64 `json:"y"`
		VX float64 `json:"vx"`
		VY float64 `json:"vy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	view, ok := s.world.Add(req.X, req.Y, req.VX, req.VY)
	if !ok {
		http.Error(w, "point is outside the world", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	x, err := floatParam(r, "x")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	y, err := floatParam(r, "y")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": s.world.RemoveNear(x, y)})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.Snapshot())
}

// HandleWebSocket registers a client, applies the messages it sends and
// answers each one with a fresh snapshot.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("websocket upgrade: %v", err)
		return
	}

	s.clientsMu.Lock()
	s.nextID++
	c := &client{conn: conn, id: fmt.Sprintf("client-%d", s.nextID)}
	s.clients[c.id] = c
	s.clientsMu.Unlock()
	glog.Infof("websocket client connected: %s", c.id)

	defer func() {
		s.drop(c)
		glog.Infof("websocket client disconnected: %s", c.id)
	}()

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			glog.Warningf("%s sent invalid message: %v", c.id, err)
			continue
		}
		s.apply(c, msg)
		if err := s.sendSnapshot(c); err != nil {
			glog.Warningf("sending to %s: %v", c.id, err)
			return
		}
	}
}

func (s *Server) apply(c *client, msg clientMessage) {
	switch msg.Type {
	case "insert_rate":
		s.world.SetInsertRate(msg.Value)
	case "collision_radius":
		s.world.SetCollisionRadius(msg.Value)
	case "add":
		s.world.Add(msg.X, msg.Y, msg.VX, msg.VY)
	case "remove":
		s.world.RemoveNear(msg.X, msg.Y)
	case "moving":
		s.world.SetMoving(msg.Value != 0)
	case "capacity":
		if n := int(msg.Value); n >= 1 {
			s.world.Rebuild(n)
		}
	case "snapshot":
	default:
		glog.Warningf("%s sent unknown message type %q", c.id, msg.Type)
	}
}

func (s *Server) snapshotJSON() ([]byte, error) {
	return json.Marshal(snapshotMessage{
		Type:     "snapshot",
		Time:     time.Now().UnixMilli(),
		Snapshot: s.world.Snapshot(),
	})
}

func (s *Server) sendSnapshot(c *client) error {
	msg, err := s.snapshotJSON()
	if err != nil {
		return err
	}
	return c.send(msg)
}

// Broadcast sends the current snapshot to every connected client. Clients
// that cannot be written to are disconnected.
func (s *Server) Broadcast() {
	s.clientsMu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.clientsMu.RUnlock()
	if len(clients) == 0 {
		return
	}

	msg, err := s.snapshotJSON()
	if err != nil {
		glog.Errorf("marshaling snapshot: %v", err)
		return
	}
	for _, c := range clients {
		if err := c.send(msg); err != nil {
			glog.Warningf("sending to %s: %v", c.id, err)
			s.drop(c)
		}
	}
}

func (s *Server) drop(c *client) {
	s.clientsMu.Lock()
	delete(s.clients, c.id)
	s.clientsMu.Unlock()
	c.conn.Close()
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Close disconnects every websocket client.
func (s *Server) Close() {
	s.clientsMu.Lock()
	clients := s.clients
	s.clients = make(map[string]*client)
	s.clientsMu.Unlock()
	for _, c := range clients {
		c.conn.Close()
	}
}
