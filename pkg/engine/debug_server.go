package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"reflect"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

// DebugServer serves a window's tree, frame trace and metrics over HTTP.
type DebugServer struct {
	window   *Window
	gatherer prometheus.Gatherer

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewDebugServer returns a server for w. A nil gatherer disables /metrics.
func NewDebugServer(w *Window, g prometheus.Gatherer) *DebugServer {
	return &DebugServer{window: w, gatherer: g}
}

// LayoutNode represents a node in the serialized layout tree.
// Uses SafeFloat for dimensions that may contain Inf/NaN from layout issues.
type LayoutNode struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Size     SafeSize     `json:"size"`
	Clamp    *SafeClamp   `json:"clamp,omitempty"`
	Offset   SafeOffset   `json:"offset"`
	Depth    int          `json:"depth"`
	Sized    bool         `json:"sized"`
	Children []LayoutNode `json:"children,omitempty"`
}

// SafeFloat wraps a float64 to handle Inf/NaN in JSON encoding.
type SafeFloat float64

func (f SafeFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 1) {
		return []byte(`"Infinity"`), nil
	}
	if math.IsInf(v, -1) {
		return []byte(`"-Infinity"`), nil
	}
	if math.IsNaN(v) {
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(v)
}

// SafeSize is a JSON-safe version of graphics.Size.
type SafeSize struct {
	Width  SafeFloat `json:"width"`
	Height SafeFloat `json:"height"`
}

// SafeOffset is a JSON-safe version of graphics.Offset.
type SafeOffset struct {
	X SafeFloat `json:"x"`
	Y SafeFloat `json:"y"`
}

// SafeClamp is a JSON-safe version of layout.BoxClamp.
type SafeClamp struct {
	Min SafeSize `json:"min"`
	Max SafeSize `json:"max"`
}

func safeSize(s graphics.Size) SafeSize {
	return SafeSize{Width: SafeFloat(s.Width), Height: SafeFloat(s.Height)}
}

// Handler returns the server's routes.
func (s *DebugServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/tree", s.handleTree)
	mux.HandleFunc("/layout", s.handleLayout)
	mux.HandleFunc("/frames", s.handleFrames)
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// Start listens on addr and serves in the background. It returns the bound
// address, which differs from addr when the port is 0.
func (s *DebugServer) Start(addr string) (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return s.listener.Addr(), nil
	}

	// Bind listener first to fail fast on port conflicts
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("debug server listen: %w", err)
	}
	server := &http.Server{Handler: s.Handler()}
	s.server, s.listener = server, listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.mu.Lock()
			s.server, s.listener = nil, nil
			s.mu.Unlock()
			if l := s.window.logger; l != nil {
				l.Error("debug server stopped", "err", err)
			}
		}
	}()
	return listener.Addr(), nil
}

// Stop gracefully shuts the server down.
func (s *DebugServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.server, s.listener = nil, nil
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// maxTreeDepth limits recursion depth to prevent stack overflow from malformed trees.
const maxTreeDepth = 500

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *DebugServer) handleTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	text := s.window.DisplayTree()
	if text == "" {
		http.Error(w, "no tree", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

func (s *DebugServer) handleLayout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Recover from panics during serialization
	defer func() {
		if rec := recover(); rec != nil {
			http.Error(w, fmt.Sprintf("panic: %v", rec), http.StatusInternalServerError)
		}
	}()

	var (
		node LayoutNode
		ok   bool
	)
	s.window.withFrameLock(func(t *core.Tree) {
		if root := t.Root(); !root.IsZero() {
			node, ok = serializeLayout(t, root, 0), true
		}
	})
	if !ok {
		http.Error(w, "no tree", http.StatusServiceUnavailable)
		return
	}

	// Encode to buffer first so we can catch errors
	data, err := json.MarshalIndent(node, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *DebugServer) handleFrames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.window.Frames())
}

func serializeLayout(t *core.Tree, id tree.NodeID, depth int) LayoutNode {
	info, _ := t.Store().Info(id)
	node := LayoutNode{
		ID:     id.String(),
		Type:   reflect.TypeOf(layout.Unwrap(t.Arena().MustGet(id))).String(),
		Size:   safeSize(info.Size),
		Offset: SafeOffset{X: SafeFloat(info.Position.X), Y: SafeFloat(info.Position.Y)},
		Depth:  depth,
		Sized:  info.Sized,
	}
	if info.HasClamp {
		node.Clamp = &SafeClamp{Min: safeSize(info.Clamp.Min), Max: safeSize(info.Clamp.Max)}
	}
	if depth >= maxTreeDepth {
		return node
	}
	for c := range t.Arena().Children(id) {
		node.Children = append(node.Children, serializeLayout(t, c, depth+1))
	}
	return node
}
