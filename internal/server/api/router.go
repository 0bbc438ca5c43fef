package api

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Request is one parsed command line.
type Request struct {
	Ctx    context.Context
	Params map[string]string
	Args   []string
}

// Response carries the JSON body written back to the client.
type Response struct {
	JSON string
}

// HandlerFunc serves one command. A returned error is sent to the client as
// {"error": "..."}.
type HandlerFunc func(req *Request, res *Response, logger *slog.Logger) error

type route struct {
	segments []string
	handler  HandlerFunc
}

// Router matches slash separated paths. A segment written as {name} captures
// the corresponding path element into Request.Params.
type Router struct {
	mu     sync.RWMutex
	routes []route
}

func NewRouter() *Router { return &Router{} }

// Register adds a handler for pattern. Patterns are matched case-insensitively.
func (r *Router) Register(pattern string, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route{segments: split(strings.ToLower(pattern)), handler: h})
}

// Match returns the handler registered for path and the captured parameters.
func (r *Router) Match(path string) (HandlerFunc, map[string]string) {
	segs := split(strings.ToLower(path))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rt := range r.routes {
		if params, ok := match(rt.segments, segs); ok {
			return rt.handler, params
		}
	}
	return nil, nil
}

// Paths lists the registered patterns in registration order.
func (r *Router) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, strings.Join(rt.segments, "/"))
	}
	return out
}

func split(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}

func match(pattern, path []string) (map[string]string, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			params[seg[1:len(seg)-1]] = path[i]
			continue
		}
		if seg != path[i] {
			return nil, false
		}
	}
	return params, true
}
