package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	compiler "wick-go/packages/compiler/src"
	"wick-go/packages/compiler/src/component"
	"wick-go/packages/compiler/src/config"
)

// reload is pushed to every connected page when a component changes.
type reload struct {
	Component string `json:"component"`
	Hash      string `json:"hash"`
}

// server serves the compiled modules of a project and notifies pages of
// recompiled components.
type server struct {
	compiler *compiler.Compiler

	mu        sync.RWMutex
	artifacts map[string]*compiler.Artifact

	upgrader websocket.Upgrader
	connsMu  sync.Mutex
	conns    map[*websocket.Conn]bool
}

func newServer(c *compiler.Compiler) *server {
	return &server{
		compiler:  c,
		artifacts: map[string]*compiler.Artifact{},
		conns:     map[*websocket.Conn]bool{},
	}
}

func runServe(p *config.Project) error {
	debounce, err := time.ParseDuration(p.Serve.Debounce)
	if err != nil {
		return fmt.Errorf("serve debounce: %w", err)
	}
	c, err := compiler.NewCompiler(p)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := newServer(c)
	if _, err := s.rebuild(ctx); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := s.watchDirs(watcher); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/components/", s.serveComponent)
	mux.HandleFunc("/__reload", s.serveReload)
	httpServer := &http.Server{Addr: p.Serve.Addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("serving %s on http://%s", p.OutputDir(), p.Serve.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeConns()
		return httpServer.Shutdown(shutdown)
	})
	g.Go(func() error {
		return s.watch(ctx, watcher, debounce)
	})
	return g.Wait()
}

// watchDirs adds every source directory to w. Hidden directories and the
// output directory are skipped.
func (s *server) watchDirs(w *fsnotify.Watcher) error {
	output := s.compiler.Project.OutputDir()
	for _, root := range s.compiler.Project.SourceDirPaths() {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return err
			}
			if path == output || (path != root && strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return w.Add(path)
		})
		if err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
	}
	return nil
}

// relevant reports whether ev can change the compiled project.
func (s *server) relevant(ev fsnotify.Event) bool {
	if strings.HasPrefix(ev.Name, s.compiler.Project.OutputDir()) {
		return false
	}
	if filepath.Ext(ev.Name) == compiler.SourceExt {
		return true
	}
	// a new directory may hold sources
	return ev.Has(fsnotify.Create)
}

// watch recompiles the project after source events settle for debounce.
func (s *server) watch(ctx context.Context, w *fsnotify.Watcher, debounce time.Duration) error {
	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warningf("watch: %s", err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !s.relevant(ev) {
				continue
			}
			log.Debugf("%s %s", ev.Op, ev.Name)
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := s.watchDirs(w); err != nil {
						log.Warningf("%s", err)
					}
				}
			}
			timer.Reset(debounce)
		case <-timer.C:
			s.reload(ctx)
		}
	}
}

// reload recompiles the project and notifies pages of updated components.
func (s *server) reload(ctx context.Context) {
	s.compiler.Reset()
	updated, err := s.rebuild(ctx)
	if err != nil {
		log.Warningf("%s", err)
		return
	}
	for _, a := range updated {
		s.broadcast(reload{Component: a.Name, Hash: component.HashString(a.Component.Hash)})
	}
}

// rebuild compiles the project, writes the output and returns the
// artifacts whose generated code changed.
func (s *server) rebuild(ctx context.Context) ([]*compiler.Artifact, error) {
	artifacts, err := compileProject(ctx, s.compiler)
	if err != nil {
		return nil, err
	}
	if err := s.compiler.Write(artifacts); err != nil {
		return nil, err
	}

	next := map[string]*compiler.Artifact{}
	var updated []*compiler.Artifact
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range artifacts {
		next[a.Name] = a
		if old, ok := s.artifacts[a.Name]; !ok || old.Component.Hash != a.Component.Hash {
			updated = append(updated, a)
		}
	}
	s.artifacts = next
	log.Infof("compiled %d component(s), %d updated", len(artifacts), len(updated))
	return updated, nil
}

func (s *server) serveComponent(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/components/")
	sourceMap := strings.HasSuffix(name, ".js.map")
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".map"), ".js")

	s.mu.RLock()
	a, ok := s.artifacts[name]
	s.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	if sourceMap {
		if a.Component.SourceMap == nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(a.Component.SourceMap)
		return
	}
	w.Header().Set("Content-Type", "text/javascript")
	w.Header().Set("ETag", `"`+component.HashString(a.Component.Hash)+`"`)
	w.Write([]byte(a.Module()))
}

func (s *server) serveReload(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warningf("upgrade: %s", err)
		return
	}
	s.connsMu.Lock()
	s.conns[conn] = true
	s.connsMu.Unlock()
	log.Debugf("reload client %s connected", conn.RemoteAddr())

	// Pages never send; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.connsMu.Lock()
	delete(s.conns, conn)
	s.connsMu.Unlock()
	conn.Close()
}

func (s *server) broadcast(msg reload) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	for conn := range s.conns {
		if err := conn.WriteJSON(msg); err != nil {
			log.Warningf("reload %s: %s", conn.RemoteAddr(), err)
			delete(s.conns, conn)
			conn.Close()
		}
	}
}

func (s *server) closeConns() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	for conn := range s.conns {
		conn.Close()
		delete(s.conns, conn)
	}
}
