package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ferroui/ferro/cmd/ferro/internal/config"
	"github.com/ferroui/ferro/internal/cache"
	"github.com/ferroui/ferro/pkg/compiler"
	"github.com/ferroui/ferro/pkg/diag"
	"github.com/ferroui/ferro/pkg/renderer/html"
	"github.com/ferroui/ferro/pkg/runtime"
	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

type devServer struct {
	config       *config.Config
	watcher      *fsnotify.Watcher
	wsClients    map[*websocket.Conn]bool
	wsMutex      sync.RWMutex
	upgrader     websocket.Upgrader
	compileCache *cache.Cache
	compileMutex sync.Mutex
}

func newDevCommand() *cobra.Command {
	var port int
	var host string
	var cwd string

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long:  `Starts a development server with file watching and live reloading.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cwd != "" {
				if err := os.Chdir(cwd); err != nil {
					return fmt.Errorf("failed to change directory to %s: %w", cwd, err)
				}
			}
			return runDev(host, port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run the dev server on")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind the dev server to")
	cmd.Flags().StringVar(&cwd, "cwd", "", "Working directory of the app (defaults to current)")

	return cmd
}

func runDev(host string, port int) error {
	cfg, err := config.Load(".")
	if err != nil {
		log.Printf("failed to load %s: %v (using defaults)", config.FileName, err)
		cfg = config.DefaultConfig()
	}

	// CLI flags take precedence over ferro.yml.
	if port != 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}

	server := &devServer{
		config:       cfg,
		wsClients:    make(map[*websocket.Conn]bool),
		compileCache: cache.New(cache.DefaultConfig()),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins in dev mode
				return true
			},
		},
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()
	server.watcher = watcher

	if err := server.setupWatcher(); err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}

	go server.watchFiles()

	mux := http.NewServeMux()
	mux.HandleFunc("/ferro/live", server.handleWebSocket)
	mux.HandleFunc("/trees/", server.serveTree)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/", server.servePage)

	addr := fmt.Sprintf("%s:%d", cfg.Dev.Host, cfg.Dev.Port)
	log.Printf("dev server running at http://%s", addr)

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("shutting down dev server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	err = srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *devServer) setupWatcher() error {
	return filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && strings.HasPrefix(info.Name(), ".") && path != "." {
			return filepath.SkipDir
		}
		if info.IsDir() {
			return s.watcher.Add(path)
		}
		return nil
	})
}

func (s *devServer) watchFiles() {
	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	var pendingEvents []fsnotify.Event
	var mu sync.Mutex

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !s.isRelevantFile(event.Name) {
				continue
			}

			mu.Lock()
			pendingEvents = append(pendingEvents, event)
			mu.Unlock()

			debounce.Reset(100 * time.Millisecond)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Println("watcher error:", err)

		case <-debounce.C:
			mu.Lock()
			events := pendingEvents
			pendingEvents = nil
			mu.Unlock()

			if len(events) > 0 {
				s.handleFileChanges(events)
			}
		}
	}
}

func (s *devServer) isRelevantFile(path string) bool {
	return strings.HasSuffix(path, ".fro") || filepath.Base(path) == config.FileName
}

func (s *devServer) handleFileChanges(events []fsnotify.Event) {
	var changed []string
	configChanged := false
	for _, event := range events {
		if filepath.Base(event.Name) == config.FileName {
			configChanged = true
			continue
		}
		changed = append(changed, event.Name)
	}

	if configChanged {
		log.Printf("%s changed, restart the dev server to apply it", config.FileName)
	}

	if len(changed) == 0 {
		return
	}

	// Recompile eagerly so diagnostics land in the terminal, not only in
	// the next browser request.
	hadErrors := false
	for _, file := range changed {
		r, err := s.compile(file)
		if err != nil {
			continue // deleted file, reported on next request
		}
		printDiagnostics(os.Stderr, r.Name, r.Diags)
		if !r.OK() {
			hadErrors = true
		}
	}

	if hadErrors {
		s.notifyClients("error", map[string]interface{}{
			"message": "compilation failed, see the terminal",
		})
		return
	}

	log.Printf("%d file(s) changed, reloading", len(events))
	s.notifyClients("reload", nil)
}

// compile returns the cached result when the source bytes are unchanged.
func (s *devServer) compile(path string) (compiler.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return compiler.Result{}, err
	}

	s.compileMutex.Lock()
	defer s.compileMutex.Unlock()

	key := cache.Key(path, string(data))
	if cached, ok := s.compileCache.Get(key); ok {
		return cached.(compiler.Result), nil
	}

	r := compiler.Compile(path, string(data))
	s.compileCache.Put(key, r)
	return r, nil
}

func (s *devServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("websocket upgrade error:", err)
		return
	}
	defer conn.Close()

	s.wsMutex.Lock()
	s.wsClients[conn] = true
	s.wsMutex.Unlock()

	defer func() {
		s.wsMutex.Lock()
		delete(s.wsClients, conn)
		s.wsMutex.Unlock()
	}()

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}

		switch msg["type"] {
		case "HELLO":
			conn.WriteJSON(map[string]interface{}{"type": "ACK"})
		default:
			log.Printf("unknown websocket message type: %v", msg["type"])
		}
	}
}

func (s *devServer) notifyClients(msgType string, data map[string]interface{}) {
	s.wsMutex.RLock()
	defer s.wsMutex.RUnlock()

	message := map[string]interface{}{
		"type": strings.ToUpper(msgType),
	}
	for k, v := range data {
		message[k] = v
	}

	for client := range s.wsClients {
		if err := client.WriteJSON(message); err != nil {
			log.Printf("failed to send message to client: %v", err)
		}
	}
}

// viewPath maps a URL path to a source file under the configured srcDir.
// "/" serves the entry view.
func (s *devServer) viewPath(urlPath string) (string, error) {
	name := strings.Trim(urlPath, "/")
	if name == "" {
		name = strings.TrimSuffix(s.config.App.Entry, ".fro")
	}
	if strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid path")
	}
	return filepath.Join(s.config.App.SrcDir, name+".fro"), nil
}

func (s *devServer) servePage(w http.ResponseWriter, r *http.Request) {
	path, err := s.viewPath(r.URL.Path)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	result, err := s.compile(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	if !result.OK() {
		s.serveErrorPage(w, result)
		return
	}

	prog := runtime.New(result.Tree)
	root := prog.Mount()

	var sb strings.Builder
	if err := html.Document(&sb, s.config.App.Name, result.Tree.Stylesheet, root); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	page := injectLiveReload(sb.String())
	_, _ = w.Write([]byte(page))
}

// serveErrorPage renders compile diagnostics into the browser so broken
// saves are visible without switching back to the terminal.
func (s *devServer) serveErrorPage(w http.ResponseWriter, result compiler.Result) {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>compile error</title>\n")
	sb.WriteString("<style>body{font-family:monospace;background:#1f2937;color:#f3f4f6;padding:2rem}.e{color:#ef4444}.w{color:#f59e0b}</style>\n")
	sb.WriteString("</head>\n<body>\n<h1>compile error</h1>\n<pre>\n")
	for _, d := range result.Diags {
		class := "w"
		if d.Severity == diag.Error {
			class = "e"
		}
		sb.WriteString(fmt.Sprintf("<span class=%q>%s:%d:%d: %s [%s]</span>\n",
			class, htmlEscape(result.Name), d.Line, d.Column, htmlEscape(d.Message), d.Code))
	}
	sb.WriteString("</pre>\n</body>\n</html>\n")
	_, _ = w.Write([]byte(injectLiveReload(sb.String())))
}

func (s *devServer) serveTree(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/trees/")
	name = strings.TrimSuffix(name, ".json")

	path, err := s.viewPath("/" + name)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	result, err := s.compile(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if !result.OK() {
		http.Error(w, "compilation failed", http.StatusUnprocessableEntity)
		return
	}

	data, err := result.Tree.Encode()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(data)
}

const liveReloadScript = `<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ferro/live");
  ws.onopen = function () { ws.send(JSON.stringify({ type: "HELLO" })); };
  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === "RELOAD" || msg.type === "ERROR") location.reload();
  };
  ws.onclose = function () { setTimeout(function () { location.reload(); }, 1000); };
})();
</script>`

func injectLiveReload(page string) string {
	if i := strings.LastIndex(page, "</body>"); i >= 0 {
		return page[:i] + liveReloadScript + "\n" + page[i:]
	}
	return page + liveReloadScript
}

func htmlEscape(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return replacer.Replace(s)
}
