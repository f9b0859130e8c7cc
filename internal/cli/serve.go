package cli

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-varform/components/address"
	"github.com/goliatone/go-varform/pkg/editors"
	"github.com/goliatone/go-varform/pkg/eventloop"
	"github.com/goliatone/go-varform/pkg/form"
	"github.com/goliatone/go-varform/pkg/orchestrator"
	"github.com/goliatone/go-varform/pkg/render"
	"github.com/goliatone/go-varform/pkg/renderers/html"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	Addr  string
	Title string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live form over HTTP",
		Long: `Serve one form session as an HTML page. Submitting the page applies
every changed field to its editor and re-renders. The address search API is
mounted under /api/addresses.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.Title, "title", "", "form title")

	return cmd
}

func runServe(rootOpts *RootOptions, opts *ServeOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	srv, err := newServer(ctx, rootOpts, opts.Title)
	if err != nil {
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              opts.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		rootOpts.logger.Info("serving form", "addr", opts.Addr)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdown)
	}
}

// server owns one form session. Handlers and loop continuations share mu, so
// editors are only ever touched by one goroutine at a time.
type server struct {
	mu        sync.Mutex
	loop      *eventloop.Loop
	session   *orchestrator.Session
	renderer  render.Renderer
	addresses *address.Component
	logger    *slog.Logger
	title     string
}

func newServer(ctx context.Context, rootOpts *RootOptions, title string) (*server, error) {
	eng, err := rootOpts.engine()
	if err != nil {
		return nil, err
	}
	params, err := rootOpts.params()
	if err != nil {
		return nil, err
	}
	renderer, err := html.New()
	if err != nil {
		return nil, err
	}
	addresses, err := rootOpts.addresses()
	if err != nil {
		return nil, err
	}

	s := &server{renderer: renderer, addresses: addresses, logger: rootOpts.logger, title: title}
	s.loop = eventloop.NewLoop(eventloop.WithLocker(&s.mu), eventloop.WithLogger(rootOpts.logger))

	orch, err := rootOpts.orchestrator(eng, orchestrator.WithScheduler(s.loop))
	if err != nil {
		return nil, err
	}
	s.session, err = orch.NewSession(ctx, eng, params, orchestrator.SessionConfig{})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Routes returns the chi router serving the form, its parameters and the
// address search routes over the same book the form's editors query.
func (s *server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handleForm)
	r.Post("/", s.handleSubmit)
	r.Get("/params", s.handleParams)
	if _, err := s.addresses.RegisterRoutes(r, "/"); err != nil {
		s.logger.Warn("address routes not mounted", "error", err)
	}
	return r
}

func (s *server) Close() {
	s.loop.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Close()
}

func (s *server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	view := render.Snapshot(s.title, s.session.Form())
	errs := render.MapFieldErrors(s.session.Errors())
	s.mu.Unlock()

	out, err := s.renderer.Render(r.Context(), view, render.RenderOptions{
		Action: "/",
		Method: http.MethodPost,
		Errors: errs.Fields,
	})
	if err != nil {
		s.logger.Error("render form", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	_, _ = w.Write(out)
}

func (s *server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	for _, name := range sortedKeys(flatten(r.PostForm)) {
		s.apply(r.Context(), name, r.PostForm.Get(name))
	}
	s.mu.Unlock()

	// Continuations take mu themselves.
	s.loop.Flush()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleParams(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	params := s.session.Parameters()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(params)
}

// apply routes a posted value to the first leaf named name whose buffer
// differs from it. Callers hold mu.
func (s *server) apply(ctx context.Context, name, value string) {
	var target *form.Leaf
	for _, root := range s.session.Form().Fields() {
		form.Walk(root, func(node form.Node) bool {
			leaf, ok := node.(*form.Leaf)
			if ok && leaf.Name() == name {
				target = leaf
				return false
			}
			return true
		})
		if target != nil {
			break
		}
	}
	if target == nil {
		return
	}

	switch ed := target.Editor.(type) {
	case *editors.Date:
		applyDate(ctx, ed, value)
	case *editors.Address:
		for i, suggestion := range ed.Suggestions() {
			if suggestion.Description == value {
				ed.Select(ctx, i)
				return
			}
		}
		if value != ed.Value() {
			ed.Change(ctx, value)
		}
	default:
		if value != ed.Value() {
			ed.Change(ctx, value)
			ed.Blur()
		}
	}
}

func applyDate(ctx context.Context, ed *editors.Date, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		if ed.Value() != "" {
			ed.Clear(ctx)
		}
		return
	}
	layout := "2006-01-02"
	if ed.EnableTime() {
		layout = "2006-01-02T15:04"
	}
	at, err := time.ParseInLocation(layout, value, time.UTC)
	if err != nil {
		ed.Change(ctx, value)
		return
	}
	if current, ok := ed.Time(); ok && current.Equal(at) {
		return
	}
	ed.Pick(ctx, at)
}

func flatten(values map[string][]string) map[string]string {
	out := make(map[string]string, len(values))
	for key, list := range values {
		if len(list) > 0 {
			out[key] = list[0]
		}
	}
	return out
}
