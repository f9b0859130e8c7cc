package address

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-varform/pkg/model"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type suggestionsResponse struct {
	Data []model.AddressSuggestion `json:"data"`
}

type detailsResponse struct {
	Data model.Address `json:"data"`
}

// placeIDParam names the chi URL parameter of the details route.
const placeIDParam = "placeID"

// Handler builds a handler with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return HandlerWithOptions(opts)
}

// HandlerWithOptions builds a chi router serving search on "/" and details on
// "/{placeID}", relative to wherever it is mounted.
func HandlerWithOptions(opts Options) http.Handler {
	return newRouter(NewOptions(func(o *Options) { *o = opts }), nil)
}

// newRouter serves book, or the book described by opts when book is nil.
func newRouter(opts Options, book *Book) http.Handler {
	h := &handler{opts: opts, entries: book}

	r := chi.NewRouter()
	r.Use(h.guard)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})
	r.Get("/", h.search)
	r.Head("/", h.search)
	r.Get("/{"+placeIDParam+"}", h.details)
	r.Head("/{"+placeIDParam+"}", h.details)
	return r
}

type handler struct {
	opts    Options
	entries *Book
}

func (h *handler) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.opts.Guard != nil {
			if err := h.opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) book() (*Book, error) {
	if h.entries != nil {
		return h.entries, nil
	}
	if h.opts.Entries != nil {
		return NewBook(h.opts.Entries), nil
	}
	return DefaultBook()
}

func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	book, err := h.book()
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query().Get(h.opts.SearchParam)
	limit := parseInt(r.URL.Query().Get(h.opts.LimitParam))

	results := Suggestions(book, query, limit, h.opts)
	if results == nil {
		results = []model.AddressSuggestion{}
	}
	writeJSON(w, r, http.StatusOK, suggestionsResponse{Data: results})
}

func (h *handler) details(w http.ResponseWriter, r *http.Request) {
	book, err := h.book()
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	found, ok := book.Lookup(chi.URLParam(r, placeIDParam))
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, detailsResponse{Data: found})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
