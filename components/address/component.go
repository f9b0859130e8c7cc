package address

import "net/http"

// Component owns one address book and the options shaping how it is searched.
// The same book backs the HTTP routes and the in-process engine.AddressAPI, so
// a host serving both never sees them disagree.
type Component struct {
	opts Options
	book *Book
}

// New builds a component over opts.Entries, or over the embedded book when no
// entries are configured.
func New(fns ...OptionFn) (*Component, error) {
	opts := NewOptions(fns...)
	if opts.Entries != nil {
		return &Component{opts: opts, book: NewBook(opts.Entries)}, nil
	}
	book, err := DefaultBook()
	if err != nil {
		return nil, err
	}
	return &Component{opts: opts, book: book}, nil
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Book returns the address book the component serves.
func (c *Component) Book() *Book {
	return c.book
}

// API returns an in-process engine.AddressAPI over the component's book.
func (c *Component) API() *Local {
	return &Local{book: c.book, opts: c.opts}
}

// Handler returns the search and details routes over the component's book.
func (c *Component) Handler() http.Handler {
	return newRouter(c.opts, c.book)
}

// RegisterRoutes mounts Handler on mux under basePath joined with the
// configured route path, and returns the mounted pattern.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if mux == nil {
		return "", errMissingMux
	}
	pattern := mountPath(basePath, c.opts.RoutePath)
	mux.Mount(pattern, c.Handler())
	return pattern, nil
}
