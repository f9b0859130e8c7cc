// Package address provides a deterministic address book, search helpers, a
// small net/http handler that serves autosuggest results and resolved
// addresses as JSON, and a Client that implements engine.AddressAPI against
// that handler.
//
// The handler answers GET and HEAD on the route path with {"data": [...]}
// suggestions filtered by the query parameter, and GET on <route>/{placeId}
// with {"data": {...}} for a single address. The default book is loaded from
// the embedded data/addresses.yaml.
package address
