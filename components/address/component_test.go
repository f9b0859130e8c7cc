package address

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-varform/pkg/model"
)

func TestComponent_SharesBookBetweenRoutesAndAPI(t *testing.T) {
	component, err := New(WithEntries(testEntries()), WithRoutePath("/places"), WithDefaultLimit(1))
	if err != nil {
		t.Fatalf("new component: %v", err)
	}
	if component.Book().Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", component.Book().Len())
	}
	if got := component.Options().RoutePath; got != "/places" {
		t.Fatalf("unexpected route path %q", got)
	}

	ctx := context.Background()
	suggestions, err := component.API().SearchAddress(ctx, "springfield")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []model.AddressSuggestion{{PlaceID: "p-1", Description: "1 Main Street, Springfield, IL 62701, US"}}
	if diff := cmp.Diff(want, suggestions); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}

	router := chi.NewRouter()
	pattern, err := component.RegisterRoutes(router, "/")
	if err != nil {
		t.Fatalf("register routes: %v", err)
	}
	if pattern != "/places" {
		t.Fatalf("unexpected pattern %q", pattern)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/places?q=springfield", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body suggestionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(want, body.Data); diff != "" {
		t.Fatalf("route suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestComponent_DefaultsToEmbeddedBook(t *testing.T) {
	component, err := New()
	if err != nil {
		t.Fatalf("new component: %v", err)
	}
	found, err := component.API().AddressDetails(context.Background(), "addr-004")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if found.City != "London" {
		t.Fatalf("unexpected address %+v", found)
	}
}
