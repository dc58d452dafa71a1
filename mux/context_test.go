package mux

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext(t *testing.T) {
	t.Run("Vars and VarGet", func(t *testing.T) {
		r := NewRouter()
		var (
			vars  map[string]string
			id    string
			found bool
		)
		r.HandleFunc("/pets/{id}", func(_ http.ResponseWriter, req *http.Request) {
			vars = Vars(req)
			id, found = VarGet(req, "id")
		})

		serve(r, http.MethodGet, "/pets/rex")
		assert.Equal(t, map[string]string{"id": "rex"}, vars)
		assert.True(t, found)
		assert.Equal(t, "rex", id)
	})

	t.Run("no route context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Nil(t, Vars(req))
		assert.Nil(t, CurrentRoute(req))

		_, found := VarGet(req, "id")
		assert.False(t, found)
	})

	t.Run("CurrentRoute inside a subrouter", func(t *testing.T) {
		r := NewRouter()
		api := r.PathPrefix("/api").Subrouter()
		route := api.HandleFunc("/health", nil)

		var current *Route
		route.HandlerFunc(func(_ http.ResponseWriter, req *http.Request) {
			current = CurrentRoute(req)
		})

		serve(r, http.MethodGet, "/api/health")
		require.NotNil(t, current)
		assert.Same(t, route, current)
	})

	t.Run("static routes share one context value", func(t *testing.T) {
		r := NewRouter()
		route := r.HandleFunc("/static", dummyHandler)

		a := setRouteContext(httptest.NewRequest(http.MethodGet, "/static", nil), route, nil)
		b := setRouteContext(httptest.NewRequest(http.MethodGet, "/static", nil), route, nil)
		assert.Same(t,
			a.Context().Value(routeContextKey{}),
			b.Context().Value(routeContextKey{}))
	})

	t.Run("SetURLVars", func(t *testing.T) {
		req := SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"a": "1"})

		v, ok := VarGet(req, "a")
		assert.True(t, ok)
		assert.Equal(t, "1", v)
	})
}
