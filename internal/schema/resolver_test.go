package schema

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GregZOL/API-France-March--BOAMP/internal/port"
	"github.com/GregZOL/API-France-March--BOAMP/internal/repository"
)

func catalogJSON(fieldNames ...string) string {
	body := `{"dataset":{"fields":[`
	for i, name := range fieldNames {
		if i > 0 {
			body += ","
		}
		body += `{"name":"` + name + `"}`
	}
	return body + `]}}`
}

func newTestResolver(t *testing.T, handler http.HandlerFunc, ttl time.Duration) (*Resolver, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := repository.NewClient(srv.URL, "boamp", "", 5*time.Second)
	return NewResolver(client, srv.URL, "boamp", "", ttl, zap.NewNop()), srv
}

func TestResolve_PicksCandidatesInOrder(t *testing.T) {
	resolver, _ := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/catalog/datasets/boamp", r.URL.Path)
		w.Write([]byte(catalogJSON("date_publication", "objet", "cpv", "departement")))
	}, 0)

	catalog, err := resolver.Resolve(context.Background())
	require.NoError(t, err)

	// dateparution absent, date_publication is the next candidate.
	assert.Equal(t, "date_publication", catalog.Field(port.RoleDate))
	assert.Equal(t, "objet", catalog.Field(port.RoleTitle))
	assert.Equal(t, "departement", catalog.Field(port.RoleDept))
}

func TestResolve_FallsBackToDefaults(t *testing.T) {
	resolver, _ := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(catalogJSON()))
	}, 0)

	catalog, err := resolver.Resolve(context.Background())
	require.NoError(t, err)

	for _, role := range port.Roles {
		assert.Equal(t, port.DefaultFieldName(role), catalog.Field(role))
	}
}

func TestResolve_MemoizesSingleFetch(t *testing.T) {
	var calls int32
	resolver, _ := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		// Slow response so every caller joins the same in-flight resolution.
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(catalogJSON("dateparution")))
	}, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := resolver.Resolve(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResolve_FailureLeavesNoMemo(t *testing.T) {
	var calls int32
	resolver, _ := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(catalogJSON("dateparution")))
	}, 0)

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)

	catalog, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dateparution", catalog.Field(port.RoleDate))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRefresh_DropsMemo(t *testing.T) {
	var calls int32
	resolver, _ := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Write([]byte(catalogJSON("dateparution")))
			return
		}
		w.Write([]byte(catalogJSON("date_publication")))
	}, 0)

	first, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dateparution", first.Field(port.RoleDate))

	second, err := resolver.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "date_publication", second.Field(port.RoleDate))
}

func TestResolve_TTLExpiryRefetches(t *testing.T) {
	var calls int32
	resolver, _ := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(catalogJSON("dateparution")))
	}, time.Nanosecond)

	_, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = resolver.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
