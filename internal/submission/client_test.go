package submission

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baryo/internal/platform/metrics"
	dErrors "baryo/pkg/domain-errors"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second, metrics.NewWith(prometheus.NewRegistry()))
}

func TestForward_SendsBearerAndMultipart(t *testing.T) {
	var gotAuth, gotContentType string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"42"}`))
	})

	payload, err := Build(map[string]string{"purpose": "employment"}, nil)
	require.NoError(t, err)

	result, err := client.Forward(context.Background(), "/api/residents", "token-abc", payload)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, result.StatusCode)
	assert.Equal(t, "Bearer token-abc", gotAuth)
	assert.Contains(t, gotContentType, "multipart/form-data")
	assert.JSONEq(t, `{"id":"42"}`, string(result.Body))
}

func TestForward_MapsUpstreamStatus(t *testing.T) {
	cases := []struct {
		status int
		code   dErrors.Code
	}{
		{http.StatusUnauthorized, dErrors.CodeUnauthorized},
		{http.StatusForbidden, dErrors.CodeForbidden},
		{http.StatusUnprocessableEntity, dErrors.CodeUnprocessable},
		{http.StatusBadGateway, dErrors.CodeUnavailable},
	}
	for _, tc := range cases {
		client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		})
		payload, err := Build(nil, nil)
		require.NoError(t, err)

		_, err = client.Forward(context.Background(), "/api/residents", "t", payload)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, tc.code), "status %d", tc.status)
	}
}

func TestForward_UnreachableUpstream(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, metrics.NewWith(prometheus.NewRegistry()))
	payload, err := Build(nil, nil)
	require.NoError(t, err)

	_, err = client.Forward(context.Background(), "/api/residents", "t", payload)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestFetchList_BareArray(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1},{"id":2}]`))
	})

	list, err := client.FetchList(context.Background(), "/api/document-types", "t")
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 2, list.Total)
	assert.False(t, list.Paginated)
}

func TestFetchList_PaginatedEnvelope(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":1}],"total":37}`))
	})

	list, err := client.FetchList(context.Background(), "/api/document-types", "t")
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 37, list.Total)
	assert.True(t, list.Paginated)
}

func TestFetchList_EnvelopeWithoutTotal(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":1},{"id":2}]}`))
	})

	list, err := client.FetchList(context.Background(), "/api/document-types", "t")
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.True(t, list.Paginated)
}
