package esign

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/esign-wizard/internal/domain/form"
)

func newProvider(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret-key"}, zap.NewNop())
	return client, srv
}

func TestClient_ForwardPackage(t *testing.T) {
	t.Run("relays status and body verbatim", func(t *testing.T) {
		var gotBody []byte
		var gotAuth, gotPath string
		client, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			gotBody, _ = io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"messageKey":"error.unauthorised"}`))
		})

		body := []byte(`{"status":"DRAFT","name":"x"}`)
		resp, err := client.ForwardPackage(context.Background(), body)
		require.NoError(t, err)

		assert.Equal(t, "Basic secret-key", gotAuth)
		assert.Equal(t, "/api/packages", gotPath)
		assert.Equal(t, body, gotBody)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.JSONEq(t, `{"messageKey":"error.unauthorised"}`, string(resp.Body))
	})

	t.Run("non-JSON reply is an error", func(t *testing.T) {
		client, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>gateway</html>"))
		})

		_, err := client.ForwardPackage(context.Background(), []byte(`{}`))
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("transport failure is an error", func(t *testing.T) {
		client, srv := newProvider(t, func(w http.ResponseWriter, r *http.Request) {})
		srv.Close()

		_, err := client.ForwardPackage(context.Background(), []byte(`{}`))
		assert.Error(t, err)
	})
}

func TestClient_CreatePackage(t *testing.T) {
	tx := BuildTransaction("UERG", form.State{}, DefaultTransactionOptions())

	t.Run("returns the package id", func(t *testing.T) {
		var received Transaction
		client, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"pkg-1"}`))
		})

		id, err := client.CreatePackage(context.Background(), tx)
		require.NoError(t, err)
		assert.Equal(t, "pkg-1", id)
		assert.Equal(t, "DRAFT", received.Status)
		assert.Equal(t, "UERG", received.Documents[0].Base64Content)
	})

	t.Run("non-2xx carries status and body", func(t *testing.T) {
		client, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"bad key"}`))
		})

		_, err := client.CreatePackage(context.Background(), tx)
		var subErr *SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.Equal(t, http.StatusUnauthorized, subErr.StatusCode)
		assert.JSONEq(t, `{"message":"bad key"}`, string(subErr.Body))
	})

	t.Run("missing id is a submission error", func(t *testing.T) {
		client, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})

		_, err := client.CreatePackage(context.Background(), tx)
		var subErr *SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("transport failure is a submission error", func(t *testing.T) {
		client, srv := newProvider(t, func(w http.ResponseWriter, r *http.Request) {})
		srv.Close()

		_, err := client.CreatePackage(context.Background(), tx)
		var subErr *SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.Zero(t, subErr.StatusCode)
	})
}

func TestClient_SigningURL(t *testing.T) {
	t.Run("returns the role's url", func(t *testing.T) {
		client, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/packages/pkg-1/roles/Signer1/signingUrl", r.URL.Path)
			assert.Equal(t, "Basic secret-key", r.Header.Get("Authorization"))
			w.Write([]byte(`{"roleId":"Signer1","packageId":"pkg-1","url":"https://sign.example/ceremony"}`))
		})

		u, err := client.SigningURL(context.Background(), "pkg-1")
		require.NoError(t, err)
		assert.Equal(t, "https://sign.example/ceremony", u)
	})

	t.Run("non-OK is a signing url error", func(t *testing.T) {
		client, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"no such package"}`))
		})

		_, err := client.SigningURL(context.Background(), "missing")
		var urlErr *SigningURLError
		require.ErrorAs(t, err, &urlErr)
		assert.Equal(t, http.StatusNotFound, urlErr.StatusCode)
	})

	t.Run("empty id is rejected before any request", func(t *testing.T) {
		called := false
		client, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		_, err := client.SigningURL(context.Background(), "")
		assert.ErrorIs(t, err, ErrMissingPackageID)
		assert.False(t, called)
	})

	t.Run("path segments are escaped", func(t *testing.T) {
		client, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/packages/a%2Fb/roles/Signer1/signingUrl", r.URL.RawPath)
			w.Write([]byte(`{"url":"https://x"}`))
		})

		_, err := client.SigningURL(context.Background(), "a/b")
		require.NoError(t, err)
	})
}
