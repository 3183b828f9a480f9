package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zunxo7/CandyMinigames-sub000/internal/auth"
)

// fakeAuthService stands in for the hosted auth service behind the bridge.
func fakeAuthService(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer admin-token":
			json.NewEncoder(w).Encode(map[string]string{"id": "admin-user"})
		case "Bearer player-token":
			json.NewEncoder(w).Encode(map[string]string{"id": "plain-user"})
		default:
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid JWT"})
		}
	})

	mux.HandleFunc("/rest/v1/profiles", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "eq.admin-user" {
			json.NewEncoder(w).Encode([]map[string]string{{"role": "admin"}})
			return
		}
		json.NewEncoder(w).Encode([]map[string]string{{"role": "player"}})
	})

	mux.HandleFunc("/auth/v1/admin/users/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/broken-user") {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{"msg": "email already registered"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "target-user"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func doUpdate(t *testing.T, client *auth.Client, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := UpdateUsername(client, zap.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/admin/username", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestUpdateUsername_Unconfigured(t *testing.T) {
	rec := doUpdate(t, auth.NewClient("", ""), "admin-token",
		`{"userId":"target-user","newUsername":"new@example.com"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUpdateUsername_MissingOrInvalidCredential(t *testing.T) {
	client := auth.NewClient(fakeAuthService(t).URL, "service-key")

	rec := doUpdate(t, client, "", `{"userId":"target-user","newUsername":"new@example.com"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doUpdate(t, client, "garbage-token", `{"userId":"target-user","newUsername":"new@example.com"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateUsername_MissingFields(t *testing.T) {
	client := auth.NewClient(fakeAuthService(t).URL, "service-key")

	for _, body := range []string{
		`{}`,
		`{"userId":"target-user"}`,
		`{"newUsername":"new@example.com"}`,
		`not json`,
	} {
		rec := doUpdate(t, client, "admin-token", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestUpdateUsername_NonAdminCaller(t *testing.T) {
	client := auth.NewClient(fakeAuthService(t).URL, "service-key")

	rec := doUpdate(t, client, "player-token",
		`{"userId":"target-user","newUsername":"new@example.com"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateUsername_DownstreamFailure(t *testing.T) {
	client := auth.NewClient(fakeAuthService(t).URL, "service-key")

	rec := doUpdate(t, client, "admin-token",
		`{"userId":"broken-user","newUsername":"taken@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already registered")
}

func TestUpdateUsername_Success(t *testing.T) {
	client := auth.NewClient(fakeAuthService(t).URL, "service-key")

	rec := doUpdate(t, client, "admin-token",
		`{"userId":"target-user","newUsername":"new@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp["ok"])
}
