package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alkime/scribe/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSession struct {
	mu    sync.Mutex
	token string
	user  []byte
}

func (m *memSession) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memSession) SaveToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memSession) SaveUser(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = data
	return nil
}

func (m *memSession) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.user = "", nil
	return nil
}

func TestRequest_BearerToken(t *testing.T) {
	var gotAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	session := &memSession{}
	client := api.New(srv.URL, session)

	var out map[string]bool
	require.NoError(t, client.Request(context.Background(), http.MethodGet, "/ping", nil, &out))
	require.NoError(t, session.SaveToken("jwt-123"))
	require.NoError(t, client.Request(context.Background(), http.MethodGet, "/ping", nil, &out))

	assert.Equal(t, []string{"", "Bearer jwt-123"}, gotAuth)
	assert.True(t, out["ok"])
}

func TestRequest_Responses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantErr     string
		wantStatus  int
		wantText    string
	}{
		{name: "no content", status: http.StatusNoContent},
		{name: "plain text", status: http.StatusOK, contentType: "text/plain", body: "Cough for 3 days.", wantText: "Cough for 3 days."},
		{name: "json string", status: http.StatusOK, contentType: "application/json", body: `"formatted"`, wantText: "formatted"},
		{
			name: "json message", status: http.StatusBadRequest, contentType: "application/json",
			body: `{"message":"patientId is required"}`, wantErr: "patientId is required", wantStatus: http.StatusBadRequest,
		},
		{
			name: "validation list", status: http.StatusBadRequest, contentType: "application/json",
			body:    `{"message":["email must be an email","password too short"]}`,
			wantErr: "email must be an email; password too short", wantStatus: http.StatusBadRequest,
		},
		{
			name: "no body", status: http.StatusBadGateway, contentType: "application/json",
			body: `{}`, wantErr: "Bad Gateway", wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			var text string
			err := api.New(srv.URL, nil).Request(context.Background(), http.MethodPost, "/x", map[string]string{"a": "b"}, &text)
			if tt.wantErr != "" {
				var apiErr *api.Error
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
				assert.Equal(t, tt.wantErr, apiErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestRequest_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Unauthorized"}`)
	}))
	defer srv.Close()

	_, err := api.New(srv.URL, nil).GetSoapNote(context.Background(), "n1")
	assert.True(t, errors.Is(err, api.ErrUnauthorized))
}

func TestLoginAndLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dr@example.com", body["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"jwt-abc","user":{"id":"u1","email":"dr@example.com"}}`)
	}))
	defer srv.Close()

	session := &memSession{}
	client := api.New(srv.URL, session)

	_, err := client.Login(context.Background(), "dr@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", session.token)
	assert.JSONEq(t, `{"id":"u1","email":"dr@example.com"}`, string(session.user))

	require.NoError(t, client.Logout())
	assert.Empty(t, session.token)
}

func TestSearchPatients(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "jo do", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":"p1","firstName":"John","lastName":"Doe"}]`)
	}))
	defer srv.Close()

	client := api.New(srv.URL, nil)

	patients, err := client.SearchPatients(context.Background(), " j ")
	require.NoError(t, err)
	assert.Empty(t, patients)
	assert.Zero(t, hits, "short queries never reach the backend")

	patients, err = client.SearchPatients(context.Background(), "jo do")
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "John Doe", patients[0].FullName())
}

func TestListSoapNotes_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "completed", q.Get("status"))
		assert.Equal(t, "createdAt", q.Get("sortBy"))
		assert.False(t, q.Has("patientName"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":[{"id":"n1","symptoms":"cough","diagnosis":"URTI"}],"total":1,"page":2,"limit":20}`)
	}))
	defer srv.Close()

	list, err := api.New(srv.URL, nil).ListSoapNotes(context.Background(), api.NoteQuery{
		Page: 2, Status: api.StatusCompleted, SortBy: "createdAt",
	})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "cough", list.Data[0].Symptoms)
}

func TestIcd10(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/icd10/search":
			assert.Equal(t, "asthma", r.URL.Query().Get("q"))
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			_, _ = io.WriteString(w, `[{"code":"J45.909","short_description":"Unspecified asthma","usage_count":4}]`)
		case "/icd10/popular":
			_, _ = io.WriteString(w, `[]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := api.New(srv.URL, nil)

	codes, err := client.SearchIcd10(context.Background(), "asthma", 100)
	require.NoError(t, err)
	require.Len(t, codes, 1)
	assert.Equal(t, api.Icd10Code{Code: "J45.909", ShortDescription: "Unspecified asthma", UsageCount: 4}, codes[0])

	codes, err = client.PopularIcd10(context.Background(), 50)
	require.NoError(t, err)
	assert.Empty(t, codes)
}
