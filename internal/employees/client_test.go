// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package employees

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	return NewClient(cfg, testLogger())
}

func TestFetchEmployees_Success(t *testing.T) {
	var gotBody map[string]string
	var gotMethod, gotPath, gotContentType string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"TABLE_DATA":{"data":[["Tiger Nixon","System Architect","Edinburgh","5421","2011/04/25","$320,800"]]}}`)
	})

	got, err := c.FetchEmployees(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, DefaultPath, gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]string{"username": "test", "password": "123456"}, gotBody)

	assert.Equal(t, "Tiger Nixon", got[0].Name)
	assert.Equal(t, "5421", got[0].ID)
	assert.Equal(t, 320800.0, got[0].Salary)
}

func TestFetchEmployees_UnexpectedShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"TABLE_DATA":null}`)
	})

	got, err := c.FetchEmployees(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFetchEmployees_ServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Invalid <b>credentials</b> & token"}`)
	})

	got, err := c.FetchEmployees(context.Background())
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, ErrFetch))
	assert.Equal(t, "Invalid credentials & token", err.Error())
}

func TestFetchEmployees_FallbackMessage(t *testing.T) {
	tests := []struct {
		name string
		h    http.HandlerFunc
	}{
		{"status without body", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"html error page", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "<html>bad gateway</html>")
		}},
		{"non-string message", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":42}`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.h)
			_, err := c.FetchEmployees(context.Background())
			require.Error(t, err)
			assert.Equal(t, FallbackMessage, err.Error())
		})
	}
}

func TestFetchEmployees_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Timeout = 50 * time.Millisecond
	c := NewClient(cfg, testLogger())

	_, err := c.FetchEmployees(context.Background())
	require.Error(t, err)
	assert.Equal(t, FallbackMessage, err.Error())

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.NotContains(t, fe.Message, "Client.Timeout")
}

func TestFetchEmployees_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = url
	c := NewClient(cfg, testLogger())

	_, err := c.FetchEmployees(context.Background())
	require.Error(t, err)
	assert.Equal(t, FallbackMessage, err.Error())
	assert.False(t, strings.Contains(err.Error(), "refused"))
}

func TestNewClient_Endpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "https://example.com/api/"
	cfg.Path = "table.php"

	c := NewClient(cfg, nil)
	assert.Equal(t, "https://example.com/api/table.php", c.Endpoint())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}
