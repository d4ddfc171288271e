package iserv

import (
	"context"
	"errors"
	"iserv-client/internal/components/telemetry"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	portal := newFakePortal(t)
	client, rec := newTestClient(t, portal)

	require.Equal(t, SessionIdentifiers{
		SAT:     "sat-value",
		SATId:   "sat-id-value",
		Session: "session-value",
	}, client.Session)
	require.Equal(t, "127.0.0.1", client.Host)
	require.Equal(t, 0, rec.Count(telemetry.REPORT_WARNING, report_client_session_cookies))

	// credentials are posted to the url the login page redirected to
	posts := portal.find(http.MethodPost, "/iserv/auth/login")
	require.Len(t, posts, 1)
	require.Equal(t, "/iserv/", posts[0].query.Get("_target_path"))
	require.Equal(t, testUsername, posts[0].form.Get("_username"))
	require.Equal(t, testPassword, posts[0].form.Get("_password"))

	require.Len(t, portal.find(http.MethodGet, "/iserv/auth/home"), 1)
	require.Len(t, portal.find(http.MethodGet, "/iserv/"), 2)
}

func TestLoginRejected(t *testing.T) {
	table := []struct {
		name     string
		username string
		password string
		expected error
	}{
		{name: "unknown account", username: "nobody", password: testPassword, expected: AccountNotFound},
		{name: "wrong password", username: testUsername, password: "wrong", expected: LoginFailed},
	}

	for _, test := range table {
		t.Run(test.name, func(t *testing.T) {
			portal := newFakePortal(t)
			_, err := NewClient(context.Background(), ClientOptions{
				BaseUrl:  portal.server.URL,
				Username: test.username,
				Password: test.password,
			}, telemetry.NewRecorder())
			require.ErrorIs(t, err, test.expected)

			// no cookie collection happens after a rejected login
			require.Empty(t, portal.find(http.MethodGet, "/iserv/auth/home"))
			require.Empty(t, portal.find(http.MethodGet, "/iserv/"))
		})
	}
}

func TestLoginRejectedKeepsSessionEmpty(t *testing.T) {
	portal := newFakePortal(t)
	client, _ := newTestClient(t, portal)

	client.password = "wrong"
	client.Session = SessionIdentifiers{}
	err := client.Login(context.Background())
	require.ErrorIs(t, err, LoginFailed)
	require.Equal(t, SessionIdentifiers{}, client.Session)
}

func TestLoginConnectionFailed(t *testing.T) {
	table := []string{
		"GET /iserv/auth/login",
		"POST /iserv/auth/login",
		"GET /iserv/auth/home",
		"GET /iserv/",
	}

	for _, failing := range table {
		t.Run(failing, func(t *testing.T) {
			portal := newFakePortal(t, func(p *fakePortal) {
				p.failing = []string{failing}
			})

			rec := telemetry.NewRecorder()
			_, err := NewClient(context.Background(), ClientOptions{
				BaseUrl:  portal.server.URL,
				Username: testUsername,
				Password: testPassword,
			}, rec)
			require.ErrorIs(t, err, ConnectionFailed)
			require.False(t, errors.Is(err, LoginFailed))
			require.Equal(t, 1, rec.Count(telemetry.REPORT_BROKEN, report_client_login))
		})
	}
}

func TestLoginServerDown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	_, err := NewClient(context.Background(), ClientOptions{
		BaseUrl:  server.URL,
		Username: testUsername,
		Password: testPassword,
	}, telemetry.NewRecorder())
	require.ErrorIs(t, err, ConnectionFailed)
}

func TestMissingSessionCookie(t *testing.T) {
	portal := newFakePortal(t, func(p *fakePortal) {
		p.omitCookies = []string{cookieSATId}
	})
	client, rec := newTestClient(t, portal)

	require.Equal(t, "", client.Session.SATId)
	require.Equal(t, "sat-value", client.Session.SAT)
	require.Equal(t, "session-value", client.Session.Session)
	require.Equal(t, 1, rec.Count(telemetry.REPORT_WARNING, report_client_session_cookies))
}

func TestNoSessionCookies(t *testing.T) {
	portal := newFakePortal(t, func(p *fakePortal) {
		p.omitCookies = []string{cookieSAT, cookieSATId, cookieSession}
	})
	client, rec := newTestClient(t, portal)

	require.Equal(t, SessionIdentifiers{}, client.Session)
	require.Equal(t, 3, rec.Count(telemetry.REPORT_WARNING, report_client_session_cookies))
}

func TestClientOptions(t *testing.T) {
	_, err := NewClient(context.Background(), ClientOptions{Username: testUsername}, nil)
	require.Error(t, err)
	_, err = NewClient(context.Background(), ClientOptions{Host: "school.example"}, nil)
	require.Error(t, err)

	portal := newFakePortal(t)
	client, err := NewClient(context.Background(), ClientOptions{
		BaseUrl:           portal.server.URL,
		Username:          testUsername,
		Password:          testPassword,
		RequestsPerSecond: 1000,
	}, nil)
	require.NoError(t, err)
	defer client.Close()
	require.Equal(t, "sat-value", client.Session.SAT)
}

func TestRateLimitShared(t *testing.T) {
	portal := newFakePortal(t)
	client, err := NewClient(context.Background(), ClientOptions{
		BaseUrl:           portal.server.URL,
		Username:          testUsername,
		Password:          testPassword,
		RequestsPerSecond: 10,
	}, telemetry.NewRecorder())
	require.NoError(t, err)
	defer client.Close()

	// reads go through the session client, notification actions through the
	// jar-less one, both draw from the same limit
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err = client.Badges(context.Background())
		require.NoError(t, err)
		_, err = client.ReadNotification(context.Background(), 42)
		require.NoError(t, err)
	}
	require.GreaterOrEqual(t, time.Since(start), 450*time.Millisecond)
}

func TestUnexpectedStatus(t *testing.T) {
	portal := newFakePortal(t)
	client, rec := newTestClient(t, portal)
	portal.setStatus("/iserv/app/navigation/badges", http.StatusInternalServerError)

	_, err := client.Badges(context.Background())
	require.ErrorIs(t, err, UnexpectedStatus)
	require.Equal(t, 1, rec.Count(telemetry.REPORT_BROKEN, report_client_badges))
}

func TestDumpDir(t *testing.T) {
	portal := newFakePortal(t)
	dir := filepath.Join(t.TempDir(), "dump")
	client, err := NewClient(context.Background(), ClientOptions{
		BaseUrl:  portal.server.URL,
		Username: testUsername,
		Password: testPassword,
		DumpDir:  dir,
	}, telemetry.NewRecorder())
	require.NoError(t, err)
	defer client.Close()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	// login page, credentials, home and the two index requests
	require.Len(t, entries, 5)

	var login string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "-post-login.txt") {
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			login = string(data)
		}
	}
	require.Contains(t, login, "_username="+testUsername)
	require.NotContains(t, login, testPassword)
}
