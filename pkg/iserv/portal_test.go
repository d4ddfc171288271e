package iserv

import (
	"context"
	"embed"
	"fmt"
	"iserv-client/internal/components/telemetry"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

//go:embed testdata
var testdata embed.FS

func fixture(t testing.TB, name string) []byte {
	data, err := testdata.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

const (
	testUsername = "max.mustermann"
	testPassword = "secret"
)

type recordedRequest struct {
	method  string
	path    string
	query   url.Values
	form    url.Values
	cookies map[string]string
}

// fakePortal imitates the parts of an IServ instance the client talks to.
type fakePortal struct {
	t      testing.TB
	server *httptest.Server

	// omitCookies lists session cookies the portal does not set.
	omitCookies []string
	// failing lists "<METHOD> <path>" pairs whose connection is closed
	// before a response is written.
	failing []string
	// status overrides the response status for a path.
	status map[string]int

	mutex    sync.Mutex
	requests []recordedRequest
}

// newFakePortal starts the portal after applying `configure`, the portal must
// not be reconfigured afterwards except through setStatus.
func newFakePortal(t testing.TB, configure ...func(p *fakePortal)) *fakePortal {
	p := &fakePortal{t: t, status: map[string]int{}}
	for _, c := range configure {
		c(p)
	}
	p.server = httptest.NewServer(http.HandlerFunc(p.serveHTTP))
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakePortal) record(r *http.Request) recordedRequest {
	err := r.ParseForm()
	if err != nil {
		p.t.Error(err)
	}
	cookies := map[string]string{}
	for _, c := range r.Cookies() {
		cookies[c.Name] = c.Value
	}
	req := recordedRequest{
		method:  r.Method,
		path:    r.URL.Path,
		query:   r.URL.Query(),
		form:    r.PostForm,
		cookies: cookies,
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.requests = append(p.requests, req)
	return req
}

func (p *fakePortal) setStatus(path string, status int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.status[path] = status
}

func (p *fakePortal) statusOverride(path string) (int, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	status, ok := p.status[path]
	return status, ok
}

// find returns the requests made with the given method and path.
func (p *fakePortal) find(method, path string) []recordedRequest {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	var out []recordedRequest
	for _, r := range p.requests {
		if r.method == method && r.path == path {
			out = append(out, r)
		}
	}
	return out
}

func (p *fakePortal) setCookie(w http.ResponseWriter, name, value, path string) {
	for _, omitted := range p.omitCookies {
		if omitted == name {
			return
		}
	}
	http.SetCookie(w, &http.Cookie{Name: name, Value: value, Path: path})
}

func (p *fakePortal) closeConnection(w http.ResponseWriter) {
	conn, _, err := w.(http.Hijacker).Hijack()
	if err != nil {
		p.t.Error(err)
		return
	}
	conn.Close()
}

func writeBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("content-type", contentType)
	w.Write(body)
}

func (p *fakePortal) serveHTTP(w http.ResponseWriter, r *http.Request) {
	for _, f := range p.failing {
		if f == fmt.Sprintf("%s %s", r.Method, r.URL.Path) {
			p.closeConnection(w)
			return
		}
	}
	req := p.record(r)
	if status, ok := p.statusOverride(r.URL.Path); ok {
		w.WriteHeader(status)
		return
	}

	switch {
	case r.URL.Path == "/iserv/auth/login" && r.Method == http.MethodGet:
		if r.URL.Query().Get("_target_path") == "" {
			http.Redirect(w, r, "/iserv/auth/login?_target_path=%2Fiserv%2F", http.StatusFound)
			return
		}
		p.setCookie(w, "PHPSESSID", "php-session", "/")
		writeBody(w, "text/html", []byte(`<form method="post"><input name="_username"><input name="_password"></form>`))

	case r.URL.Path == "/iserv/auth/login" && r.Method == http.MethodPost:
		switch {
		case req.form.Get("_username") != testUsername:
			writeBody(w, "text/html", []byte(`<div class="alert">Account existiert nicht!</div>`))
		case req.form.Get("_password") != testPassword:
			writeBody(w, "text/html", []byte(`<div class="alert">Anmeldung fehlgeschlagen!</div>`))
		default:
			p.setCookie(w, cookieSAT, "sat-value", "/")
			p.setCookie(w, cookieSession, "session-value", "/iserv/")
			writeBody(w, "text/html", []byte(`<a href="/iserv/auth/home">Weiter</a>`))
		}

	case r.URL.Path == "/iserv/auth/home":
		p.setCookie(w, cookieSATId, "sat-id-value", "/iserv")
		writeBody(w, "text/html", []byte(`<html></html>`))

	case r.URL.Path == "/iserv/":
		writeBody(w, "text/html", []byte(`<html></html>`))

	case r.URL.Path == "/iserv/profile":
		writeBody(w, "text/html", fixture(p.t, "profile.html"))

	case r.URL.Path == "/iserv/profile/public/edit" && r.Method == http.MethodGet:
		writeBody(w, "text/html", fixture(p.t, "profile_edit.html"))

	case r.URL.Path == "/iserv/profile/public/edit" && r.Method == http.MethodPost:
		writeBody(w, "text/html", []byte(`<div class="alert alert-success">Gespeichert</div>`))

	case r.URL.Path == "/iserv/core/avatar/user/max.mustermann":
		writeBody(w, "image/svg+xml", []byte(`<svg xmlns="http://www.w3.org/2000/svg"><text>MM</text></svg>`))

	case strings.HasPrefix(r.URL.Path, "/iserv/core/avatar/user/"):
		writeBody(w, "image/webp", []byte("RIFF\x1a\x00\x00\x00WEBPVP8 "))

	case r.URL.Path == "/iserv/mail/api/message/list":
		writeBody(w, "application/json", fixture(p.t, "messages.json"))

	case r.URL.Path == "/iserv/mail/show/source":
		writeBody(w, "text/plain", fixture(p.t, "message.eml"))

	case r.URL.Path == "/iserv/mail/api/folder/list":
		writeBody(w, "application/json", []byte(`[
			{"name": "INBOX", "path": "INBOX", "displayName": "Posteingang", "unseen": 3, "messages": 120},
			{"name": "Sent", "path": "INBOX.Sent", "displayName": "Gesendet", "unseen": 0, "messages": 12}
		]`))

	case r.URL.Path == "/iserv/addressbook/public":
		if r.URL.Query().Get("filter[search]") == "m" {
			writeBody(w, "text/html", fixture(p.t, "addressbook_too_many.html"))
			return
		}
		writeBody(w, "text/html", fixture(p.t, "addressbook.html"))

	case r.URL.Path == "/iserv/addressbook/public/show/max.mustermann":
		writeBody(w, "text/html", fixture(p.t, "user.html"))

	case r.URL.Path == "/iserv/addressbook/public/show/nobody":
		writeBody(w, "text/html", fixture(p.t, "user_empty.html"))

	case r.URL.Path == "/iserv/core/autocomplete/api":
		writeBody(w, "application/json", []byte(`[
			{"type": "user", "id": "max.mustermann", "label": "Max Mustermann", "value": "max.mustermann@school.example"},
			{"type": "list", "id": "klasse-10a", "label": "Klasse 10a", "value": "klasse-10a@school.example"}
		]`))

	case r.URL.Path == "/iserv/user/api/notifications":
		writeBody(w, "application/json", []byte(`{
			"status": "success",
			"data": {
				"count": 2,
				"notifications": [
					{"id": 42, "title": "Neue Aufgabe", "message": "Mathe: Seite 42", "type": "exercise", "url": "/iserv/exercise/show/7", "date": "2024-05-02T08:00:00+02:00", "read": false},
					{"id": 41, "title": "Neue E-Mail", "message": "Elternabend", "type": "mail", "url": "/iserv/mail", "date": "2024-05-01T12:00:00+02:00", "read": true}
				]
			}
		}`))

	case strings.HasPrefix(r.URL.Path, "/iserv/notification/api/v1/notifications/") && r.Method == http.MethodPost:
		writeBody(w, "application/json", []byte(`{"status": "success"}`))

	case r.URL.Path == "/iserv/calendar/api/upcoming":
		writeBody(w, "application/json", []byte(`{
			"events": [
				{"id": "e1", "title": "Mathearbeit", "start": "2024-05-06T08:00:00+02:00", "end": "2024-05-06T09:30:00+02:00", "allDay": false, "calendar": "Klasse 10a"}
			],
			"errors": []
		}`))

	case r.URL.Path == "/iserv/calendar/api/eventsources":
		writeBody(w, "application/json", []byte(`[
			{"id": "personal", "title": "Persönlich", "url": "/iserv/calendar/feed/personal", "color": "#ff0000", "editable": true}
		]`))

	case r.URL.Path == "/iserv/videoconference/api/health":
		writeBody(w, "application/json", []byte(`{"status": "ok"}`))

	case r.URL.Path == "/iserv/app/navigation/badges":
		writeBody(w, "application/json", []byte(`{"mail": 3, "messenger": 0, "exercise": 1}`))

	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t testing.TB, portal *fakePortal) (*Client, *telemetry.Recorder) {
	rec := telemetry.NewRecorder()
	client, err := NewClient(context.Background(), ClientOptions{
		BaseUrl:  portal.server.URL,
		Username: testUsername,
		Password: testPassword,
	}, rec)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client, rec
}
