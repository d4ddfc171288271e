// client.go contains the session bootstrap: building the http client, logging in
// and extracting the session identifiers the portal hands out.

package iserv

import (
	"context"
	"errors"
	"fmt"
	"iserv-client/internal/components/telemetry"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_login               = "client.login"
	report_client_session_cookies     = "client.session-cookies"
	report_client_post_with_cookie    = "client.post-with-cookies"
	report_client_own_user_info       = "client.own-user-info"
	report_client_set_own_user_info   = "client.set-own-user-info"
	report_client_profile_picture     = "client.profile-picture"
	report_client_emails              = "client.emails"
	report_client_email_source        = "client.email-source"
	report_client_mail_folders        = "client.mail-folders"
	report_client_search_users        = "client.search-users"
	report_client_search_autocomplete = "client.search-users-autocomplete"
	report_client_user_info           = "client.user-info"
	report_client_notifications       = "client.notifications"
	report_client_read_notifications  = "client.read-notifications"
	report_client_upcoming_events     = "client.upcoming-events"
	report_client_event_sources       = "client.event-sources"
	report_client_conference_health   = "client.conference-health"
	report_client_badges              = "client.badges"
	report_client_files               = "client.files"
	report_client_send_email          = "client.send-email"
)

var (
	AccountNotFound  = errors.New("account does not exist")
	LoginFailed      = errors.New("login failed, probably wrong password")
	ConnectionFailed = errors.New("error establishing connection")
	UnexpectedStatus = errors.New("unexpected response status")
	NoSuchUser       = errors.New("no such user found")
	TooManyResults   = errors.New("too many results, please restrict filter criteria")
)

// markers the login page shows when the credentials are rejected
const (
	accountNotFoundMarker = "Account existiert nicht!"
	loginFailedMarker     = "Anmeldung fehlgeschlagen!"
)

const (
	cookieSAT     = "IServSAT"
	cookieSATId   = "IServSATId"
	cookieSession = "IServSession"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// SessionIdentifiers are the cookie values identifying a logged in session,
// a cookie the server did not set is left as an empty string.
type SessionIdentifiers struct {
	SAT     string
	SATId   string
	Session string
}

func (s SessionIdentifiers) cookies() []*http.Cookie {
	return []*http.Cookie{
		{Name: cookieSAT, Value: s.SAT},
		{Name: cookieSATId, Value: s.SATId},
		{Name: cookieSession, Value: s.Session},
	}
}

type ClientOptions struct {
	// Host is the domain of the IServ instance, ex. "school.example".
	Host     string
	Username string
	Password string

	// BaseUrl overrides "https://<Host>".
	BaseUrl string
	// Timeout of each request, 30 seconds if unset.
	Timeout time.Duration
	// CloudflareBypass wraps the transport so requests look like they come from a browser.
	CloudflareBypass bool
	// RequestsPerSecond limits the request rate, 0 means unlimited.
	RequestsPerSecond float64
	// DumpDir receives a text file per request/response pair when set, its
	// previous contents are removed.
	DumpDir string
}

type Client struct {
	Host    string
	BaseUrl *url.URL
	// Http carries the cookie jar of the logged in session.
	Http    *resty.Client
	Session SessionIdentifiers

	username string
	password string
	// bare has no cookie jar, requests made with it only carry the
	// session identifiers that are explicitly attached.
	bare *resty.Client
	tel  telemetry.API
}

// newHttpClient builds a resty client for the portal, `limiter` may be nil and
// is shared by every client of the same session.
func newHttpClient(
	baseUrl *url.URL,
	opts ClientOptions,
	limiter *rate.Limiter,
	dump telemetry.DumpOutput,
	tel telemetry.API,
) *resty.Client {
	httpClient := resty.New()
	httpClient.SetBaseURL(baseUrl.String())
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeaders(map[string]string{
		"user-agent":      userAgent,
		"accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		"accept-language": "de-DE,de;q=0.9,en-US;q=0.8,en;q=0.7",
	})
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}
	httpClient.SetTimeout(timeout)

	if limiter != nil {
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, "iserv/http", tel)
	if dump != nil {
		telemetry.DumpResty(httpClient, dump)
	}
	return httpClient
}

// NewClient creates a client and logs in with the given credentials. `tel` may be
// nil, in which case reports are written with log/slog.
func NewClient(ctx context.Context, opts ClientOptions, tel telemetry.API) (*Client, error) {
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	tel = telemetry.NewScopedAPI("iserv_client", tel)

	if opts.Host == "" && opts.BaseUrl == "" {
		return nil, fmt.Errorf("iserv client: host is required")
	}
	if opts.Username == "" {
		return nil, fmt.Errorf("iserv client: username is required")
	}

	rawBaseUrl := opts.BaseUrl
	if rawBaseUrl == "" {
		rawBaseUrl = fmt.Sprintf("https://%s", opts.Host)
	}
	baseUrl, err := url.Parse(rawBaseUrl)
	if err != nil {
		return nil, fmt.Errorf("iserv client: parse base url: %w", err)
	}
	host := opts.Host
	if host == "" {
		host = baseUrl.Hostname()
	}

	var dump telemetry.DumpOutput
	if opts.DumpDir != "" {
		dump, err = telemetry.NewDirectoryOutput(opts.DumpDir, tel)
		if err != nil {
			return nil, fmt.Errorf("iserv client: dump dir: %w", err)
		}
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	httpClient := newHttpClient(baseUrl, opts, limiter, dump, tel)
	httpClient.SetCookieJar(jar)

	bare := newHttpClient(baseUrl, opts, limiter, dump, tel)
	bare.SetCookieJar(nil)

	c := &Client{
		Host:     host,
		BaseUrl:  baseUrl,
		Http:     httpClient,
		username: opts.Username,
		password: opts.Password,
		bare:     bare,
		tel:      tel,
	}

	err = c.Login(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) Username() string {
	return c.username
}

// Login performs the login handshake and refreshes the session identifiers.
// It does not retry, an expired session is only renewed by calling it again.
func (c *Client) Login(ctx context.Context) error {
	connectionError := func(step string, err error) error {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("%s: %w", step, err),
		)
		return fmt.Errorf("%w: %s: %w", ConnectionFailed, step, err)
	}

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/iserv/auth/login")
	if err != nil {
		return connectionError("login page request", err)
	}

	// the login form is posted to wherever the login page redirected us to
	loginUrl := res.Request.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		loginUrl = res.RawResponse.Request.URL.String()
	}

	res, err = c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"_username": c.username,
			"_password": c.password,
		}).
		Post(loginUrl)
	if err != nil {
		return connectionError("login request", err)
	}

	body := res.String()
	if strings.Contains(body, accountNotFoundMarker) {
		c.tel.ReportWarning(report_client_login, AccountNotFound, c.username)
		return AccountNotFound
	}
	if strings.Contains(body, loginFailedMarker) {
		c.tel.ReportWarning(report_client_login, LoginFailed, c.username)
		return LoginFailed
	}

	// these pages only need to be visited for the server to hand out the
	// remaining session cookies, their contents are not used
	for _, endpoint := range []string{"/iserv/auth/home", "/iserv/", "/iserv/"} {
		_, err = c.Http.R().
			SetContext(ctx).
			Get(endpoint)
		if err != nil {
			return connectionError(fmt.Sprintf("request %s", endpoint), err)
		}
	}

	c.Session = c.readSessionCookies()
	c.tel.ReportDebug("session cookies extracted", c.username)
	return nil
}

func (c *Client) readSessionCookies() SessionIdentifiers {
	scope := *c.BaseUrl
	scope.Path = "/iserv/"

	values := map[string]string{}
	jar := c.Http.GetClient().Jar
	if jar != nil {
		for _, cookie := range jar.Cookies(&scope) {
			values[cookie.Name] = cookie.Value
		}
	}

	for _, name := range []string{cookieSAT, cookieSATId, cookieSession} {
		if _, ok := values[name]; !ok {
			c.tel.ReportWarning(
				report_client_session_cookies,
				fmt.Errorf("cookie %s was not set", name),
			)
		}
	}

	return SessionIdentifiers{
		SAT:     values[cookieSAT],
		SATId:   values[cookieSATId],
		Session: values[cookieSession],
	}
}

// Close releases the idle connections held by the client.
func (c *Client) Close() {
	c.Http.GetClient().CloseIdleConnections()
	c.bare.GetClient().CloseIdleConnections()
}
