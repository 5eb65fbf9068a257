// Package travelhost drives the booking host's agent portal: a legacy,
// stateful web application with no documented API. Every state-changing
// request must echo freshly harvested form state, the login surface and
// the application proper live on different origins, and responses are
// semi-structured markup. One Client owns one logical user's session;
// sharing an instance between concurrent callers is not supported.
package travelhost

import (
	"bytes"
	"errors"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"context"

	"travelhost-backend/lib/sessionstore"
	"travelhost-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("scrapers/travelhost")

var InvalidCredentials = errors.New("Invalid agency, user name, or password.")
var ProtocolShapeChanged = errors.New("the login page no longer matches the expected form structure")
var UnknownLoginResponse = errors.New("the login response was neither a qualifying redirect nor a recognized failure")

// the three state tokens the login form must echo back. if any of them
// is missing the upstream form changed shape and nothing downstream can
// be trusted.
var loginStateTokens = []string{
	"__VIEWSTATE",
	"__VIEWSTATEGENERATOR",
	"__EVENTVALIDATION",
}

type Client struct {
	// a unique id for this client instance, used in logs
	ClientId string

	loginUrl *url.URL
	appUrl   *url.URL
	http     *resty.Client

	creds      Credentials
	sessions   sessionstore.Store
	sessionTTL time.Duration

	session *Session

	// populated lazily from the host, reused by listing operations
	vendors      []Vendor
	origins      []Market
	destinations []Market
}

type ClientOptions struct {
	// base url of the login origin
	LoginBaseUrl string
	// base url of the application origin the login redirects into
	AppBaseUrl  string
	Credentials Credentials
	Sessions    sessionstore.Store
	SessionTTL  time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	loginUrl, err := url.Parse(opts.LoginBaseUrl)
	if err != nil {
		return nil, err
	}
	appUrl, err := url.Parse(opts.AppBaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(loginUrl.Hostname(), appUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	// the host throttles aggressively per session, stay well under it
	limiter := rate.NewLimiter(2, 2)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(client, "scrapers/travelhost/http")

	clientId, err := random.String(8)
	if err != nil {
		return nil, err
	}

	return &Client{
		ClientId:   clientId,
		loginUrl:   loginUrl,
		appUrl:     appUrl,
		http:       client,
		creds:      opts.Credentials,
		sessions:   opts.Sessions,
		sessionTTL: opts.SessionTTL,
	}, nil
}

// EnsureLoggedIn logs in unless this instance already holds a session.
// An in-memory session is trusted for the lifetime of the process; only
// the cross-process restore path re-checks the TTL.
func (c *Client) EnsureLoggedIn(ctx context.Context) error {
	if c.session != nil {
		return nil
	}
	return c.Login(ctx)
}

func (c *Client) Login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	payload, err := c.sessions.Load(ctx, c.creds.Identity())
	if err == nil {
		session, err := restoreSession(payload, c)
		if err == nil {
			span.SetStatus(codes.Ok, "SESSION RESTORED")
			c.session = session
			return nil
		}
		span.RecordError(err)
	} else if err != sessionstore.ErrNotFound {
		span.RecordError(err)
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(c.loginUrl.String())
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch login page")
		return err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse login page html")
		return err
	}

	form := url.Values{}
	for _, token := range loginStateTokens {
		value := doc.Find(fmt.Sprintf("input[name=%s]", token)).AttrOr("value", "")
		if value == "" {
			span.SetStatus(codes.Error, ProtocolShapeChanged.Error())
			return fmt.Errorf("%w: no %s token", ProtocolShapeChanged, token)
		}
		form.Set(token, value)
	}

	// bookkeeping fields the postback protocol requires, opaque to us
	form.Set("__EVENTTARGET", "")
	form.Set("__EVENTARGUMENT", "")
	form.Set("__LASTFOCUS", "")
	form.Set("txtAgencyCode", c.creds.TenantId)
	form.Set("txtUserName", c.creds.Username)
	form.Set("txtPassword", c.creds.Password)
	form.Set("chkRememberAgency", "on")
	form.Set("btnSignIn", "Sign In")

	c.http.SetRedirectPolicy(resty.NoRedirectPolicy())
	res, err = c.http.R().
		SetContext(ctx).
		SetBody(form.Encode()).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		Post(c.loginUrl.String())
	c.http.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(c.loginUrl.Hostname(), c.appUrl.Hostname()))
	// resty surfaces the suppressed redirect as an error even though
	// the 3xx response itself is what we are after
	if err != nil && !strings.Contains(err.Error(), "auto redirect is disabled") {
		span.SetStatus(codes.Error, "failed to post login")
		return err
	}

	if res.StatusCode() >= 300 && res.StatusCode() < 400 {
		location := res.Header().Get("Location")
		target, err := c.loginUrl.Parse(location)
		if err != nil || target.Hostname() != c.appUrl.Hostname() {
			span.SetStatus(codes.Error, InvalidCredentials.Error())
			return InvalidCredentials
		}

		// the login origin and the application origin scope their
		// cookies independently. follow the redirect with an explicit
		// GET so the second origin's session cookie lands in the jar;
		// an auto-followed redirect would not surface it to us.
		_, err = c.http.R().
			SetContext(ctx).
			Get(target.String())
		if err != nil {
			span.SetStatus(codes.Error, "failed to follow post-login redirect")
			return err
		}
	} else if bytes.Contains(res.Body(), []byte("Invalid agency, user name, or password")) {
		span.SetStatus(codes.Error, InvalidCredentials.Error())
		return InvalidCredentials
	} else {
		span.SetStatus(codes.Error, UnknownLoginResponse.Error())
		return UnknownLoginResponse
	}

	session := c.snapshotSession()
	err = c.persistSession(ctx, session)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist session")
		return err
	}

	c.session = session
	return nil
}

// Logout drops the in-memory session and the persisted record.
// Idempotent.
func (c *Client) Logout(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Logout")
	defer span.End()

	c.session = nil
	c.vendors = nil

	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	c.http.SetCookieJar(jar)

	err = c.sessions.Delete(ctx, c.creds.Identity())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
