package travelhost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"travelhost-backend/lib/timezone"
)

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Session is the serializable shape of an authenticated login: the
// cookie sets of both origins plus the identity they belong to. The
// expiry itself lives with the session store record.
type Session struct {
	TenantId string `json:"tenant_id"`
	Username string `json:"username"`
	LoginAt  int64  `json:"login_at"`
	// cookies keyed by origin hostname
	Cookies map[string][]storedCookie `json:"cookies"`
}

// snapshotSession captures the current cookie jar into a Session.
func (c *Client) snapshotSession() *Session {
	jar := c.http.GetClient().Jar
	cookies := map[string][]storedCookie{}
	for _, origin := range []*url.URL{c.loginUrl, c.appUrl} {
		for _, cookie := range jar.Cookies(origin) {
			cookies[origin.Hostname()] = append(cookies[origin.Hostname()], storedCookie{
				Name:  cookie.Name,
				Value: cookie.Value,
			})
		}
	}

	return &Session{
		TenantId: c.creds.TenantId,
		Username: c.creds.Username,
		LoginAt:  timezone.Now().Unix(),
		Cookies:  cookies,
	}
}

func (c *Client) persistSession(ctx context.Context, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.sessions.Save(ctx, c.creds.Identity(), payload, c.sessionTTL)
}

// restoreSession deserializes a stored session and loads its cookies
// back into the client's jar.
func restoreSession(payload []byte, c *Client) (*Session, error) {
	var session Session
	err := json.Unmarshal(payload, &session)
	if err != nil {
		return nil, err
	}

	jar := c.http.GetClient().Jar
	for _, origin := range []*url.URL{c.loginUrl, c.appUrl} {
		stored := session.Cookies[origin.Hostname()]
		cookies := make([]*http.Cookie, len(stored))
		for i, sc := range stored {
			cookies[i] = &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"}
		}
		jar.SetCookies(origin, cookies)
	}

	return &session, nil
}

// Age reports how long ago the session logged in.
func (s *Session) Age() time.Duration {
	return timezone.Now().Sub(time.Unix(s.LoginAt, 0))
}
