package travelhost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"travelhost-backend/lib/sessionstore"
	"travelhost-backend/lib/sessionstore/db"
	"travelhost-backend/lib/telemetry"
	"travelhost-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

const testLoginPage = `<html><body><form id="form1" action="./Default.aspx">
<input type="hidden" name="__VIEWSTATE" value="vstate" />
<input type="hidden" name="__VIEWSTATEGENERATOR" value="vgen" />
<input type="hidden" name="__EVENTVALIDATION" value="eval" />
<input type="text" name="txtAgencyCode" />
<input type="text" name="txtUserName" />
<input type="password" name="txtPassword" />
</form></body></html>`

func testSessions(t *testing.T) sessionstore.Store {
	return sessionstore.NewStore(testutil.OpenDB(t, db.Schema))
}

func newTestClient(t *testing.T, sessions sessionstore.Store, loginBase, appBase string) *Client {
	client, err := NewClient(ClientOptions{
		LoginBaseUrl: loginBase,
		AppBaseUrl:   appBase,
		Credentials:  Credentials{TenantId: "acme", Username: "alice", Password: "hunter2"},
		Sessions:     sessions,
		SessionTTL:   time.Hour,
	})
	require.NoError(t, err)
	return client
}

func TestLoginSuccess(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:travelhost")
	defer cleanup()

	appHits := 0
	app := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appHits++
		http.SetCookie(w, &http.Cookie{Name: "AppSession", Value: "app-cookie", Path: "/"})
		fmt.Fprint(w, "<html><body>Welcome</body></html>")
	}))
	defer app.Close()

	loginPosts := 0
	var postedForm url.Values
	login := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, testLoginPage)
			return
		}
		loginPosts++
		require.NoError(t, r.ParseForm())
		postedForm = r.PostForm
		http.SetCookie(w, &http.Cookie{Name: "LoginSession", Value: "login-cookie", Path: "/"})
		w.Header().Set("Location", app.URL+"/Default.aspx")
		w.WriteHeader(http.StatusFound)
	}))
	defer login.Close()

	sessions := testSessions(t)
	client := newTestClient(t, sessions, login.URL, app.URL)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	require.NoError(t, client.Login(ctx))
	require.NotNil(t, client.session)

	// the harvested state must be echoed back verbatim
	require.Equal(t, "vstate", postedForm.Get("__VIEWSTATE"))
	require.Equal(t, "vgen", postedForm.Get("__VIEWSTATEGENERATOR"))
	require.Equal(t, "eval", postedForm.Get("__EVENTVALIDATION"))
	require.Equal(t, "acme", postedForm.Get("txtAgencyCode"))
	require.Equal(t, "alice", postedForm.Get("txtUserName"))
	require.Equal(t, "hunter2", postedForm.Get("txtPassword"))

	// the redirect into the application origin was followed explicitly
	require.Equal(t, 1, appHits)

	names := map[string]bool{}
	for _, cookies := range client.session.Cookies {
		for _, c := range cookies {
			names[c.Name] = true
		}
	}
	require.True(t, names["LoginSession"])
	require.True(t, names["AppSession"])

	// a session landed in the store under the credential identity
	_, err := sessions.Load(ctx, "acme:alice")
	require.NoError(t, err)

	// the in-memory session short-circuits further logins
	require.NoError(t, client.EnsureLoggedIn(ctx))
	require.Equal(t, 1, loginPosts)
}

func TestLoginMissingStateToken(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:travelhost")
	defer cleanup()

	login := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		fmt.Fprint(w, `<html><body><form>
<input type="hidden" name="__VIEWSTATE" value="vstate" />
<input type="hidden" name="__VIEWSTATEGENERATOR" value="vgen" />
</form></body></html>`)
	}))
	defer login.Close()

	client := newTestClient(t, testSessions(t), login.URL, login.URL)
	err := client.Login(context.Background())
	require.ErrorIs(t, err, ProtocolShapeChanged)
}

func TestLoginRedirectToWrongDomain(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:travelhost")
	defer cleanup()

	login := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, testLoginPage)
			return
		}
		// bounced back to the login surface instead of the application
		w.Header().Set("Location", "https://portal.elsewhere.example/Default.aspx?err=1")
		w.WriteHeader(http.StatusFound)
	}))
	defer login.Close()

	client := newTestClient(t, testSessions(t), login.URL, "https://app.example.com")
	err := client.Login(context.Background())
	require.ErrorIs(t, err, InvalidCredentials)
}

func TestLoginFailureMessage(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:travelhost")
	defer cleanup()

	login := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, testLoginPage)
			return
		}
		fmt.Fprint(w, `<html><body><span id="lblError">Invalid agency, user name, or password.</span></body></html>`)
	}))
	defer login.Close()

	client := newTestClient(t, testSessions(t), login.URL, "https://app.example.com")
	err := client.Login(context.Background())
	require.ErrorIs(t, err, InvalidCredentials)
}

func TestLoginUnknownResponse(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:travelhost")
	defer cleanup()

	login := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, testLoginPage)
			return
		}
		fmt.Fprint(w, `<html><body>Scheduled maintenance in progress.</body></html>`)
	}))
	defer login.Close()

	client := newTestClient(t, testSessions(t), login.URL, "https://app.example.com")
	err := client.Login(context.Background())
	require.ErrorIs(t, err, UnknownLoginResponse)
}

func TestLoginRestoresStoredSession(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:travelhost")
	defer cleanup()

	app := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "AppSession", Value: "app-cookie", Path: "/"})
	}))
	defer app.Close()

	loginPosts := 0
	login := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, testLoginPage)
			return
		}
		loginPosts++
		w.Header().Set("Location", app.URL+"/Default.aspx")
		w.WriteHeader(http.StatusFound)
	}))
	defer login.Close()

	sessions := testSessions(t)
	ctx := context.Background()

	first := newTestClient(t, sessions, login.URL, app.URL)
	require.NoError(t, first.Login(ctx))
	require.Equal(t, 1, loginPosts)

	// a fresh client for the same identity picks the session up from
	// the store without touching the login surface again
	second := newTestClient(t, sessions, login.URL, app.URL)
	require.NoError(t, second.Login(ctx))
	require.Equal(t, 1, loginPosts)
	require.NotNil(t, second.session)
	require.Equal(t, first.session.LoginAt, second.session.LoginAt)
}

const testSearchPage = `<html><body>
<script type="text/javascript">
//<![CDATA[
Sys.WebForms.PageRequestManager._initialize('ctl00$smMain', 'aspnetForm', [], [], [], 90, 'ctl00');
//]]>
</script>
<form id="aspnetForm" action="SearchTools.aspx">
<input type="hidden" name="__VIEWSTATE" value="search-vstate" />
<input type="hidden" name="__VIEWSTATEGENERATOR" value="search-vgen" />
<input type="hidden" name="__EVENTVALIDATION" value="search-eval" />
<select name="ctl00$cphMain$HotelSearch$ddlVendor">
  <option value="">Select a vendor</option>
  <option value="GP">Grand Palms Collection</option>
  <option value="PW">Parkway Hotels</option>
</select>
</form></body></html>`

func newSearchAppServer(t *testing.T, searched *url.Values) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/SearchTools.aspx", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, testSearchPage)
			return
		}
		require.NoError(t, r.ParseForm())
		*searched = r.PostForm
		w.Write(resultsFixture)
	})
	markets := func(payload string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, `"acme"`, body["tenantId"])
			require.Equal(t, `null`, body["filter"])
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			fmt.Fprint(w, payload)
		}
	}
	mux.HandleFunc("/Services/MarketService.asmx/GetOrigins",
		markets(`{"d":[{"Code":"ATL","Name":"Atlanta Metro"}]}`))
	mux.HandleFunc("/Services/MarketService.asmx/GetDestinations",
		markets(`{"d":[{"Code":"MCO","Name":"Orlando Area"}]}`))
	return httptest.NewServer(mux)
}

func TestVendors(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:travelhost")
	defer cleanup()

	var searched url.Values
	app := newSearchAppServer(t, &searched)
	defer app.Close()

	client := newTestClient(t, testSessions(t), app.URL, app.URL)
	client.session = &Session{TenantId: "acme", Username: "alice"}

	vendors, err := client.Vendors(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Vendor{
		{Code: "GP", Name: "Grand Palms Collection"},
		{Code: "PW", Name: "Parkway Hotels"},
	}, vendors)
}

func TestSearchVendor(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:travelhost")
	defer cleanup()

	var searched url.Values
	app := newSearchAppServer(t, &searched)
	defer app.Close()

	client := newTestClient(t, testSessions(t), app.URL, app.URL)
	client.session = &Session{TenantId: "acme", Username: "alice"}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	params := SearchParams{
		Origin:        "ATL",
		Destination:   "MCO",
		CheckIn:       "01/10/2026",
		CheckOut:      "01/15/2026",
		Rooms:         1,
		AdultsPerRoom: []int{2},
	}
	hotels, err := client.SearchVendor(ctx, Vendor{Code: "GP", Name: "Grand Palms Collection"}, params)
	require.NoError(t, err)
	require.Len(t, hotels, 2)
	require.Equal(t, "Grand Palms Resort", hotels[0].Name)
	require.Equal(t, "Parkway Inn", hotels[1].Name)

	// the posted form carries the fresh page state and resolved markets
	require.Equal(t, "search-vstate", searched.Get("__VIEWSTATE"))
	require.Equal(t, resultsPanel+"|"+searchButtonField, searched.Get("ctl00$smMain"))
	require.Equal(t, "GP", searched.Get(controlName("HotelSearch", "ddlVendor")))
	require.Equal(t, "Atlanta Metro (ATL)", searched.Get(controlName("HotelSearch", "txtOrigin")))
	require.Equal(t, "Orlando Area (MCO)", searched.Get(controlName("HotelSearch", "txtDestination")))
	require.Equal(t, "2", searched.Get(controlName("HotelSearch", "RoomOccupancy1", "ddlAdults")))
}
