package protocol

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"
	"time"
)

// Credentials round-trip through the gateway's session-store persistence,
// so both the struct's JSON shape and its validity gate matter.
func TestCredentials_IsValid(t *testing.T) {
	cases := []struct {
		name  string
		cred  Credentials
		valid bool
	}{
		{"cookies present", Credentials{IMEI: "abc", UserAgent: "ua", Cookie: &CookieUnion{cookies: []Cookie{{Name: "a"}}}}, true},
		{"no cookies yet", Credentials{IMEI: "abc", UserAgent: "ua"}, true},
		{"missing imei", Credentials{UserAgent: "ua"}, false},
		{"missing user agent", Credentials{IMEI: "abc"}, false},
		{"zero value", Credentials{}, false},
	}
	for _, tt := range cases {
		if got := tt.cred.IsValid(); got != tt.valid {
			t.Errorf("%s: IsValid() = %v, want %v", tt.name, got, tt.valid)
		}
	}
}

func TestCredentials_JSONRoundtrip(t *testing.T) {
	lang := "vi"
	cred := Credentials{
		IMEI:      "imei-123",
		UserAgent: "Mozilla/5.0",
		Language:  &lang,
		Cookie:    &CookieUnion{cookies: []Cookie{{Name: "zpw_sek", Value: "abc", Domain: "chat.zalo.me"}}},
	}
	b, err := json.Marshal(cred)
	if err != nil {
		t.Fatal(err)
	}
	var got Credentials
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got.IMEI != cred.IMEI || got.UserAgent != cred.UserAgent {
		t.Errorf("got = %+v", got)
	}
	if got.Language == nil || *got.Language != "vi" {
		t.Error("Language did not survive the roundtrip")
	}
	if got.Cookie == nil || len(got.Cookie.GetCookies()) != 1 {
		t.Error("Cookie did not survive the roundtrip")
	}
}

// CookieUnion accepts either a plain cookie array or the browser-extension
// J2Cookie export shape; both must come back as the same GetCookies() view,
// and the two forms must never be set simultaneously.
func TestCookieUnion_ArrayForm(t *testing.T) {
	cu := CookieUnion{cookies: []Cookie{
		{Name: "zpw_sek", Value: "abc123", Domain: "chat.zalo.me", Path: "/"},
		{Name: "zpw_enk", Value: "def456", Domain: "chat.zalo.me", Path: "/"},
	}}
	b, err := cu.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	var round CookieUnion
	if err := round.UnmarshalJSON(b); err != nil {
		t.Fatal(err)
	}
	if got := round.GetCookies(); len(got) != 2 || got[0].Name != "zpw_sek" || got[1].Name != "zpw_enk" {
		t.Errorf("got = %+v", got)
	}
}

func TestCookieUnion_J2CookieForm(t *testing.T) {
	cu := CookieUnion{j2cookie: &J2Cookie{URL: "https://chat.zalo.me", Cookies: []Cookie{{Name: "test", Value: "val"}}}}
	b, err := cu.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	var round CookieUnion
	if err := round.UnmarshalJSON(b); err != nil {
		t.Fatal(err)
	}
	if got := round.GetCookies(); len(got) != 1 || got[0].Name != "test" {
		t.Errorf("got = %+v", got)
	}
}

func TestCookieUnion_NullAndConflict(t *testing.T) {
	var cu CookieUnion
	if err := cu.UnmarshalJSON([]byte("null")); err != nil {
		t.Fatal(err)
	}
	if cu.IsValid() {
		t.Error("a null CookieUnion should not be valid")
	}
	if b, err := cu.MarshalJSON(); err != nil || string(b) != "null" {
		t.Errorf("MarshalJSON = %s, %v", b, err)
	}

	both := CookieUnion{cookies: []Cookie{{Name: "a"}}, j2cookie: &J2Cookie{URL: "x"}}
	if _, err := both.MarshalJSON(); err == nil {
		t.Error("setting both cookie forms at once should be rejected")
	}
}

func TestCookie_HTTPCookieRoundtrip(t *testing.T) {
	c := Cookie{
		Domain: "chat.zalo.me", Name: "test", Value: "val", Path: "/",
		HTTPOnly: true, Secure: true, SameSite: SameSiteNone,
		ExpirationDate: float64(time.Now().Add(time.Hour).Unix()),
	}
	hc := c.ToHTTPCookie()
	if hc.Name != "test" || hc.Value != "val" || !hc.HttpOnly || !hc.Secure {
		t.Errorf("ToHTTPCookie = %+v", hc)
	}
	if hc.SameSite != http.SameSiteNoneMode {
		t.Errorf("SameSite = %d, want None", hc.SameSite)
	}
	if hc.Expires.IsZero() {
		t.Error("a non-session cookie should carry an expiry")
	}

	src := &http.Cookie{Domain: "chat.zalo.me", Name: "zpw_sek", Value: "secret", Path: "/", HttpOnly: true, Secure: true, SameSite: http.SameSiteLaxMode, MaxAge: 3600}
	var back Cookie
	back.FromHTTPCookie(src)
	if back.Name != "zpw_sek" || !back.HTTPOnly || back.SameSite != SameSiteLax {
		t.Errorf("FromHTTPCookie = %+v", back)
	}
	if back.Session || back.ExpirationDate == 0 {
		t.Error("a MaxAge>0 cookie should not be marked Session and should carry an ExpirationDate")
	}
}

func TestCookieUnion_BuildCookieJar_PureAndIdempotent(t *testing.T) {
	cookies := []Cookie{{Domain: ".chat.zalo.me", Name: "test", Value: "val", Path: "/"}}
	cu := CookieUnion{cookies: cookies}
	u, _ := url.Parse("https://chat.zalo.me")

	origDomain := cu.GetCookies()[0].Domain
	jar1, _ := cookiejar.New(nil)
	cu.BuildCookieJar(u, jar1)
	if cu.GetCookies()[0].Domain != origDomain {
		t.Error("BuildCookieJar must not mutate the receiver's cookies")
	}

	jar2, _ := cookiejar.New(nil)
	cu.BuildCookieJar(u, jar2)
	if len(jar1.Cookies(u)) != len(jar2.Cookies(u)) {
		t.Error("BuildCookieJar should be idempotent across fresh jars")
	}
}

func TestSameSite_MarshalUnmarshal(t *testing.T) {
	cases := []struct {
		val  SameSite
		json string
	}{
		{SameSiteDefault, "null"},
		{SameSiteLax, `"lax"`},
		{SameSiteStrict, `"strict"`},
		{SameSiteNone, `"none"`},
	}
	for _, tt := range cases {
		b, err := tt.val.MarshalJSON()
		if err != nil || string(b) != tt.json {
			t.Errorf("MarshalJSON(%q) = %s, %v", tt.val, b, err)
		}
		var got SameSite
		if err := got.UnmarshalJSON(b); err != nil || got != tt.val {
			t.Errorf("UnmarshalJSON(%s) = %q, %v", tt.json, got, err)
		}
	}
}
