package protocol

import (
	"strings"
	"testing"
)

// makeURL/buildFormBody/generateSignKey back every signed request the
// session layer sends, so their query-merge and determinism rules are
// worth pinning down independently of any one API call.
func TestMakeURL(t *testing.T) {
	sess := &Session{Language: "vi", IMEI: "test-imei", UserAgent: DefaultUserAgent}

	if u := makeURL(sess, "https://api.zalo.me/path", map[string]any{"foo": "bar"}, true); !strings.Contains(u, "foo=bar") || !strings.Contains(u, "zpw_ver=") || !strings.Contains(u, "zpw_type=") {
		t.Errorf("with defaults: %q missing foo/zpw_ver/zpw_type", u)
	}
	if u := makeURL(sess, "https://api.zalo.me/path", map[string]any{"key": "val"}, false); !strings.Contains(u, "key=val") || strings.Contains(u, "zpw_ver") {
		t.Errorf("without defaults: %q", u)
	}
	if u := makeURL(sess, "https://api.zalo.me/path?foo=existing", map[string]any{"foo": "new"}, false); !strings.Contains(u, "foo=existing") || strings.Contains(u, "foo=new") {
		t.Errorf("existing param got overwritten: %q", u)
	}
	if u := makeURL(sess, "://invalid", nil, false); u != "" {
		t.Errorf("invalid base URL should yield empty string, got %q", u)
	}
}

func TestBuildFormBody(t *testing.T) {
	body := buildFormBody(map[string]string{"key": "value", "foo": "bar"})
	buf := make([]byte, body.Len())
	body.Read(buf)
	s := string(buf)
	if !strings.Contains(s, "key=value") || !strings.Contains(s, "foo=bar") {
		t.Errorf("form body = %q", s)
	}
}

func TestGenerateSignKey_DeterministicPerType(t *testing.T) {
	params := map[string]any{"imei": "test-imei", "type": 30, "client_version": 665}

	if k1, k2 := generateSignKey("getserverinfo", params), generateSignKey("getserverinfo", params); k1 != k2 {
		t.Error("generateSignKey must be deterministic for identical input")
	} else if len(k1) != 32 {
		t.Errorf("expected a 32-char md5 hex digest, got len %d", len(k1))
	}
	if generateSignKey("getserverinfo", params) == generateSignKey("getlogininfo", params) {
		t.Error("different type strings must produce different signatures")
	}
}

func TestConvertToString(t *testing.T) {
	cases := map[string]any{
		"hello":   "hello",
		"42":      42,
		"100":     int64(100),
		"7":       uint(7),
		"3.14":    3.14,
		"true":    true,
		"abc":     []byte("abc"),
	}
	for want, val := range cases {
		if got := convertToString(val); got != want {
			t.Errorf("convertToString(%#v) = %q, want %q", val, got, want)
		}
	}
}

// deriveEncryptKey's building blocks: split the ZCID and the md5 of its
// extension into even/odd halves, then stitch fixed-length prefixes back
// together. Each helper is tiny enough that a regression would otherwise
// only surface as an opaque login failure against the real API.
func TestKeyDerivationHelpers(t *testing.T) {
	even, odd := processStr("ABCDEF")
	if strings.Join(even, "") != "ACE" || strings.Join(odd, "") != "BDF" {
		t.Errorf("processStr = even %v odd %v", even, odd)
	}
	if e, o := processStr(""); len(e) != 0 || len(o) != 0 {
		t.Error("processStr(\"\") should return empty slices")
	}

	parts := []string{"A", "B", "C", "D", "E"}
	if got := joinFirst(parts, 3); got != "ABC" {
		t.Errorf("joinFirst(_, 3) = %q", got)
	}
	if got := joinFirst(parts, 10); got != "ABCDE" {
		t.Errorf("joinFirst(_, 10) should clamp to len(parts), got %q", got)
	}
	if got := joinFirst(parts, 0); got != "" {
		t.Errorf("joinFirst(_, 0) = %q, want empty", got)
	}

	rev := reverseCopy(parts)
	if strings.Join(rev, "") != "EDCBA" {
		t.Errorf("reverseCopy = %v", rev)
	}
	if strings.Join(parts, "") != "ABCDE" {
		t.Error("reverseCopy must not mutate its input")
	}
}

func TestRandomHexString_RespectsLengthRange(t *testing.T) {
	for i := 0; i < 10; i++ {
		if s := randomHexString(6, 12); len(s) < 6 || len(s) > 12 {
			t.Errorf("randomHexString(6,12) = len %d", len(s))
		}
	}
	if s := randomHexString(8, 8); len(s) != 8 {
		t.Errorf("randomHexString(8,8) = len %d, want 8", len(s))
	}
}

func TestGenerateIMEI_StableHashRandomUUID(t *testing.T) {
	a := GenerateIMEI("test-agent")
	b := GenerateIMEI("test-agent")
	if a == b {
		t.Error("IMEI should differ run to run (random UUID prefix)")
	}
	hashOf := func(imei string) string { return imei[strings.LastIndex(imei, "-")+1:] }
	if ha, hb := hashOf(a), hashOf(b); ha != hb {
		t.Error("the md5(userAgent) suffix should be stable across calls")
	} else if len(ha) != 32 {
		t.Errorf("md5 suffix len = %d, want 32", len(ha))
	}
}

func TestNewSession_Defaults(t *testing.T) {
	sess := NewSession()
	if sess.UserAgent != DefaultUserAgent || sess.Language != DefaultLanguage {
		t.Errorf("sess = %+v", sess)
	}
	if sess.CookieJar == nil || sess.Client == nil {
		t.Error("NewSession must populate both CookieJar and Client")
	}
}
