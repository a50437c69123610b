package protocol

import (
	"encoding/json"
	"fmt"
)

// reconnectToken is the serialized form GenToken/ParseToken exchange: just
// enough of a Session to rebuild an http.CookieJar and resume polling
// without a fresh login.
type reconnectToken struct {
	UID       string   `json:"uid"`
	IMEI      string   `json:"imei"`
	UserAgent string   `json:"user_agent"`
	Language  string   `json:"language"`
	SecretKey string   `json:"secret_key"`
	Cookies   []Cookie `json:"cookies"`
}

// GenToken serializes sess's reconnectable state to bytes a caller can
// store and later hand back to ResumeFromToken.
func GenToken(sess *Session) ([]byte, error) {
	if sess.LoginInfo == nil {
		return nil, fmt.Errorf("zalo_personal: gen_token: session is not logged in")
	}
	cu := NewHTTPCookies(sess.CookieJar.Cookies(&DefaultBaseURL))
	t := reconnectToken{
		UID:       sess.UID,
		IMEI:      sess.IMEI,
		UserAgent: sess.UserAgent,
		Language:  sess.Language,
		SecretKey: sess.SecretKey,
		Cookies:   cu.GetCookies(),
	}
	return json.Marshal(t)
}

// ResumeFromToken rebuilds a Session from bytes produced by GenToken. The
// returned session still needs fetchLoginInfo/fetchServerInfo re-run to
// populate LoginInfo/Settings before it can make authenticated calls.
func ResumeFromToken(data []byte) (*Session, error) {
	var t reconnectToken
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("zalo_personal: parse token: %w", err)
	}
	sess := NewSession()
	sess.UID = t.UID
	sess.IMEI = t.IMEI
	if t.UserAgent != "" {
		sess.UserAgent = t.UserAgent
	}
	if t.Language != "" {
		sess.Language = t.Language
	}
	sess.SecretKey = t.SecretKey
	cu := CookieUnion{cookies: t.Cookies}
	cu.BuildCookieJar(&DefaultBaseURL, sess.CookieJar)
	sess.Client.Jar = sess.CookieJar
	return sess, nil
}
