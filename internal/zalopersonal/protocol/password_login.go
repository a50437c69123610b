package protocol

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// decodeDataURLImage strips a "data:image/...;base64," prefix and decodes
// the remainder, the same shape qrGenerateCode already unwraps for QR
// codes.
func decodeDataURLImage(dataURL string) ([]byte, error) {
	if idx := strings.Index(dataURL, ","); idx >= 0 {
		dataURL = dataURL[idx+1:]
	}
	return base64.StdEncoding.DecodeString(dataURL)
}

// LoginOutcomeKind discriminates the result of one password-login step.
// The flow is a small state machine: a step either succeeds outright or
// hands back a Token the caller must replay into the next step along with
// whatever the outcome is asking for (a captcha answer, an SMS code, or
// just a wait for the user to tap "approve" on their phone).
type LoginOutcomeKind int

const (
	LoginUnknown LoginOutcomeKind = iota
	LoginSuccess
	LoginNeedCaptcha
	LoginNeedDeviceLockApproval
	LoginNeedSMSCode
	LoginAccountFrozen
	LoginTooManySMSRequests
	LoginInvalidCredentials
)

// LoginOutcome is returned by every step of the password-login flow.
type LoginOutcome struct {
	Kind         LoginOutcomeKind
	Token        string // opaque continuation token for the next step
	CaptchaImage []byte // populated only for LoginNeedCaptcha
}

// zaloAuthErrorCode maps the id.zalo.me password-auth endpoint's
// error_code values to a LoginOutcomeKind. These codes come from the same
// family as the QR flow's (0 = ok, 8 = not-ready-yet), extended with the
// password-specific ones the web client branches on.
func zaloAuthErrorCode(code int) LoginOutcomeKind {
	switch code {
	case 0:
		return LoginSuccess
	case 102, 103:
		return LoginNeedCaptcha
	case 110:
		return LoginNeedDeviceLockApproval
	case 111:
		return LoginNeedSMSCode
	case 112:
		return LoginTooManySMSRequests
	case 114:
		return LoginAccountFrozen
	case 3, 4:
		return LoginInvalidCredentials
	default:
		return LoginUnknown
	}
}

type authStepResponse struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	Data         struct {
		Token        string `json:"token"`
		CaptchaImage string `json:"captcha_image"`
	} `json:"data"`
}

func postAuthStep(ctx context.Context, sess *Session, endpoint string, form map[string]string) (*LoginOutcome, error) {
	resp, err := qrPost(ctx, sess, endpoint, form)
	if err != nil {
		return nil, fmt.Errorf("zalo_personal: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	var body authStepResponse
	if err := readJSON(resp, &body); err != nil {
		return nil, fmt.Errorf("zalo_personal: parse %s response: %w", endpoint, err)
	}

	kind := zaloAuthErrorCode(body.ErrorCode)
	if kind == LoginUnknown {
		return nil, fmt.Errorf("zalo_personal: %s error code %d: %s", endpoint, body.ErrorCode, body.ErrorMessage)
	}

	out := &LoginOutcome{Kind: kind, Token: body.Data.Token}
	if kind == LoginNeedCaptcha && body.Data.CaptchaImage != "" {
		img, decErr := decodeDataURLImage(body.Data.CaptchaImage)
		if decErr == nil {
			out.CaptchaImage = img
		}
	}
	return out, nil
}

// PasswordLogin begins an interactive username/password login. The
// returned outcome may require one or more follow-up steps before the
// session is authenticated.
func PasswordLogin(ctx context.Context, sess *Session, username, password string) (*LoginOutcome, error) {
	ver, err := loadLoginPage(ctx, sess)
	if err != nil {
		return nil, err
	}
	return postAuthStep(ctx, sess, "https://id.zalo.me/account/authen/login", map[string]string{
		"v": ver, "username": username, "password": password, "continue": "https://zalo.me/pc",
	})
}

// SubmitCaptcha answers a LoginNeedCaptcha challenge.
func SubmitCaptcha(ctx context.Context, sess *Session, token, answer string) (*LoginOutcome, error) {
	return postAuthStep(ctx, sess, "https://id.zalo.me/account/authen/login/captcha", map[string]string{
		"token": token, "captcha": answer, "continue": "https://zalo.me/pc",
	})
}

// PollDeviceLockApproval checks whether the user has approved a
// LoginNeedDeviceLockApproval challenge from their existing logged-in
// device. Callers should poll this on an interval until it stops
// returning LoginNeedDeviceLockApproval.
func PollDeviceLockApproval(ctx context.Context, sess *Session, token string) (*LoginOutcome, error) {
	return postAuthStep(ctx, sess, "https://id.zalo.me/account/authen/login/device-lock/check", map[string]string{
		"token": token, "continue": "https://zalo.me/pc",
	})
}

// RequestSMSCode asks Zalo to send an SMS verification code for a
// LoginNeedSMSCode challenge.
func RequestSMSCode(ctx context.Context, sess *Session, token string) (*LoginOutcome, error) {
	return postAuthStep(ctx, sess, "https://id.zalo.me/account/authen/login/sms/request", map[string]string{
		"token": token, "continue": "https://zalo.me/pc",
	})
}

// SubmitSMSCode answers a LoginNeedSMSCode challenge.
func SubmitSMSCode(ctx context.Context, sess *Session, token, code string) (*LoginOutcome, error) {
	return postAuthStep(ctx, sess, "https://id.zalo.me/account/authen/login/sms/verify", map[string]string{
		"token": token, "code": code, "continue": "https://zalo.me/pc",
	})
}

// FinishLogin exchanges a LoginSuccess outcome for an authenticated
// session, mirroring the tail end of LoginQR: check the session, pull
// user info, and populate the Credentials a caller can persist for later
// reconnect.
func FinishLogin(ctx context.Context, sess *Session) (*Credentials, error) {
	if err := qrCheckSession(ctx, sess); err != nil {
		return nil, err
	}
	info, err := qrGetUserInfo(ctx, sess)
	if err != nil || !info.Logged {
		return nil, fmt.Errorf("zalo_personal: get user info failed or not logged in")
	}

	cu := NewHTTPCookies(sess.CookieJar.Cookies(&DefaultBaseURL))
	return &Credentials{
		IMEI:      sess.IMEI,
		UserAgent: sess.UserAgent,
		Language:  &sess.Language,
		Cookie:    &cu,
	}, nil
}
