// Package adminhttp is the thin JSON HTTP surface used to create/delete
// sessions and plugins — not part of the core gateway, but the one
// external way an operator drives it.
package adminhttp

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zalogw/gateway/internal/driver"
	"github.com/zalogw/gateway/internal/gwerr"
	"github.com/zalogw/gateway/internal/pluginstore"
	"github.com/zalogw/gateway/internal/registry"
	"github.com/zalogw/gateway/internal/session"
)

// Server wires the registry, session manager and plugin store behind
// net/http, matching the JSON-in/JSON-out, base64-for-binary-fields
// surface.
type Server struct {
	reg     *registry.Registry
	sess    *session.Manager
	plugins *pluginstore.Store
	token   string
}

// New wires a Server. token, if non-empty, is required as a bearer token
// on every request except /ping.
func New(reg *registry.Registry, sess *session.Manager, plugins *pluginstore.Store, token string) *Server {
	return &Server{reg: reg, sess: sess, plugins: plugins, token: token}
}

// Mux builds the registered http.ServeMux.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", s.handlePing)
	mux.HandleFunc("GET /bot/list", s.requireAuth(s.handleBotList))
	mux.HandleFunc("POST /bot/delete", s.requireAuth(s.handleBotDelete))

	mux.HandleFunc("POST /login/qrcode/create", s.requireAuth(s.handleQRCreate))
	mux.HandleFunc("POST /login/qrcode/query", s.requireAuth(s.handleQRQuery))

	mux.HandleFunc("POST /login/password/create", s.requireAuth(s.handlePasswordCreate))
	mux.HandleFunc("POST /login/password/request_sms", s.requireAuth(s.handlePasswordRequestSMS))
	mux.HandleFunc("POST /login/password/submit_sms", s.requireAuth(s.handlePasswordSubmitSMS))
	mux.HandleFunc("POST /login/password/submit_ticket", s.requireAuth(s.handlePasswordSubmitTicket))

	mux.HandleFunc("POST /plugin/save", s.requireAuth(s.handlePluginSave))
	mux.HandleFunc("POST /plugin/list", s.requireAuth(s.handlePluginList))
	mux.HandleFunc("POST /plugin/delete", s.requireAuth(s.handlePluginDelete))
	return mux
}

// requireAuth wraps next with a bearer-token check. A Server built with an
// empty token (the default — no GatewayConfig.Token set) lets every
// request through unchecked.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	if s.token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing or invalid bearer token"})
			return
		}
		next(w, r)
	}
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBotList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reg.List())
}

func (s *Server) handleBotDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UIN      string `json:"uin"`
		Protocol string `json:"protocol"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !s.reg.Remove(req.UIN) {
		writeError(w, gwerr.New(gwerr.ClientNotFound, nil))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleQRCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Protocol string `json:"protocol"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	sig, png, err := s.sess.CreateQR(r.Context(), session.Protocol(req.Protocol))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"sig":   sig,
		"image": base64.StdEncoding.EncodeToString(png),
	})
}

func (s *Server) handleQRQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sig string `json:"sig"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	state, err := s.sess.QueryQR(r.Context(), req.Sig)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": string(state)})
}

func (s *Server) handlePasswordCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Protocol string `json:"protocol"`
		UIN      string `json:"uin"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	state, err := s.sess.Login(r.Context(), session.Protocol(req.Protocol), req.UIN, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginStateJSON(state))
}

func (s *Server) handlePasswordRequestSMS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Protocol string `json:"protocol"`
		UIN      string `json:"uin"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	state, err := s.sess.RequestSMS(r.Context(), session.Protocol(req.Protocol), req.UIN)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginStateJSON(state))
}

func (s *Server) handlePasswordSubmitSMS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Protocol string `json:"protocol"`
		UIN      string `json:"uin"`
		Code     string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	state, err := s.sess.SubmitSMS(r.Context(), session.Protocol(req.Protocol), req.UIN, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginStateJSON(state))
}

func (s *Server) handlePasswordSubmitTicket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Protocol string `json:"protocol"`
		UIN      string `json:"uin"`
		Ticket   string `json:"ticket"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	state, err := s.sess.SubmitTicket(r.Context(), session.Protocol(req.Protocol), req.UIN, req.Ticket)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginStateJSON(state))
}

func (s *Server) handlePluginSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string   `json:"name"`
		Disabled bool     `json:"disabled"`
		URLs     []string `json:"urls"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.plugins.Save(req.Name, req.Disabled, req.URLs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handlePluginList(w http.ResponseWriter, r *http.Request) {
	plugins, err := s.plugins.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plugins)
}

func (s *Server) handlePluginDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.plugins.Delete(req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type loginStateResp struct {
	Kind         string `json:"kind"`
	Token        string `json:"token,omitempty"`
	CaptchaImage string `json:"captcha_image,omitempty"`
}

var loginStateKindNames = map[driver.LoginStateKind]string{
	driver.LoginStateSuccess:                "success",
	driver.LoginStateNeedCaptcha:            "need_captcha",
	driver.LoginStateNeedDeviceLockApproval: "need_device_lock_approval",
	driver.LoginStateNeedSMSCode:            "need_sms_code",
	driver.LoginStateAccountFrozen:          "account_frozen",
	driver.LoginStateTooManySMSRequests:     "too_many_sms_requests",
	driver.LoginStateInvalidCredentials:     "invalid_credentials",
	driver.LoginStateUnknown:                "unknown",
}

func loginStateJSON(s *driver.LoginState) loginStateResp {
	resp := loginStateResp{Kind: loginStateKindNames[s.Kind], Token: s.Token}
	if len(s.CaptchaImage) > 0 {
		resp.CaptchaImage = base64.StdEncoding.EncodeToString(s.CaptchaImage)
	}
	return resp
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := gwerr.HTTPStatus(gwerr.KindOf(err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
