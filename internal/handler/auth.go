package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/chetan-code/tasktracker/internal/models"
	"github.com/chetan-code/tasktracker/internal/service"
)

const (
	sessionName = "session"
	tokenKey    = "token"
)

// we are doing this to avoid collision with libraries
type contextKey string

const sessionKey contextKey = "session"

// Sessions keeps a signed JWT inside a gorilla cookie session. The cookie
// has no Max-Age so it ends with the browser, the token expiry bounds it
// server side.
type Sessions struct {
	store *sessions.CookieStore
	key   []byte
	ttl   time.Duration
}

func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true, //not visible to JS
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store, key: []byte(secret), ttl: ttl}
}

func (s *Sessions) GenerateJWT(sess models.Session) (string, error) {
	now := time.Now()
	claims := &models.Claims{
		UserID:   sess.UserID,
		Username: sess.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.Itoa(sess.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	//create the token using hs256 algo and sign with the secret key
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

func (s *Sessions) VerifyToken(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Issue establishes sess on the response
func (s *Sessions) Issue(w http.ResponseWriter, r *http.Request, sess models.Session) error {
	token, err := s.GenerateJWT(sess)
	if err != nil {
		return err
	}
	//a cookie we cannot decode still gives back a fresh session to fill
	session, _ := s.store.Get(r, sessionName)
	session.Values[tokenKey] = token
	return session.Save(r, w)
}

// Clear expires the session cookie, clearing an absent session is fine
func (s *Sessions) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, tokenKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// Resolve reads the session the request carries, if any
func (s *Sessions) Resolve(r *http.Request) (models.Session, bool) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return models.Session{}, false
	}
	token, ok := session.Values[tokenKey].(string)
	if !ok || token == "" {
		return models.Session{}, false
	}
	claims, err := s.VerifyToken(token)
	if err != nil {
		slog.Debug("session_token_rejected", "error", err)
		return models.Session{}, false
	}
	sess := models.Session{UserID: claims.UserID, Username: claims.Username}
	return sess, sess.Valid()
}

func SessionFromContext(ctx context.Context) (models.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(models.Session)
	return sess, ok && sess.Valid()
}

func LoginRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type AuthHandler struct {
	auth     *service.Auth
	sessions *Sessions
	views    *Views
}

func NewAuthHandler(auth *service.Auth, s *Sessions, v *Views) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: s, views: v}
}

// current resolves the request's session to a user that still exists
func (h *AuthHandler) current(r *http.Request) (models.Session, bool, error) {
	sess, ok := h.sessions.Resolve(r)
	if !ok {
		return models.Session{}, false, nil
	}
	sess, err := h.auth.Lookup(r.Context(), sess.UserID)
	if errors.Is(err, service.ErrUnknownUser) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, err
	}
	return sess, true, nil
}

// AuthMiddleware only lets requests with a valid session through and puts
// that session in the request context
func (h *AuthHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok, err := h.current(r)
		if err != nil {
			slog.Error("session_lookup_failed", "path", r.URL.Path, "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if !ok {
			LoginRedirect(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Home sends signed in users to their dashboard and everyone else to sign up
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	if _, ok, _ := h.current(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok, _ := h.current(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	//show login page
	if r.Method == http.MethodGet {
		h.views.Render(w, http.StatusOK, "login", newFormView(nil))
		return
	}

	creds := credentialsFrom(r)
	sess, err := h.auth.Authenticate(r.Context(), creds)
	if err != nil {
		form := newFormView(map[string]string{"username": creds.Username})
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			form.Errors = verr.Fields
		case errors.Is(err, service.ErrUnknownUser):
			form.Errors["username"] = "Username does not exist."
		case errors.Is(err, service.ErrWrongPassword):
			form.Errors["password"] = "Incorrect password."
		default:
			slog.Error("login_failed", "username", creds.Username, "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		slog.Info("login_rejected", "username", creds.Username, "ip", r.RemoteAddr, "reason", err.Error())
		h.views.Render(w, http.StatusUnprocessableEntity, "login", form)
		return
	}

	h.signIn(w, r, sess)
}

func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.views.Render(w, http.StatusOK, "register", newFormView(nil))
		return
	}

	creds := credentialsFrom(r)
	sess, err := h.auth.Register(r.Context(), creds)
	if err != nil {
		form := newFormView(map[string]string{"username": creds.Username})
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			form.Errors = verr.Fields
		case errors.Is(err, service.ErrUsernameTaken):
			form.Errors["username"] = "This username already exists. Please choose a different one."
		default:
			slog.Error("registration_failed", "username", creds.Username, "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		h.views.Render(w, http.StatusUnprocessableEntity, "register", form)
		return
	}

	h.signIn(w, r, sess)
}

func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		slog.Error("logout_failed", "error", err)
	}
	LoginRedirect(w, r)
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, sess models.Session) {
	if err := h.sessions.Issue(w, r, sess); err != nil {
		slog.Error("session_issue_failed", "user_id", sess.UserID, "error", err)
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}
	slog.Info("login_success", "user_id", sess.UserID, "ip", r.RemoteAddr)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func credentialsFrom(r *http.Request) service.Credentials {
	return service.Credentials{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}
}
