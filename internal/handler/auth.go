package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/chetan-code/todoly/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/markbates/goth/gothic"
)

const sessionCookie = "session_token"

// we are doing this to avoid collision with libraries
type contextKey string

const sessionKey contextKey = "session"

var errInvalidToken = errors.New("invalid session token")

// Authenticator issues and checks the signed session cookie. Sign-in itself
// is delegated to the goth providers.
type Authenticator struct {
	key    []byte
	ttl    time.Duration
	secure bool //set to true for https
}

func NewAuthenticator(secret string, ttl time.Duration, secure bool) *Authenticator {
	return &Authenticator{key: []byte(secret), ttl: ttl, secure: secure}
}

// SessionFromContext returns the session attached by LoadSession, or the zero
// Session when the request is anonymous.
func SessionFromContext(ctx context.Context) models.Session {
	sess, _ := ctx.Value(sessionKey).(models.Session)
	return sess
}

func withSession(ctx context.Context, sess models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// LoadSession attaches the session from a valid cookie. Requests without one
// pass through anonymously; the task operations decide what that means.
func (a *Authenticator) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.VerifyToken(cookie.Value)
		if err != nil {
			slog.Debug("session_token_rejected", "error", err, "ip", r.RemoteAddr)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), claims.Session)))
	})
}

// RequireSession sends anonymous visitors to the sign-in page before any
// task data is requested.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFromContext(r.Context()).Authenticated() {
			if isHTMX(r) {
				w.Header().Set("HX-Redirect", "/login")
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			LoginRedirect(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func LoginRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (a *Authenticator) BeginAuth(w http.ResponseWriter, r *http.Request) {
	//gothic looks for the provider query by default
	q := r.URL.Query()
	q.Set("provider", chi.URLParam(r, "provider"))
	r.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(w, r)
}

func (a *Authenticator) AuthCallbackHandler(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()
	q.Set("provider", provider)
	r.URL.RawQuery = q.Encode()

	user, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		slog.Error("oauth_callback_failed", "provider", provider, "error", err)
		http.Error(w, "Sign in failed", http.StatusUnauthorized)
		return
	}

	sess := models.Session{
		UserID: provider + ":" + user.UserID,
		Name:   user.Name,
		Email:  user.Email,
		Image:  user.AvatarURL,
	}

	//auth success - issue jwt and set cookies
	token, err := a.GenerateJWT(sess)
	if err != nil {
		slog.Error("jwt_generation_failed", "error", err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	a.setCookie(w, token)

	slog.Info("sign_in_success", "provider", provider, "user_id", sess.UserID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *Authenticator) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	// clear session cookie
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true, //js cant touch it
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})

	//clear gothic session
	if err := gothic.Logout(w, r); err != nil {
		slog.Debug("gothic_logout_failed", "error", err)
	}
	slog.Info("sign_out_success", "user_id", SessionFromContext(r.Context()).UserID)
	LoginRedirect(w, r)
}

func (a *Authenticator) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true, //not visible to JS [IMP for security]
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Authenticator) GenerateJWT(sess models.Session) (string, error) {
	if !sess.Authenticated() {
		return "", fmt.Errorf("session has no user id")
	}
	now := time.Now()

	claims := &models.Claims{
		Session: sess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	//create the token using hs256 algo
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	//sign with the secret key and return
	return token.SignedString(a.key)
}

func (a *Authenticator) VerifyToken(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidToken, err)
	}
	if !token.Valid || !claims.Authenticated() {
		return nil, errInvalidToken
	}

	return claims, nil
}
