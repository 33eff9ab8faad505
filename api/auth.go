/*
auth.go - Registration, login, and JWT middleware

PURPOSE:
  Token-based authentication for the API. Passwords are stored as
  bcrypt hashes. Tokens are HS256 JWTs carrying the user ID; the
  middleware resolves the token to a full user record so handlers can
  read the account's language preference.

SEE ALSO:
  - server.go: Route wiring, which routes sit behind RequireAuth
  - config: Token secret and TTL
*/
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/finance"
	"github.com/Abdalrhmankhashashneh/expense-tracker-api/ledger"
)

type ctxKey int

const userKey ctxKey = 0

// Claims is the JWT payload.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// generateToken issues an HS256 token for the user.
func (h *Handler) generateToken(userID string) (string, error) {
	ttl := h.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.TokenSecret))
}

// parseToken validates a token string and returns its claims. Only
// HS256 tokens are accepted, anything else fails before the keyfunc.
func (h *Handler) parseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(h.TokenSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// RequireAuth resolves the bearer token to a user record and stores it
// in the request context. Requests without a valid token get 401.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenStr, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenStr == "" {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing bearer token")
			return
		}
		claims, err := h.parseToken(tokenStr)
		if err != nil {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid or expired token")
			return
		}
		user, err := h.Store.GetUser(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "unknown user")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// currentUser returns the authenticated user placed by RequireAuth.
func currentUser(r *http.Request) *finance.User {
	u, _ := r.Context().Value(userKey).(*finance.User)
	return u
}

// lang returns the response language: ?lang= override, otherwise the
// account preference, otherwise English.
func lang(r *http.Request) string {
	if l := r.URL.Query().Get("lang"); l == "en" || l == "ar" {
		return l
	}
	if u := currentUser(r); u != nil && u.Language != "" {
		return u.Language
	}
	return "en"
}

// =============================================================================
// AUTH ENDPOINTS
// =============================================================================

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Language string `json:"language"`
}

// Register creates an account and returns a token.
// POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, "name and a valid email are required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, "password must be at least 8 characters")
		return
	}
	if req.Language != "ar" {
		req.Language = "en"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	now := time.Now().UTC()
	user := finance.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Language:     req.Language,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.Store.CreateUser(r.Context(), user); err != nil {
		writeDomainError(w, err)
		return
	}

	token, err := h.generateToken(user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, AuthResponseDTO{Token: token, User: toUserDTO(user)}, "registered")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and returns a token. A wrong password and
// an unknown email produce the same response.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.Store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if err == ledger.ErrNotFound {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid credentials")
			return
		}
		writeDomainError(w, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid credentials")
		return
	}

	token, err := h.generateToken(user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, AuthResponseDTO{Token: token, User: toUserDTO(*user)}, "logged in")
}

// Me returns the authenticated account.
// GET /api/auth/user
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, toUserDTO(*currentUser(r)), "")
}
