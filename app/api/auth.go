package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/rbhz/mw-vocabulary/app/db"
	"github.com/rs/zerolog/log"
)

const (
	tokenTTL     = 24 * time.Hour
	authMaxAge   = 24 * time.Hour
	unauthorized = "unauthorized"
)

// JWTClaims custom claims with user id
type JWTClaims struct {
	User *int64 `json:"user"`
	jwt.StandardClaims
}

// AuthResponse response for authentication
type AuthResponse struct {
	Token string `json:"token"`
}

// authService implements methods for API authentication
type authService struct {
	storage       db.Storage
	telegramToken string
	jwtSecret     []byte
	now           func() time.Time
}

// createToken creates JWT token
func (s *authService) createToken(userID int64) (string, error) {
	now := s.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		User: &userID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(tokenTTL).Unix(),
			NotBefore: now.Unix(),
		},
	})
	tokenStr, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return tokenStr, nil
}

// checkTelegramHash validates login widget data signature.
// Data check string is sorted "key=value" pairs joined by new line.
func (s *authService) checkTelegramHash(query url.Values) bool {
	keys := make([]string, 0, len(query))
	for key := range query {
		if key != "hash" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		for _, val := range query[key] {
			pairs = append(pairs, fmt.Sprintf("%s=%s", key, val))
		}
	}
	secretKey := sha256.Sum256([]byte(s.telegramToken))
	h := hmac.New(sha256.New, secretKey[:])
	h.Write([]byte(strings.Join(pairs, "\n")))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(query.Get("hash")))
}

// TelegramRedirectHandler handles authentication after Telegram redirect
func (s *authService) TelegramRedirectHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !s.checkTelegramHash(query) {
		writeText(w, http.StatusUnauthorized, unauthorized)
		return
	}
	authDate, err := strconv.ParseInt(query.Get("auth_date"), 10, 64)
	if err != nil || s.now().Sub(time.Unix(authDate, 0)) > authMaxAge {
		writeText(w, http.StatusUnauthorized, unauthorized)
		return
	}
	userID, err := strconv.ParseInt(query.Get("id"), 10, 64)
	if err != nil {
		log.Error().Err(err).Str("userID", query.Get("id")).Msg("failed to parse user id")
		writeText(w, http.StatusBadRequest, "invalid ID")
		return
	}
	if err := s.ensureUser(db.UserID(userID), query.Get("username")); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("failed to save user")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// create JWT token
	token, err := s.createToken(userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to create token")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, AuthResponse{Token: token})
}

// ensureUser saves user logged in before talking to the bot
func (s *authService) ensureUser(id db.UserID, username string) error {
	_, err := s.storage.GetUser(id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return err
	}
	return s.storage.SaveUser(db.User{ID: id, Username: username})
}

// UserCtx checks authorization token and adds user to context
func (s *authService) UserCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestToken := r.Header.Get("Authorization")
		if !strings.HasPrefix(requestToken, "Bearer ") {
			requestToken = ""
		}
		requestToken = strings.TrimPrefix(requestToken, "Bearer ")
		if requestToken == "" {
			writeText(w, http.StatusUnauthorized, unauthorized)
			return
		}
		token, err := jwt.ParseWithClaims(requestToken, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return s.jwtSecret, nil
		})
		if err != nil {
			writeText(w, http.StatusUnauthorized, unauthorized)
			return
		}

		claims := token.Claims.(*JWTClaims)
		if claims.User == nil {
			writeText(w, http.StatusUnauthorized, unauthorized)
			return
		}
		now := s.now().Unix()
		if claims.NotBefore > now || claims.ExpiresAt < now {
			writeText(w, http.StatusUnauthorized, unauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserIDKey, db.UserID(*claims.User))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeText writes plain text response with status code
func writeText(w http.ResponseWriter, status int, text string) {
	w.WriteHeader(status)
	if _, err := w.Write([]byte(text)); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

// writeJSON writes successful JSON response
func writeJSON(w http.ResponseWriter, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal json")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if _, err := w.Write(data); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}
