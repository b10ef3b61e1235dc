package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbhz/mw-vocabulary/app/db"
)

func TestRedirectTelegramHandler(t *testing.T) {
	const path = "/api/v1/auth/telegram"
	requestParams := map[string]string{
		"id":         "1",
		"first_name": "John",
		"username":   "jDoe",
		"photo_url":  "http://test.com/image.png",
		"auth_date":  "1653049612",
		"hash":       "c2fe93ce56c9134877d29222dc40797a981db7603f7ead30967940bf0b97da02",
	}
	paramsOrder := []string{"id", "first_name", "username", "photo_url", "auth_date", "hash"}
	loginTime := time.Unix(1653049612, 0).Add(time.Minute)
	newService := func(storage db.Storage) *authService {
		return &authService{
			storage:       storage,
			telegramToken: testTGToken,
			jwtSecret:     []byte(testJWTSecret),
			now:           func() time.Time { return loginTime },
		}
	}
	request := func(t *testing.T, s *authService, q url.Values) *http.Response {
		req, err := http.NewRequest(http.MethodGet, path+"?"+q.Encode(), nil)
		require.NoError(t, err)
		recorder := httptest.NewRecorder()
		s.TelegramRedirectHandler(recorder, req)
		return recorder.Result()
	}
	params := func(replace map[string]string, skip string) url.Values {
		q := url.Values{}
		for _, p := range paramsOrder {
			if p == skip {
				continue
			}
			if v, ok := replace[p]; ok {
				q.Add(p, v)
				continue
			}
			q.Add(p, requestParams[p])
		}
		return q
	}
	checkValidToken := func(t *testing.T, token string) {
		parsedToken, err := jwt.ParseWithClaims(token, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(testJWTSecret), nil
		})
		require.NoError(t, err)
		claims, ok := parsedToken.Claims.(*JWTClaims)
		require.True(t, ok)
		expected := int64(1)
		assert.Equal(t, &expected, claims.User)
		assert.Equal(t, loginTime.Add(tokenTTL).Unix(), claims.ExpiresAt)
		assert.Equal(t, loginTime.Unix(), claims.NotBefore)
	}
	checkUnauthorized := func(t *testing.T, r *http.Response) {
		assert.Equal(t, http.StatusUnauthorized, r.StatusCode)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "unauthorized", string(body))
	}

	t.Run("success", func(t *testing.T) {
		storage := db.NewInMemoryStorage()
		r := request(t, newService(storage), params(nil, ""))
		assert.Equal(t, http.StatusOK, r.StatusCode)

		var rData AuthResponse
		err := json.NewDecoder(r.Body).Decode(&rData)
		require.NoError(t, err)
		assert.NotEmpty(t, rData.Token)
		checkValidToken(t, rData.Token)

		user, err := storage.GetUser(db.UserID(1))
		require.NoError(t, err)
		assert.Equal(t, "jDoe", user.Username)
		assert.False(t, user.IsAdmin)
	})
	t.Run("existing user is kept", func(t *testing.T) {
		storage := db.NewInMemoryStorage()
		require.NoError(t, storage.SaveUser(db.User{ID: 1, Username: "admin", IsAdmin: true}))
		r := request(t, newService(storage), params(nil, ""))
		assert.Equal(t, http.StatusOK, r.StatusCode)

		user, err := storage.GetUser(db.UserID(1))
		require.NoError(t, err)
		assert.Equal(t, "admin", user.Username)
		assert.True(t, user.IsAdmin)
	})
	t.Run("success reverse params order", func(t *testing.T) {
		q := url.Values{}
		for idx := len(paramsOrder) - 1; idx >= 0; idx-- {
			p := paramsOrder[idx]
			q.Add(p, requestParams[p])
		}
		r := request(t, newService(db.NewInMemoryStorage()), q)
		assert.Equal(t, http.StatusOK, r.StatusCode)

		var rData AuthResponse
		err := json.NewDecoder(r.Body).Decode(&rData)
		require.NoError(t, err)
		checkValidToken(t, rData.Token)
	})
	t.Run("invalid hash", func(t *testing.T) {
		r := request(t, newService(db.NewInMemoryStorage()), params(map[string]string{"hash": "invalid"}, ""))
		checkUnauthorized(t, r)
	})
	t.Run("missing id", func(t *testing.T) {
		r := request(t, newService(db.NewInMemoryStorage()), params(nil, "id"))
		checkUnauthorized(t, r)
	})
	t.Run("invalid id", func(t *testing.T) {
		r := request(t, newService(db.NewInMemoryStorage()), params(map[string]string{"id": "invalid"}, ""))
		checkUnauthorized(t, r)
	})
	t.Run("outdated auth date", func(t *testing.T) {
		ts, cancel := getTestServer(nil)
		defer cancel()
		r, err := http.Get(ts.URL + path + "?" + params(nil, "").Encode())
		require.NoError(t, err)
		checkUnauthorized(t, r)
	})
}

func TestUserCtxMiddleware(t *testing.T) {
	methods := []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodPatch,
	}
	s := &authService{telegramToken: testTGToken, jwtSecret: []byte(testJWTSecret), now: time.Now}
	var ctxUser db.UserID
	handler := s.UserCtx(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxUser, _ = r.Context().Value(ctxUserIDKey).(db.UserID)
	}))

	checkSuccess := func(t *testing.T, header string) {
		for _, method := range methods {
			ctxUser = 0
			req, err := http.NewRequest(method, "/", nil)
			require.NoError(t, err)
			req.Header.Add("Authorization", header)
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, req)
			r := recorder.Result()
			assert.Equal(t, http.StatusOK, r.StatusCode)
			assert.Equal(t, db.UserID(1), ctxUser)
		}
	}
	checkError := func(t *testing.T, header string) {
		for _, method := range methods {
			req, err := http.NewRequest(method, "/", nil)
			require.NoError(t, err)
			if header != "" {
				req.Header.Add("Authorization", header)
			}
			recorder := httptest.NewRecorder()
			s.UserCtx(&emptyHandler{}).ServeHTTP(recorder, req)
			r := recorder.Result()
			assert.Equal(t, http.StatusUnauthorized, r.StatusCode)
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, "unauthorized", string(body))
		}
	}
	signed := func(t *testing.T, method jwt.SigningMethod, claims jwt.Claims) string {
		testJWT, err := jwt.NewWithClaims(method, claims).SignedString(s.jwtSecret)
		require.NoError(t, err)
		return "Bearer " + testJWT
	}
	t.Run("success", func(t *testing.T) {
		testJWT, err := s.createToken(1)
		require.NoError(t, err)
		checkSuccess(t, "Bearer "+testJWT)
	})
	t.Run("without header", func(t *testing.T) {
		checkError(t, "")
	})
	t.Run("invalid JWT", func(t *testing.T) {
		checkError(t, "Bearer invalidJWT")
	})
	t.Run("invalid prefix", func(t *testing.T) {
		testJWT, err := s.createToken(1)
		require.NoError(t, err)
		checkError(t, "Invalid "+testJWT)
	})
	t.Run("invalid JWT sign", func(t *testing.T) {
		other := &authService{telegramToken: testTGToken, jwtSecret: []byte(testJWTSecret + "1"), now: time.Now}
		testJWT, err := other.createToken(1)
		require.NoError(t, err)
		checkError(t, "Bearer "+testJWT)
	})
	t.Run("empty user", func(t *testing.T) {
		checkError(t, signed(t, jwt.SigningMethodHS256, JWTClaims{
			User: nil,
			StandardClaims: jwt.StandardClaims{
				ExpiresAt: time.Now().UTC().Add(time.Hour * 24).Unix(),
				NotBefore: time.Now().UTC().Unix(),
			},
		}))
	})
	t.Run("invalid JWT claims", func(t *testing.T) {
		type invalidJWTClaims struct {
			User string `json:"user"`
			jwt.StandardClaims
		}
		checkError(t, signed(t, jwt.SigningMethodHS256, invalidJWTClaims{
			User: "1",
			StandardClaims: jwt.StandardClaims{
				ExpiresAt: time.Now().UTC().Add(time.Hour * 24).Unix(),
				NotBefore: time.Now().UTC().Unix(),
			},
		}))
	})
	t.Run("expired JWT", func(t *testing.T) {
		userID := int64(1)
		checkError(t, signed(t, jwt.SigningMethodHS256, JWTClaims{
			User: &userID,
			StandardClaims: jwt.StandardClaims{
				ExpiresAt: time.Now().UTC().Add(-1 * time.Hour).Unix(),
				NotBefore: time.Now().UTC().Unix(),
			},
		}))
	})
	t.Run("invalid before", func(t *testing.T) {
		userID := int64(1)
		checkError(t, signed(t, jwt.SigningMethodHS256, JWTClaims{
			User: &userID,
			StandardClaims: jwt.StandardClaims{
				ExpiresAt: time.Now().UTC().Add(time.Hour * 25).Unix(),
				NotBefore: time.Now().UTC().Add(time.Hour * 1).Unix(),
			},
		}))
	})
	t.Run("unexpected signing method", func(t *testing.T) {
		userID := int64(1)
		token := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{
			User: &userID,
			StandardClaims: jwt.StandardClaims{
				ExpiresAt: time.Now().UTC().Add(time.Hour).Unix(),
				NotBefore: time.Now().UTC().Unix(),
			},
		})
		testJWT, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		checkError(t, "Bearer "+testJWT)
	})
}
