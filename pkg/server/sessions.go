package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/minchang/zipscout/pkg/types"
)

// SessionStores holds one filter store per browser session.
type SessionStores struct {
	mu     sync.Mutex
	stores map[int]*types.Store
}

func NewSessionStores() *SessionStores {
	return &SessionStores{stores: make(map[int]*types.Store)}
}

// Get returns the store for a session, creating it on first use.
func (s *SessionStores) Get(sessionId int) *types.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	store, ok := s.stores[sessionId]
	if !ok {
		store = types.NewStore()
		s.stores[sessionId] = store
	}
	return store
}

const favoritesCookie = "zs_favorites"

// favoritesToken signs the favorite ids into a cookie value, so
// favorites survive instance restarts without server-side user state.
func (ws *WebServer) favoritesToken(ids []string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{
			"favorites": ids,
			"jti":       uuid.New().String(),
			"exp":       time.Now().Add(time.Hour * 24 * 90).Unix(),
		})
	return token.SignedString(ws.TokenKey)
}

func (ws *WebServer) setFavoritesCookie(w http.ResponseWriter, ids []string) {
	value, err := ws.favoritesToken(ids)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     favoritesCookie,
		Value:    value,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
		MaxAge:   90 * 24 * 3600,
		Path:     "/",
	})
}

// readFavoritesCookie restores favorite ids from the signed cookie.
// Missing or invalid tokens read as no favorites.
func (ws *WebServer) readFavoritesCookie(r *http.Request) []string {
	c, err := r.Cookie(favoritesCookie)
	if err != nil {
		return nil
	}
	token, err := jwt.Parse(c.Value, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return ws.TokenKey, nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	raw, ok := claims["favorites"].([]any)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids
}
