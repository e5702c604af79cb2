package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/tendant/simple-pagedata/pkg/pagedata"
)

// Claim names carried by editor tokens.
const (
	ClaimSubject      = "sub"
	ClaimCapabilities = "caps"
)

// NewTokenAuth returns an HS256 token authority.
func NewTokenAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// IssueToken signs a token for actor valid for ttl.
func IssueToken(ta *jwtauth.JWTAuth, actor *pagedata.Actor, ttl time.Duration) (string, error) {
	caps := make([]string, 0, len(actor.Capabilities))
	for c, granted := range actor.Capabilities {
		if granted {
			caps = append(caps, c)
		}
	}

	claims := map[string]interface{}{
		ClaimSubject:      strconv.FormatInt(actor.ID, 10),
		ClaimCapabilities: caps,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, ttl)

	_, token, err := ta.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ActorMiddleware attaches the actor described by a verified token to the
// request context. Requests without a valid token continue anonymously. It
// must run after jwtauth.Verifier.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			next.ServeHTTP(w, r)
			return
		}

		actor, err := actorFromClaims(claims)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(pagedata.ContextWithActor(r.Context(), actor)))
	})
}

func actorFromClaims(claims map[string]interface{}) (*pagedata.Actor, error) {
	sub, _ := claims[ClaimSubject].(string)
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid subject %q", sub)
	}

	var caps []string
	switch v := claims[ClaimCapabilities].(type) {
	case []interface{}:
		for _, c := range v {
			if s, ok := c.(string); ok {
				caps = append(caps, s)
			}
		}
	case []string:
		caps = v
	}
	return pagedata.NewActor(id, caps...), nil
}
