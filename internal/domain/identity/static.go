package identity

import (
	"context"
	"fmt"
	"strings"
)

// StaticAuthenticator serves a fixed token table loaded from configuration.
type StaticAuthenticator struct {
	principals map[string]*Principal
}

// ParseTokenTable parses "token:userID:role" entries separated by commas.
func ParseTokenTable(raw string) (*StaticAuthenticator, error) {
	a := &StaticAuthenticator{principals: make(map[string]*Principal)}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid token entry %q, expected token:userID:role", entry)
		}
		role := strings.ToLower(parts[2])
		if role != RoleAdmin && role != RoleTeacher {
			return nil, fmt.Errorf("invalid role %q in token entry for user %s", parts[2], parts[1])
		}
		a.principals[parts[0]] = &Principal{UserID: parts[1], Role: role}
	}
	if len(a.principals) == 0 {
		return nil, fmt.Errorf("no access tokens configured")
	}
	return a, nil
}

func (a *StaticAuthenticator) Authenticate(_ context.Context, token string) (*Principal, error) {
	p, ok := a.principals[token]
	if !ok || token == "" {
		return nil, ErrUnknownToken
	}
	return p, nil
}
