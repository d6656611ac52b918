// Package middleware provides HTTP middleware for agent authentication.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// agentKey is the context key for the authenticated agent name.
const agentKey ContextKey = "agent"

// TokenValidator is an interface for validating JWT tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (AgentGetter, error)
}

// AgentGetter extracts the agent name from token claims.
type AgentGetter interface {
	GetAgent() string
}

// AuthMiddleware creates middleware that validates bearer tokens and adds
// the agent name to the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			agent := claims.GetAgent()
			if agent == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), agentKey, agent)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken parses "Authorization: Bearer <token>", case-insensitive on
// the scheme.
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], parts[1] != ""
}

// Agent returns the authenticated agent from the request context.
func Agent(r *http.Request) (string, error) {
	agent, ok := r.Context().Value(agentKey).(string)
	if !ok || agent == "" {
		return "", fmt.Errorf("agent not found in request context")
	}
	return agent, nil
}

// AgentKey returns the context key for the agent (for testing purposes).
func AgentKey() ContextKey {
	return agentKey
}
