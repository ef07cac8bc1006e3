// Package policy holds the permission predicates every endpoint is gated by.
// They are pure functions of the request method, the principal and, for
// object-level checks, the author of the target resource.
package policy

import (
	"net/http"

	"yamdb/internal/microservices/http-api/models"
)

// Decision is the outcome of evaluating a predicate for a request.
type Decision int

const (
	Allow Decision = iota
	// Unauthenticated means the request would need a principal to proceed.
	Unauthenticated
	// Forbidden means the principal is known but lacks the privilege.
	Forbidden
)

// IsSafeMethod reports whether method only reads state.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// EvaluateReadOnlyOrAdmin lets anyone read and only admins write.
func EvaluateReadOnlyOrAdmin(method string, principal *models.User) Decision {
	if IsSafeMethod(method) {
		return Allow
	}
	if principal == nil {
		return Unauthenticated
	}
	if principal.IsAdmin() {
		return Allow
	}
	return Forbidden
}

func EvaluateAuthenticatedAndAdmin(principal *models.User) Decision {
	if principal == nil {
		return Unauthenticated
	}
	if principal.IsAdmin() {
		return Allow
	}
	return Forbidden
}

// EvaluateAuthenticated only checks that a principal is present.
func EvaluateAuthenticated(principal *models.User) Decision {
	if principal == nil {
		return Unauthenticated
	}
	return Allow
}

// EvaluateAuthorOrModeratorOrReadOnly is the object-level check for reviews and
// comments. An empty authorID is used for creation, where only authentication
// is needed.
func EvaluateAuthorOrModeratorOrReadOnly(method string, principal *models.User, authorID string) Decision {
	if IsSafeMethod(method) {
		return Allow
	}
	if principal == nil {
		return Unauthenticated
	}
	if authorID == "" || principal.ID == authorID || principal.IsModerator() {
		return Allow
	}
	return Forbidden
}
