// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps "METHOD /route/template" to the security level
// the HTTP auth middleware enforces. Routes missing here require a token.
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Sessions
	"POST /api/v1/sessions":           SecurityPublic,
	"POST /api/v1/sessions/challenge": SecurityPublic,

	// Browsing is open to signed-out visitors
	"GET /api/v1/items":              SecurityPublic,
	"GET /api/v1/items/{id}":         SecurityPublic,
	"GET /api/v1/items/{id}/quote":   SecurityPublic,
	"GET /api/v1/users/{id}":         SecurityPublic,
	"GET /api/v1/users/{id}/reviews": SecurityPublic,

	// Everything that acts on behalf of a user
	"PUT /api/v1/users/me":                   SecurityAccess,
	"POST /api/v1/items":                     SecurityAccess,
	"PUT /api/v1/items/{id}":                 SecurityAccess,
	"POST /api/v1/requests":                  SecurityAccess,
	"GET /api/v1/requests":                   SecurityAccess,
	"POST /api/v1/requests/{id}/approve":     SecurityAccess,
	"POST /api/v1/requests/{id}/deny":        SecurityAccess,
	"POST /api/v1/requests/{id}/pay":         SecurityAccess,
	"GET /api/v1/transactions":               SecurityAccess,
	"GET /api/v1/transactions/{id}":          SecurityAccess,
	"POST /api/v1/transactions/{id}/return":  SecurityAccess,
	"POST /api/v1/transactions/{id}/reviews": SecurityAccess,
}

// RouteSecurity returns the level for a route, defaulting to SecurityAccess.
func RouteSecurity(method, pathTemplate string) SecurityLevel {
	if level, ok := EndpointSecurityConfig[method+" "+pathTemplate]; ok {
		return level
	}
	return SecurityAccess
}
