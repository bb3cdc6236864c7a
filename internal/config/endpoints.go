package config

import "strings"

// DefaultAPIBase is used when neither an override nor an origin is configured.
const DefaultAPIBase = "http://localhost:8000"

// Backend paths, relative to the base origin.
const (
	PathGenerate  = "/generate/run"
	PathAssistant = "/ai-assistant/chat"
	PathUpload    = "/upload/sketch"
	PathHealth    = "/health"
	PathSignIn    = "/auth/signin"
	PathSignUp    = "/auth/signup"
	PathMe        = "/auth/me"
)

// Endpoints holds the absolute backend URLs derived from one base origin.
type Endpoints struct {
	Generate  string
	Assistant string
	Upload    string
	Health    string
}

// ResolveBase picks the base origin: explicit override, then the client's
// own origin, then DefaultAPIBase.
func ResolveBase(override, origin string) string {
	for _, candidate := range []string{override, origin} {
		if c := strings.TrimRight(strings.TrimSpace(candidate), "/"); c != "" {
			return c
		}
	}
	return DefaultAPIBase
}

func NewEndpoints(base string) Endpoints {
	return Endpoints{
		Generate:  base + PathGenerate,
		Assistant: base + PathAssistant,
		Upload:    base + PathUpload,
		Health:    base + PathHealth,
	}
}

// APIBase recovers the base origin from the health URL.
func (e Endpoints) APIBase() string {
	return strings.TrimSuffix(e.Health, PathHealth)
}

func (e Endpoints) SignIn() string { return e.APIBase() + PathSignIn }
func (e Endpoints) SignUp() string { return e.APIBase() + PathSignUp }
func (e Endpoints) Me() string     { return e.APIBase() + PathMe }
