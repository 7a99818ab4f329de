package types

import "testing"

func contains(origins []string, want string) bool {
	for _, origin := range origins {
		if origin == want {
			return true
		}
	}
	return false
}

func TestAllowedOrigins_PicksUpEnvSetAfterInit(t *testing.T) {
	// The env is set long after package init, as it is when main
	// loads .env before building the router.
	t.Setenv("CLIENT_URL", "https://app.example.com")
	t.Setenv("ALLOWED_ORIGINS", "https://one.example.com, https://two.example.com")

	origins := AllowedOrigins()

	for _, want := range []string{
		"http://localhost:3000",
		"https://app.example.com",
		"https://one.example.com",
		"https://two.example.com",
	} {
		if !contains(origins, want) {
			t.Fatalf("expected %q in allowed origins, got %v", want, origins)
		}
	}
}

func TestAllowedOrigins_DefaultsOnly(t *testing.T) {
	t.Setenv("CLIENT_URL", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	origins := AllowedOrigins()

	if len(origins) != len(defaultOrigins) {
		t.Fatalf("expected only defaults, got %v", origins)
	}
}
