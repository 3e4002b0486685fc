//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/platform/auth"
)

const (
	ProviderName = "pet-adoption-api"
	ConsumerName = "adoption-portal"

	StatePetAvailable       = "pet with id 101 is available"
	StatePetAdopted         = "pet with id 101 is adopted"
	StatePetMissing         = "no pet with id 404"
	StatePendingApplication = "pet with id 101 has pending application 1"
)

const (
	ExistingPetID int64 = 101
	MissingPetID  int64 = 404

	// Fresh stores assign identifiers from 1, so the seeded rows are predictable.
	ApplicantUserID           int64 = 1
	AdminUserID               int64 = 2
	PendingApplicationID      int64 = 1
	ApplicantEmail                  = "applicant@example.pact"
	AdminEmail                      = "admin@example.pact"
	UserPassword                    = "pact-pass"
	ExamplePetName                  = "Fluffy Pact Cat"
	ExamplePetSpecies               = "cat"
	ExampleApplicationMessage       = "We have a large garden."
	tokenSecret                     = "pact-shared-secret"
)

var tokenClock = time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)

// TokenManager signs and verifies tokens against a frozen clock so tokens are byte-stable
// between the consumer run and provider verification.
func TokenManager(t testing.TB) *auth.Manager {
	t.Helper()
	manager, err := auth.NewManager(tokenSecret, time.Hour, auth.WithClock(func() time.Time { return tokenClock }))
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	return manager
}

// BearerToken returns the Authorization header value for a seeded account.
func BearerToken(t testing.TB, userID int64, email, role string) string {
	t.Helper()
	token, _, err := TokenManager(t).Issue(userID, email, role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the adoption portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
