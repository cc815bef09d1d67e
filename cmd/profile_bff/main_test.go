package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/profile-bff/internal/config"
	"github.com/jonathan/profile-bff/internal/server"
)

const testSecret = "cli-test-secret"

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	// Flag values are package globals; reset them between runs.
	tokenUserID, tokenEmail = "", ""
	inspectUserID, inspectToken, inspectDerived = "", "", false
	flattenInput = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	out, err := execute(t, "", "token", "--user-id", "user-3", "--email", "three@example.com")
	require.NoError(t, err)

	claims, err := server.NewJWTService(&config.JWTConfig{Secret: testSecret, ExpirationHours: 1}).
		ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-3", claims.UserID)
	assert.Equal(t, "three@example.com", claims.Email)
}

func TestTokenCommand_Errors(t *testing.T) {
	t.Run("invalid email", func(t *testing.T) {
		t.Setenv("JWT_SECRET", testSecret)
		_, err := execute(t, "", "token", "--user-id", "user-3", "--email", "nope")
		assert.Error(t, err)
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := execute(t, "", "token", "--user-id", "user-3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})
}

func TestFlattenCommand_Stdin(t *testing.T) {
	out, err := execute(t, `{"personalInfo":{"name":"Bea","phone":"+33 1 23"}}`, "flatten")
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &flat))
	assert.Equal(t, "Bea", flat["personalInfo.name"])
	assert.Equal(t, "+33 1 23", flat["personalInfo.phone"])
	assert.Contains(t, flat, "lastUpdated")
	assert.Less(t, strings.Index(out, "personalInfo.name"), strings.Index(out, "personalInfo.phone"))
}

func TestFlattenCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "update.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"status":"completed"}`), 0o600))

	out, err := execute(t, "", "flatten", "--in", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "completed"`)
}

func TestFlattenCommand_Rejected(t *testing.T) {
	_, err := execute(t, `{"status":"archived"}`, "flatten")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update rejected")
}

func TestInspectCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "stored steps", args: nil},
		{name: "derived steps", args: []string{"--derived"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/profiles/user-5", r.URL.Path)
				assert.Equal(t, "Bearer tok-5", r.Header.Get("Authorization"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{
					"userId": "user-5",
					"status": "in_progress",
					"completionSteps": {"basicInfo": true, "experience": true},
					"personalInfo": {"name": "Chloé Martin"}
				}`))
			}))
			defer upstream.Close()

			t.Setenv("PROFILE_API_BASE_URL", upstream.URL)
			t.Setenv("APP_ENV", "development")

			args := append([]string{"inspect", "--user-id", "user-5", "--token", "tok-5"}, tt.args...)
			out, err := execute(t, "", args...)
			require.NoError(t, err)
			assert.Contains(t, out, "Chloé Martin")
			if tt.args == nil {
				assert.Contains(t, out, "40%")
			}
			assert.Equal(t, int32(1), hits.Load(), "inspect should fetch the profile once")
		})
	}
}

func TestInspectCommand_RequiresToken(t *testing.T) {
	t.Setenv("PROFILE_API_BASE_URL", "http://profiles.invalid")
	t.Setenv("PROFILE_API_TOKEN", "")

	_, err := execute(t, "", "inspect", "--user-id", "user-5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token is required")
}
