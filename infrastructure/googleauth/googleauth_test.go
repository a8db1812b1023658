package googleauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestSaveAndLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := saveToken(path, token); err != nil {
		t.Fatalf("saveToken() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}

	got, err := loadToken(path)
	if err != nil {
		t.Fatalf("loadToken() error = %v", err)
	}
	if got.AccessToken != "access" || got.RefreshToken != "refresh" || !got.Expiry.Equal(token.Expiry) {
		t.Errorf("loadToken() = %+v", got)
	}
}

func TestLoadToken_Missing(t *testing.T) {
	if _, err := loadToken(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("loadToken() expected error for missing file")
	}
}

func TestHTTPClient_MissingCredentials(t *testing.T) {
	_, err := HTTPClient(context.Background(), Options{CredentialsFile: filepath.Join(t.TempDir(), "none.json")})
	if err == nil {
		t.Error("HTTPClient() expected error for missing credentials")
	}
}

func TestHTTPClient_InvalidServiceAccount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"nope"}`), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := HTTPClient(context.Background(), Options{CredentialsFile: path, Mode: ModeServiceAccount})
	if err == nil {
		t.Error("HTTPClient() expected error for invalid service account JSON")
	}
}

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
		wantErr  bool
	}{
		{"code received", "?code=abc123", "abc123", false},
		{"missing code", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codeChan := make(chan string, 1)
			errChan := make(chan error, 1)
			h := callbackHandler(codeChan, errChan)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))

			select {
			case code := <-codeChan:
				if tt.wantErr || code != tt.wantCode {
					t.Errorf("code = %q, wantErr %v", code, tt.wantErr)
				}
			case err := <-errChan:
				if !tt.wantErr {
					t.Errorf("unexpected error %v", err)
				}
			default:
				t.Error("handler sent nothing")
			}
		})
	}
}
