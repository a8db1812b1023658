// Package googleauth builds the authenticated HTTP client shared by the Drive,
// Sheets, Slides and Gmail adapters.
package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/sheets/v4"
	"google.golang.org/api/slides/v1"
)

// Scopes are requested once so a single token serves every adapter
var Scopes = []string{
	drive.DriveScope,
	sheets.SpreadsheetsScope,
	slides.PresentationsScope,
	gmail.GmailSendScope,
}

// Auth modes
const (
	ModeOAuth          = "oauth"
	ModeServiceAccount = "service_account"
)

// Options holds the configuration for authentication
type Options struct {
	CredentialsFile string // Path to OAuth client or service account credentials JSON
	TokenFile       string // Path to store/load the OAuth token
	Mode            string // ModeOAuth or ModeServiceAccount
	// Output receives the browser prompt during the OAuth flow
	Output io.Writer
}

func (o Options) output() io.Writer {
	if o.Output == nil {
		return os.Stdout
	}
	return o.Output
}

// HTTPClient returns a client authorised for Scopes. In OAuth mode a stored token is
// reused and refreshed; without one the browser flow runs.
func HTTPClient(ctx context.Context, opts Options) (*http.Client, error) {
	b, err := os.ReadFile(opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	if opts.Mode == ModeServiceAccount {
		config, err := google.JWTConfigFromJSON(b, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("unable to parse credentials: %w", err)
		}
		return config.Client(ctx), nil
	}

	config, err := google.ConfigFromJSON(b, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse OAuth credentials: %w", err)
	}

	token, err := getToken(ctx, config, opts)
	if err != nil {
		return nil, fmt.Errorf("unable to get OAuth token: %w", err)
	}

	return config.Client(ctx, token), nil
}

// Authorize always runs the browser flow and stores a fresh token
func Authorize(ctx context.Context, opts Options) error {
	b, err := os.ReadFile(opts.CredentialsFile)
	if err != nil {
		return fmt.Errorf("unable to read OAuth credentials file: %w", err)
	}
	config, err := google.ConfigFromJSON(b, Scopes...)
	if err != nil {
		return fmt.Errorf("unable to parse OAuth credentials: %w", err)
	}
	_, err = getTokenFromWeb(ctx, config, opts)
	return err
}

// getToken retrieves a token from file or initiates the OAuth flow
func getToken(ctx context.Context, config *oauth2.Config, opts Options) (*oauth2.Token, error) {
	token, err := loadToken(opts.TokenFile)
	if err == nil {
		tokenSource := config.TokenSource(ctx, token)
		newToken, err := tokenSource.Token()
		if err == nil {
			// Save refreshed token if it changed
			if newToken.AccessToken != token.AccessToken {
				saveToken(opts.TokenFile, newToken)
			}
			return newToken, nil
		}
		// Token refresh failed, need to re-authenticate
	}

	return getTokenFromWeb(ctx, config, opts)
}

// loadToken loads a token from a file
func loadToken(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(token)
	return token, err
}

// saveToken saves a token to a file readable only by the owner
func saveToken(file string, token *oauth2.Token) error {
	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
