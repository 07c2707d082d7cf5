// Package googleauth builds authenticated Google Calendar and Gmail services
// for the command layer. The pipeline core never sees credentials or tokens;
// it receives ready capabilities.
package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Services bundles the authenticated Google API clients the dispatcher and
// calendar-state boundary need.
type Services struct {
	Calendar *calendar.Service
	Gmail    *gmail.Service
}

// Build reads OAuth client credentials and a cached token and constructs the
// API services. When no cached token exists, it runs the out-of-band consent
// exchange on the terminal and saves the token for subsequent runs.
func Build(ctx context.Context, credentialsFile, tokenFile string) (*Services, error) {
	raw, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading google credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(raw, calendar.CalendarScope, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}

	client, err := httpClient(ctx, config, tokenFile)
	if err != nil {
		return nil, err
	}

	calSvc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}

	gmailSvc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}

	return &Services{Calendar: calSvc, Gmail: gmailSvc}, nil
}

func httpClient(ctx context.Context, config *oauth2.Config, tokenFile string) (*http.Client, error) {
	token, err := tokenFromFile(tokenFile)
	if err != nil {
		token, err = tokenFromConsent(ctx, config)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenFile, token); err != nil {
			return nil, err
		}
	}
	return config.Client(ctx, token), nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decoding token file %q: %w", path, err)
	}
	return token, nil
}

func tokenFromConsent(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open the following link in your browser, then paste the authorization code:\n%v\n", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("reading authorization code: %w", err)
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating token file %q: %w", path, err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("writing token file %q: %w", path, err)
	}
	return nil
}
