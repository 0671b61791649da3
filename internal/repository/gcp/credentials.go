// Package gcp baut die Client-Optionen für Google Sheets und BigQuery aus einer
// Service-Account-Datei.
package gcp

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const (
	ScopeSpreadsheets = "https://www.googleapis.com/auth/spreadsheets"
	ScopeBigQuery     = "https://www.googleapis.com/auth/bigquery"
)

// DefaultScopes deckt alle Ziele des Exporters ab
var DefaultScopes = []string{ScopeSpreadsheets, ScopeBigQuery}

// Credentials lädt eine Service-Account- oder User-Credentials-Datei für die angegebenen Scopes
func Credentials(ctx context.Context, credentialsFile string, scopes ...string) (*google.Credentials, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("credentials lesen: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("credentials parsen (%s): %w", credentialsFile, err)
	}
	return creds, nil
}

// ClientOptions liefert die Optionen für google.golang.org/api bzw. cloud.google.com/go Clients
func ClientOptions(ctx context.Context, credentialsFile string, scopes ...string) ([]option.ClientOption, error) {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	creds, err := Credentials(ctx, credentialsFile, scopes...)
	if err != nil {
		return nil, err
	}
	return []option.ClientOption{option.WithCredentials(creds)}, nil
}
