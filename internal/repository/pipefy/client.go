package pipefy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hasura/go-graphql-client"
	"go.uber.org/zap"

	"hufschlaeger.net/pipefy-exporter/internal/config"
)

var (
	// ErrUnexpectedResponse: die Antwort hat nicht die erwartete Form
	ErrUnexpectedResponse = errors.New("unexpected Pipefy response shape")
	ErrExportFailed       = errors.New("pipe report export failed")
	ErrExportNotReady     = errors.New("pipe report export not ready")
)

type Repository struct {
	config       *config.Config
	client       *graphql.Client
	downloadHTTP *http.Client
	log          *zap.Logger

	// wait blockiert für d oder bis ctx endet; in Tests austauschbar
	wait func(ctx context.Context, d time.Duration) error
}

type authTransport struct {
	token string
	base  http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("Accept", "application/json")
	return t.base.RoundTrip(req)
}

func NewRepository(cfg *config.Config, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &authTransport{
			token: cfg.PipefyToken,
			base:  http.DefaultTransport,
		},
	}

	return &Repository{
		config:       cfg,
		client:       graphql.NewClient(cfg.GetPipefyURL(), httpClient),
		// Die Export-Datei liegt auf einem Storage-Host und braucht kein Token
		downloadHTTP: &http.Client{Timeout: cfg.HTTPTimeout},
		log:          log.Named("pipefy"),
		wait:         sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
