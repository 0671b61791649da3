package pipefy

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"hufschlaeger.net/pipefy-exporter/pkg/utils"
)

// Outcome klassifiziert einen Download-Versuch bzw. das Gesamtergebnis
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	// OutcomeTransientNotFound: 404, die Datei ist noch nicht materialisiert
	OutcomeTransientNotFound
	// OutcomeExhaustedRetries: alle Versuche endeten mit 404
	OutcomeExhaustedRetries
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTransientNotFound:
		return "transient_not_found"
	case OutcomeExhaustedRetries:
		return "exhausted_retries"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type Download struct {
	Outcome    Outcome
	Body       []byte
	StatusCode int
	Attempts   int
}

// DownloadReport lädt die Export-Datei. 404 wird bis DownloadMaxAttempts mal mit
// DownloadRetryDelay Pause wiederholt, nach dem letzten Versuch wird nicht mehr gewartet.
// Andere Nicht-2xx-Antworten sind ein Fehler.
func (r *Repository) DownloadReport(ctx context.Context, fileURL string) (*Download, error) {
	if fileURL == "" {
		return nil, fmt.Errorf("%w: empty fileURL", ErrUnexpectedResponse)
	}

	maxAttempts := r.config.DownloadMaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	result := &Download{Outcome: OutcomeExhaustedRetries}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt

		outcome, status, body, err := r.fetchFile(ctx, fileURL)
		if err != nil {
			return nil, fmt.Errorf("download attempt %d: %w", attempt, err)
		}
		result.StatusCode = status

		if outcome == OutcomeSuccess {
			result.Outcome = OutcomeSuccess
			result.Body = body
			return result, nil
		}

		r.log.Info("report file not ready yet",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("retry_in", r.config.DownloadRetryDelay))

		if attempt < maxAttempts {
			if err := r.wait(ctx, r.config.DownloadRetryDelay); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

func (r *Repository) fetchFile(ctx context.Context, fileURL string) (Outcome, int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return 0, 0, nil, err
	}

	resp, err := r.downloadHTTP.Do(req)
	if err != nil {
		return 0, 0, nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			r.log.Warn("fehler beim Abschliessen des Response bodies", zap.Error(cerr))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, resp.StatusCode, nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return OutcomeTransientNotFound, resp.StatusCode, nil, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return OutcomeSuccess, resp.StatusCode, body, nil
	default:
		return 0, resp.StatusCode, nil, fmt.Errorf("HTTP %d: %s",
			resp.StatusCode, utils.TruncateText(string(body), 200))
	}
}
