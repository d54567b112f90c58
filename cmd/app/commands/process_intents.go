package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// IntentProcessor replays the pending stage intents of one tenant.
type IntentProcessor interface {
	ProcessEvents(ctx context.Context, tenantID string) (int, error)
}

type tenantIntentResult struct {
	TenantID  string `json:"tenant_id"`
	Processed int    `json:"processed"`
	Error     string `json:"error,omitempty"`
}

// RunProcessIntents runs one replay batch for every tenant and reports what was processed.
// A failing tenant is reported and does not stop the others.
func RunProcessIntents(
	ctx context.Context,
	processor IntentProcessor,
	logger *slog.Logger,
	writer io.Writer,
	tenants []string,
	format string,
) error {
	if len(tenants) == 0 {
		return fmt.Errorf("no tenants configured: set TENANT_IDS")
	}

	results := make([]tenantIntentResult, 0, len(tenants))
	failed := 0
	for _, tenantID := range tenants {
		processed, err := processor.ProcessEvents(ctx, tenantID)
		result := tenantIntentResult{TenantID: tenantID, Processed: processed}
		if err != nil {
			failed++
			result.Error = err.Error()
			logger.Error("failed to process stage intents",
				slog.String("tenant_id", tenantID),
				slog.Any("error", err),
			)
		}
		results = append(results, result)
	}

	err := render(writer, format, results, func(w io.Writer) error {
		for _, r := range results {
			if r.Error != "" {
				_, _ = fmt.Fprintf(w, "%s: processed %d, error: %s\n", r.TenantID, r.Processed, r.Error)
				continue
			}
			_, _ = fmt.Fprintf(w, "%s: processed %d\n", r.TenantID, r.Processed)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("stage intent replay failed for %d of %d tenants", failed, len(tenants))
	}
	return nil
}
