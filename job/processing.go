package job

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"renditionmaker/failures"
	"renditionmaker/logger"
	"renditionmaker/models"
	"renditionmaker/success"
)

// Failure kinds stored with failed work items.
const (
	FailureMissingAsset  = "missing_asset"
	FailureConfiguration = "configuration"
	FailureCancelled     = "cancelled"
)

const callbackTimeout = 30 * time.Second

// Processor turns one work item into a planner execution.
type Processor struct {
	assets  AssetStore
	planner *Planner
	client  *http.Client

	recordSuccess func(models.WorkItem, models.ExecutionReport) error
	recordFailure func(models.WorkItem, string, error) error
}

func NewProcessor(assets AssetStore, planner *Planner) *Processor {
	return &Processor{
		assets:        assets,
		planner:       planner,
		client:        &http.Client{Timeout: callbackTimeout},
		recordSuccess: success.StoreSuccess,
		recordFailure: failures.StoreFailure,
	}
}

// Process resolves the payload asset, parses the process arguments and runs
// the planner. A missing asset or a fatal configuration error fails the item
// before any rendition is attempted; per-pair problems only show up in the
// returned report.
func (p *Processor) Process(ctx context.Context, item models.WorkItem) (models.ExecutionReport, error) {
	logger.Infof("Processing work item %s (workflow %q): %s", item.ID, item.WorkflowID, item.PayloadPath)

	asset, err := p.assets.Resolve(ctx, item.PayloadPath)
	if err != nil || asset == nil {
		return models.ExecutionReport{}, p.fail(item, FailureMissingAsset, missingPayload(item, err))
	}

	cfg, err := ParseJobConfig(item.ProcessArgs)
	if err != nil {
		return models.ExecutionReport{}, p.fail(item, FailureConfiguration, fmt.Errorf("work item %s: %w", item.ID, err))
	}

	report := p.planner.Execute(ctx, asset, cfg, item.UserID)
	if err := ctx.Err(); err != nil {
		if errors.Is(context.Cause(ctx), ErrCancelledByUser) {
			return report, p.fail(item, FailureCancelled, fmt.Errorf("work item %s cancelled: %w", item.ID, err))
		}
		// shutdown: nothing is recorded, the item stays queued
		return report, fmt.Errorf("work item %s interrupted: %w", item.ID, err)
	}

	if err := p.recordSuccess(item, report); err != nil {
		logger.Errorf("Failed to store success record for %s: %v", item.ID, err)
	}

	if err := p.sendCallback(ctx, item, report); err != nil {
		logger.Errorf("Failed to send callback for %s: %v", item.ID, err)
	}

	logger.Infof("Successfully processed work item %s", item.ID)
	return report, nil
}

func missingPayload(item models.WorkItem, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %q (work item %s)", ErrMissingPayloadAsset, item.PayloadPath, item.ID)
	}
	return fmt.Errorf("%w: %q (work item %s): %v", ErrMissingPayloadAsset, item.PayloadPath, item.ID, cause)
}

// fail records the failure and hands the error back to the caller.
func (p *Processor) fail(item models.WorkItem, kind string, err error) error {
	logger.Errorf("Work item %s failed: %v", item.ID, err)
	if storeErr := p.recordFailure(item, kind, err); storeErr != nil {
		logger.Errorf("Failed to store failure for %s: %v", item.ID, storeErr)
	}
	return err
}

// sendCallback posts the execution summary to the item's callback URL, if any.
func (p *Processor) sendCallback(ctx context.Context, item models.WorkItem, report models.ExecutionReport) error {
	if item.CallbackURL == "" {
		return nil
	}

	payload := map[string]any{
		"id":          item.ID,
		"workflow_id": item.WorkflowID,
		"status":      "completed",
		"asset":       item.PayloadPath,
		"generated":   report.Count(models.OutcomeGenerated),
		"skipped":     report.Count(models.OutcomeSkipped),
		"malformed":   report.Count(models.OutcomeMalformed),
		"failed":      report.Count(models.OutcomeFailed),
		"timestamp":   time.Now().Unix(),
		"report":      report,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal callback payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, item.CallbackURL, bytes.NewReader(payloadBytes))
	if err != nil {
		return fmt.Errorf("failed to create callback request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "RenditionMaker/1.0")
	for key, value := range item.CallbackHeaders {
		req.Header.Set(key, value)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("callback request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned non-2xx status: %d", resp.StatusCode)
	}

	logger.Infof("Successfully sent callback to %s", item.CallbackURL)
	return nil
}
