// Package monitoring evaluates finished search runs and delivers alerts and
// lead notifications to a webhook.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/model"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertSourceFailureRate AlertType = "source_failure_rate"
	AlertSourceBlocked     AlertType = "source_blocked"
	AlertBudgetExceeded    AlertType = "budget_exceeded"
	AlertPriorityLeads     AlertType = "priority_leads"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	RunID     string         `json:"run_id,omitempty"`
	Query     string         `json:"query,omitempty"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// LeadSummary is the part of a record announced in a priority_leads alert.
type LeadSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Website  string `json:"website,omitempty"`
	Area     string `json:"area,omitempty"`
	Score    int    `json:"score"`
	Priority string `json:"priority"`
}

// Alerter evaluates a run against configured thresholds and sends alerts
// via webhook.
type Alerter struct {
	cfg         config.MonitoringConfig
	notifyLeads bool
	minPriority model.Priority
	client      *http.Client
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	a := &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
	if cfg.NotifyPriority != "" {
		if p, err := model.ParsePriority(cfg.NotifyPriority); err == nil {
			a.notifyLeads = true
			a.minPriority = p
		}
	}
	return a
}

// Enabled reports whether a webhook is configured.
func (a *Alerter) Enabled() bool {
	return a != nil && a.cfg.WebhookURL != ""
}

// Evaluate checks a finished run and returns any alerts.
func (a *Alerter) Evaluate(stats model.RunStats, records []model.BusinessRecord) []Alert {
	var alerts []Alert
	now := time.Now().UTC()
	newAlert := func(t AlertType, severity, msg string, details map[string]any) Alert {
		return Alert{
			Type:      t,
			Severity:  severity,
			RunID:     stats.RunID,
			Query:     stats.Query,
			Message:   msg,
			Details:   details,
			Timestamp: now,
		}
	}

	// Source failure rate. A single attempted source is not a rate.
	attempted := stats.SourcesAttempted
	failed := attempted - stats.SourcesSucceeded
	if attempted >= 2 {
		rate := float64(failed) / float64(attempted)
		if rate > a.cfg.FailureRateThreshold {
			alerts = append(alerts, newAlert(AlertSourceFailureRate, "high",
				fmt.Sprintf("Source failure rate %.1f%% exceeds threshold %.1f%% (%d failed / %d attempted)",
					rate*100, a.cfg.FailureRateThreshold*100, failed, attempted),
				map[string]any{
					"failure_rate": rate,
					"threshold":    a.cfg.FailureRateThreshold,
					"failed":       failed,
					"attempted":    attempted,
				}))
		}
	}

	var blocked []string
	for _, ss := range stats.Sources {
		if ss.Blocked {
			blocked = append(blocked, ss.Name)
		}
	}
	if len(blocked) > 0 {
		alerts = append(alerts, newAlert(AlertSourceBlocked, "medium",
			fmt.Sprintf("%d source(s) reported automated-access blocking", len(blocked)),
			map[string]any{"sources": blocked}))
	}

	if stats.BudgetExceeded {
		alerts = append(alerts, newAlert(AlertBudgetExceeded, "medium",
			fmt.Sprintf("Run budget exhausted after %s with %d result(s)", stats.Duration.Round(time.Millisecond), stats.Returned),
			map[string]any{"returned": stats.Returned, "sources_used": stats.SourcesUsed}))
	}

	if a.notifyLeads {
		var leads []LeadSummary
		for _, r := range records {
			if r.LeadScore == nil || r.LeadScore.Priority < a.minPriority {
				continue
			}
			leads = append(leads, LeadSummary{
				ID:       r.ID,
				Name:     r.Name,
				Phone:    r.Phone,
				Email:    r.Email,
				Website:  r.Website,
				Area:     r.Area,
				Score:    r.LeadScore.Total,
				Priority: r.LeadScore.Priority.String(),
			})
		}
		if len(leads) > 0 {
			alerts = append(alerts, newAlert(AlertPriorityLeads, "info",
				fmt.Sprintf("%d lead(s) at %s priority or above", len(leads), a.minPriority),
				map[string]any{"leads": leads}))
		}
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if !a.Enabled() || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.sendWebhook(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// Notify evaluates a run and sends the resulting alerts.
func (a *Alerter) Notify(ctx context.Context, stats model.RunStats, records []model.BusinessRecord) int {
	if !a.Enabled() {
		return 0
	}
	return a.SendAlerts(ctx, a.Evaluate(stats, records))
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
