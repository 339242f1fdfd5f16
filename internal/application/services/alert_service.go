package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/providers"
)

const defaultAlertTemplate = "Care alert: patient {{patient_id}} needs attention (status: {{health_status}})"

// AlertService notifies a caretaker by SMS when generation flags a patient.
// Message bodies come from the alert_templates table when one is configured,
// so operators can adjust wording without a deploy.
type AlertService struct {
	sms       providers.SMSProvider
	recipient string
	db        *sqlx.DB
}

// NewAlertService creates a new alert service. With no recipient configured
// the service is a no-op; with no database the default template is used.
func NewAlertService(sms providers.SMSProvider, recipient string, db *sqlx.DB) *AlertService {
	return &AlertService{
		sms:       sms,
		recipient: recipient,
		db:        db,
	}
}

// NotifyIfAlert sends an SMS for results whose generated prompt carries the
// alert flag. Delivery failures are logged, not propagated: alerting rides on
// the regeneration path and must never fail it.
func (s *AlertService) NotifyIfAlert(ctx context.Context, results ...*entities.PromptResult) {
	if s.sms == nil || s.recipient == "" {
		return
	}

	template := s.alertTemplate(ctx)

	for _, result := range results {
		if result == nil || !result.Success || result.IsAlert == nil || !*result.IsAlert {
			continue
		}

		healthStatus := "unknown"
		if result.HealthStatus != nil {
			healthStatus = *result.HealthStatus
		}
		body := renderTemplate(template, map[string]string{
			"patient_id":    result.PatientID,
			"batch_id":      result.BatchID,
			"health_status": healthStatus,
		})

		if _, err := s.sms.Send(ctx, s.recipient, body); err != nil {
			log.Printf("Warning: Failed to send alert SMS for patient %s: %v", result.PatientID, err)
		}
	}
}

// alertTemplate loads the active SMS template, falling back to the built-in
// default when none is configured or the lookup fails.
func (s *AlertService) alertTemplate(ctx context.Context) string {
	if s.db == nil {
		return defaultAlertTemplate
	}

	var body string
	query := `SELECT body FROM alert_templates WHERE name = 'patient_alert' AND is_active = true LIMIT 1`
	if err := s.db.GetContext(ctx, &body, query); err != nil {
		return defaultAlertTemplate
	}
	return body
}

// renderTemplate substitutes {{key}} placeholders
func renderTemplate(template string, vars map[string]string) string {
	out := template
	for key, value := range vars {
		out = strings.ReplaceAll(out, fmt.Sprintf("{{%s}}", key), value)
	}
	return out
}
