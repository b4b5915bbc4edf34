// Package alerts renders agency alert previews and containment playbooks.
// Rendering only: delivery is left to whatever channel the agency wires up.
package alerts

import (
	"strings"
	"text/template"

	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/datastore"
	"github.com/alienbuster/alienbuster-go/internal/errors"
)

const subjectPrefix = "[ALIENBUSTER ALERT] "

var bodyTemplate = template.Must(template.New("alert").Parse(
	`High-risk invasive species report requires agency attention.

Species: {{.Species}}
Fused Risk: {{printf "%.2f" .FusedRisk}}
Location: {{printf "%.4f" .Latitude}}, {{printf "%.4f" .Longitude}}
Recommended Action: {{.RecommendedAction}}

This alert was generated automatically from citizen report #{{.ID}}.
`))

// Message is a rendered alert preview.
type Message struct {
	Subject    string
	Body       string
	Recipients []string
}

// Service renders alert previews against the configured threshold and
// recipient list.
type Service struct {
	settings conf.AlertSettings
}

// NewService creates the alert renderer.
func NewService(settings conf.AlertSettings) *Service {
	return &Service{settings: settings}
}

// Preview renders the alert for a report. The second return is false when
// the report's fused risk is below the alert threshold and no alert is
// warranted.
func (s *Service) Preview(report *datastore.Report) (Message, bool, error) {
	if report.FusedRisk < s.settings.Threshold {
		return Message{}, false, nil
	}

	var body strings.Builder
	if err := bodyTemplate.Execute(&body, report); err != nil {
		return Message{}, false, errors.New(err).
			Component("alerts").
			Category(errors.CategoryGeneric).
			Context("report_id", report.ID).
			Build()
	}

	return Message{
		Subject:    subjectPrefix + "High-risk report: " + report.Species,
		Body:       body.String(),
		Recipients: s.settings.Recipients,
	}, true, nil
}
