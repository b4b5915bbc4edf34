// Package review implements the expert verification workflow: the queue
// of reports awaiting a decision, and the decision itself.
package review

import (
	"context"
	"log/slog"

	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/datastore"
	"github.com/alienbuster/alienbuster-go/internal/errors"
	"github.com/alienbuster/alienbuster-go/internal/logging"
	"github.com/alienbuster/alienbuster-go/internal/reputation"
)

// Review decisions.
const (
	DecisionVerified      = "verified"
	DecisionRejected      = "rejected"
	DecisionNeedsMoreInfo = "needs_more_info"
)

// reputationDelta is applied to the reporter's trust score on a verified
// or rejected decision.
const reputationDelta = 0.05

// Decision is an expert's verdict on a report.
type Decision struct {
	ReportID    uint
	ExpertEmail string
	Decision    string
	Notes       string
	Confidence  *float64
}

// Service exposes the review queue and records decisions.
type Service struct {
	store      datastore.Interface
	settings   conf.ReviewSettings
	reputation *reputation.Provider
	logger     *slog.Logger
}

// NewService creates a review service. The reputation provider may be nil,
// in which case decisions do not adjust reporter trust.
func NewService(store datastore.Interface, settings conf.ReviewSettings, rep *reputation.Provider) *Service {
	return &Service{
		store:      store,
		settings:   settings,
		reputation: rep,
		logger:     logging.ForService("review"),
	}
}

// Queue returns the reports awaiting expert attention: explicitly queued
// ones plus unverified reports whose fused risk crossed the high-risk
// threshold.
func (s *Service) Queue(ctx context.Context) ([]datastore.Report, error) {
	return s.store.ReviewQueue(ctx, s.settings.HighRiskThreshold, s.settings.QueueLimit)
}

// ApplyDecision records the decision as an audit row, moves the report to
// the matching status, and nudges the reporter's trust score on a verified
// or rejected verdict.
func (s *Service) ApplyDecision(ctx context.Context, d Decision) (*datastore.Report, error) {
	status, err := statusForDecision(d.Decision)
	if err != nil {
		return nil, err
	}
	if d.ExpertEmail == "" {
		return nil, errors.Newf("reviewer is required").
			Component("review").
			Category(errors.CategoryValidation).
			Build()
	}

	report, err := s.store.GetReport(ctx, d.ReportID)
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx datastore.Interface) error {
		validation := &datastore.Validation{
			ReportID:    d.ReportID,
			ExpertEmail: d.ExpertEmail,
			Decision:    d.Decision,
			Confidence:  d.Confidence,
			Notes:       d.Notes,
		}
		if err := tx.SaveValidation(ctx, validation); err != nil {
			return err
		}
		return tx.UpdateReportStatus(ctx, d.ReportID, status)
	})
	if err != nil {
		return nil, err
	}

	s.adjustReputation(ctx, report, d.Decision)

	report.Status = status
	s.logger.Info("review decision applied",
		"report_id", d.ReportID,
		"decision", d.Decision,
		"reviewer", d.ExpertEmail)
	return report, nil
}

// adjustReputation moves the reporter's trust score by reputationDelta,
// clamped to [0, 1]. Failures are logged, never surfaced: the decision
// itself has already committed.
func (s *Service) adjustReputation(ctx context.Context, report *datastore.Report, decision string) {
	if s.reputation == nil || report.UserID == "" {
		return
	}
	var delta float64
	switch decision {
	case DecisionVerified:
		delta = reputationDelta
	case DecisionRejected:
		delta = -reputationDelta
	default:
		return
	}

	current, err := s.reputation.Score(ctx, report.UserID)
	if err != nil {
		s.logger.Warn("reputation lookup failed", "user_id", report.UserID, "error", err)
		return
	}
	next := current + delta
	if next < 0 {
		next = 0
	}
	if next > 1 {
		next = 1
	}
	if err := s.reputation.SetScore(ctx, report.UserID, next); err != nil {
		s.logger.Warn("reputation update failed", "user_id", report.UserID, "error", err)
	}
}

func statusForDecision(decision string) (string, error) {
	switch decision {
	case DecisionVerified:
		return datastore.ReportStatusVerified, nil
	case DecisionRejected:
		return datastore.ReportStatusRejected, nil
	case DecisionNeedsMoreInfo:
		return datastore.ReportStatusNeedsMoreInfo, nil
	default:
		return "", errors.Newf("unknown review decision %q", decision).
			Component("review").
			Category(errors.CategoryValidation).
			Context("decision", decision).
			Build()
	}
}
