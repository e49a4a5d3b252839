// Package audit records issuance activity as structured log events.
package audit

import (
	"github.com/sirupsen/logrus"
)

// Event names.
const (
	EventCertificateIssued  = "certificate.issued"
	EventCertificateSigned  = "certificate.signed"
	EventCertificateRenewed = "certificate.renewed"
	EventOrderCompleted     = "certificate.order_completed"
)

// Logger emits audit events for issued certificates.
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates an audit logger on top of the given logrus logger.
func NewLogger(base *logrus.Logger) *Logger {
	return &Logger{entry: base.WithField("component", "audit")}
}

// Record describes one issuance event.
type Record struct {
	Event        string
	ProjectID    string
	ProfileID    string
	CAID         string
	CertID       string
	SerialNumber string
	CommonName   string
	Actor        string
}

// Log writes the record as one structured event.
func (l *Logger) Log(rec Record) {
	l.entry.WithFields(logrus.Fields{
		"event":        rec.Event,
		"projectId":    rec.ProjectID,
		"profileId":    rec.ProfileID,
		"caId":         rec.CAID,
		"certId":       rec.CertID,
		"serialNumber": rec.SerialNumber,
		"commonName":   rec.CommonName,
		"actor":        rec.Actor,
	}).Info("certificate issuance event")
}
