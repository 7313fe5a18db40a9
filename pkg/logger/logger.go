package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus.Logger with ledger-specific helpers
type Logger struct {
	*logrus.Logger
}

// New creates a new logger instance writing JSON to stdout
func New(level string) *Logger {
	return NewWithOutput(level, os.Stdout)
}

// NewWithOutput creates a logger writing JSON to out
func NewWithOutput(level string, out io.Writer) *Logger {
	log := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(out)

	return &Logger{Logger: log}
}

// Discard returns a logger that drops everything; used by tests and tools
// that have no log sink.
func Discard() *Logger {
	return NewWithOutput("panic", io.Discard)
}

// WithComponent creates a new logger entry with component name field
func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.Logger.WithField("component", component)
}

// WithTransaction creates a new logger entry scoped to one transaction
func (l *Logger) WithTransaction(txID, function string) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"transaction_id": txID,
		"function":       function,
	})
}

// Audit logs a ledger write with structured format
func (l *Logger) Audit(txID, action, key string, success bool) {
	entry := l.Logger.WithFields(logrus.Fields{
		"audit":          true,
		"transaction_id": txID,
		"action":         action,
		"key":            key,
		"success":        success,
	})

	if success {
		entry.Info("Audit event")
	} else {
		entry.Warn("Audit event failed")
	}
}

// PHIAccess logs a consent-gated access decision on a patient record
func (l *Logger) PHIAccess(txID, consenterID, patientID, purpose string, granted bool) {
	entry := l.Logger.WithFields(logrus.Fields{
		"phi_access":     true,
		"transaction_id": txID,
		"consenter_id":   consenterID,
		"patient_id":     patientID,
		"purpose":        purpose,
		"success":        granted,
		"sensitive":      true,
	})

	if granted {
		entry.Info("PHI access granted")
	} else {
		entry.Warn("PHI access denied")
	}
}

// BlockchainTransaction logs the outcome of a chaincode transaction
func (l *Logger) BlockchainTransaction(chaincode, function, txID, caller string, durationMs int64, err error) {
	entry := l.Logger.WithFields(logrus.Fields{
		"blockchain":     true,
		"chaincode":      chaincode,
		"function":       function,
		"transaction_id": txID,
		"caller":         caller,
		"duration_ms":    durationMs,
	})

	if err != nil {
		entry.WithError(err).Error("Blockchain transaction failed")
		return
	}
	entry.Info("Blockchain transaction completed")
}
