package docql

import "github.com/sirupsen/logrus"

// log is the package-level logger used for non-fatal diagnostics: a
// debug entry per pipeline stage (stage name, input/output document
// counts, and the error when a stage fails) and an info entry per
// operator registered through AddOperators. These never carry
// evaluation forward past an actual error (see errors.go) — they only
// narrate what happened along the way, the same role log.Printf played
// in the teacher's stage handlers.
var log logrus.FieldLogger = logrus.StandardLogger()

// SetLogger overrides docql's package logger. Callers embedding this
// engine in a larger service typically pass their own
// *logrus.Entry here to get consistent fields across the whole
// request.
func SetLogger(l logrus.FieldLogger) {
	if l != nil {
		log = l
	}
}
