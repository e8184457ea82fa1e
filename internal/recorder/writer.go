package recorder

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"gomlat/internal/logging"
	"gomlat/internal/modes"
)

// Writer records decoded messages as text lines through a rotating daily
// log. One line per message:
//
//	<timestamp> <signal> <valid|invalid> DF<n> <address> <altitude> <rendering>
//
// Event records render with their event name in the final column and a
// blank address/altitude.
type Writer struct {
	rotator *logging.Rotator
	logger  *logrus.Logger
}

// NewWriter creates a recorder writing through rotator.
func NewWriter(rotator *logging.Rotator, logger *logrus.Logger) *Writer {
	return &Writer{
		rotator: rotator,
		logger:  logger,
	}
}

// Forward writes one line per message. Messages are never dropped based on
// validity; invalid records are useful when diagnosing a receiver.
func (w *Writer) Forward(msgs []*modes.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	out, err := w.rotator.Writer()
	if err != nil {
		return fmt.Errorf("failed to get log writer: %w", err)
	}

	for _, m := range msgs {
		if _, err := fmt.Fprintln(out, FormatLine(m)); err != nil {
			return fmt.Errorf("failed to write message log: %w", err)
		}
	}

	w.logger.WithField("count", len(msgs)).Debug("Recorded messages")
	return nil
}

// FormatLine renders one message as a log line.
func FormatLine(m *modes.Message) string {
	validity := "invalid"
	if m.Valid {
		validity = "valid"
	}
	return fmt.Sprintf("%d %d %s DF%d %06x %d %s",
		m.Timestamp, m.Signal, validity, m.DF, uint32(m.Address)&0xffffff, m.Altitude, m)
}
