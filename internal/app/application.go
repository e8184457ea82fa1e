package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tzneal/coordconv"

	"gomlat/internal/adsb"
	"gomlat/internal/beast"
	"gomlat/internal/logging"
	"gomlat/internal/modes"
	"gomlat/internal/recorder"
)

// Forwarder receives decoded messages in arrival order. The multilateration
// network client implements this; the built-in recorder is the default.
type Forwarder interface {
	Forward(msgs []*modes.Message) error
}

// timestampJumpTicks is the forward jump in receiver clock ticks beyond
// which a timestamp-jump event is synthesized (about 90 seconds at 12MHz).
const timestampJumpTicks = 90 * 12000000

const dialTimeout = 10 * time.Second

// Application wires the Beast decoder to a receiver connection and a
// forwarder.
type Application struct {
	config    Config
	logger    *logrus.Logger
	decoder   *beast.Decoder
	rotator   *logging.Rotator
	forwarder Forwarder
	payload   adsb.Decoder

	lastTimestamp uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewApplication creates a new application instance.
func NewApplication(config Config) *Application {
	ctx, cancel := context.WithCancel(context.Background())

	logger := logrus.New()
	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return &Application{
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetForwarder replaces the default recorder with an external forwarder.
// Must be called before Start.
func (app *Application) SetForwarder(f Forwarder) {
	app.forwarder = f
}

// SetPayloadDecoder installs an external ADS-B payload decoder. Optional;
// without one the semantic content of extended squitters is not
// interpreted. Must be called before Start.
func (app *Application) SetPayloadDecoder(d adsb.Decoder) {
	app.payload = d
}

// Start validates configuration, connects to the receiver and runs until a
// shutdown signal arrives.
func (app *Application) Start() error {
	if err := app.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	app.logger.WithFields(logrus.Fields{
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
		"receiver":   app.config.Receiver,
		"server":     app.config.Server,
		"user":       app.config.User,
		"udp":        !app.config.NoUDP,
	}).Info("Starting Mode S decoder")
	app.logLocation()

	if err := app.initializeComponents(); err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.run(); err != nil {
		app.logger.WithError(err).Error("Application error")
		app.shutdown()
		return err
	}

	<-sigChan
	app.logger.Info("Received shutdown signal")
	app.shutdown()

	return nil
}

// logLocation logs the receiver position, with an MGRS grid reference
// unless the privacy flag withholds the location.
func (app *Application) logLocation() {
	if app.config.Privacy {
		app.logger.Info("Receiver location withheld (privacy flag set)")
		return
	}

	fields := logrus.Fields{
		"lat":        app.config.Lat,
		"lon":        app.config.Lon,
		"alt_metres": app.config.AltitudeMetres(),
	}
	if mgrs, err := coordconv.DefaultMGRSConverter.ConvertFromGeodetic(app.config.Location(), 4); err == nil {
		fields["grid"] = fmt.Sprintf("%s", mgrs)
	}
	app.logger.WithFields(fields).Info("Receiver location")
}

// initializeComponents initializes the decoder, the message log and the
// default forwarder.
func (app *Application) initializeComponents() error {
	app.decoder = beast.NewDecoder(app.logger)

	logDir := app.config.LogDir
	if logDir == "" {
		logDir = DefaultLogDir
	}
	rotator, err := logging.NewRotator(logDir, "modes", app.config.LogRotateUTC, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize message log: %w", err)
	}
	app.rotator = rotator

	if app.forwarder == nil {
		app.forwarder = recorder.NewWriter(rotator, app.logger)
	}

	return nil
}

// run connects to the receiver and starts the decode loop and the log
// rotation scheduler.
func (app *Application) run() error {
	conn, err := net.DialTimeout("tcp", app.config.Receiver, dialTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to receiver %s: %w", app.config.Receiver, err)
	}
	app.logger.WithField("receiver", conn.RemoteAddr().String()).Info("Connected to receiver")

	// Unblock the read loop on shutdown.
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		<-app.ctx.Done()
		conn.Close()
	}()

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.rotator.Run(app.ctx)
	}()

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.readLoop(conn)
	}()

	return nil
}

// readLoop reads receiver chunks and runs the steady-state deframe loop,
// carrying the remainder between reads. Chunks must be decoded strictly in
// arrival order since the stuffing state spans chunk boundaries.
func (app *Application) readLoop(conn net.Conn) {
	buf := make([]byte, 4096)
	var remainder []byte

	for {
		n, err := conn.Read(buf)
		if err != nil {
			select {
			case <-app.ctx.Done():
			default:
				app.logger.WithError(err).Error("Receiver connection lost")
			}
			return
		}

		msgs, rest, decErr := app.decoder.DecodeBuffer(buf[:n], remainder)
		remainder = rest
		if decErr != nil {
			app.logger.WithError(decErr).Debug("Skipped undecodable frames")
		}

		app.handle(msgs)
	}
}

// handle synthesizes clock events, optionally runs the external payload
// decoder, and forwards everything in order.
func (app *Application) handle(msgs beast.Frames) {
	if len(msgs) == 0 {
		return
	}

	out := app.annotate(msgs)

	if app.payload != nil {
		for _, m := range out {
			if !m.Valid || len(m.Data) < 7 {
				continue
			}
			result, err := app.payload.Decode(m.Data)
			if err != nil {
				app.logger.WithError(err).Debug("Payload decode failed")
				continue
			}
			app.logger.WithField("payload", result.String()).Debug("Decoded payload")
		}
	}

	if err := app.forwarder.Forward(out); err != nil {
		app.logger.WithError(err).Error("Failed to forward messages")
	}
}

// annotate inserts a timestamp-jump event record in front of any message
// whose receiver timestamp runs backwards or leaps too far forward.
func (app *Application) annotate(msgs beast.Frames) beast.Frames {
	out := make(beast.Frames, 0, len(msgs))
	for _, m := range msgs {
		last := app.lastTimestamp
		if last != 0 && (m.Timestamp < last || m.Timestamp-last > timestampJumpTicks) {
			out = append(out, modes.NewEventMessage(modes.DFEventTimestampJump, m.Timestamp, map[string]string{
				"last": strconv.FormatUint(last, 10),
				"now":  strconv.FormatUint(m.Timestamp, 10),
			}))
			app.logger.WithFields(logrus.Fields{
				"last": last,
				"now":  m.Timestamp,
			}).Debug("Receiver timestamp jump")
		}
		app.lastTimestamp = m.Timestamp
		out = append(out, m)
	}
	return out
}

// shutdown stops the workers and closes the message log.
func (app *Application) shutdown() {
	app.cancel()
	app.wg.Wait()

	if app.rotator != nil {
		if err := app.rotator.Close(); err != nil {
			app.logger.WithError(err).Error("Failed to close message log")
		}
	}
	app.logger.Info("Shutdown complete")
}
