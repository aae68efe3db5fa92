// Package notify is used by the pipeline runner to report operational events,
// both to an optional externally accessible channel and to the log framework.
package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/teltech/logger"
)

const (
	LevelInvalid = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

const (
	LevelStrDebug = "DEBUG"
	LevelStrInfo  = "INFO"
	LevelStrWarn  = "WARN"
	LevelStrError = "ERROR"
)

var levelName = map[int]string{
	LevelInvalid: "INVALID",
	LevelDebug:   LevelStrDebug,
	LevelInfo:    LevelStrInfo,
	LevelWarn:    LevelStrWarn,
	LevelError:   LevelStrError,
}

// Event is sent to the notification channel for each reported pipeline event.
type Event struct {
	// The notification level
	Level string

	// Timestamp of the event on the format "2006-01-02T15:04:05.000000Z"
	Timestamp string

	// The entity type of the sender, e.g. "runner"
	Sender string

	// The run ID of the pipeline execution, if applicable
	Run string

	// The pipeline ID, if applicable
	Pipeline string

	Message string

	// Name of the function the notification was sent from
	Func string
}

type Chan chan Event

// Level converts a level name (as found in the LOG_LEVEL env var) to its
// numeric value, returning LevelInvalid for unknown names.
func Level(name string) int {
	for level, str := range levelName {
		if str == name {
			return level
		}
	}
	return LevelInvalid
}

func LevelName(level int) string {
	name, ok := levelName[level]
	if !ok {
		name = "INVALID"
	}
	return name
}

// Notifier sends notification events to the provided channel and, if a logger
// is provided, to the log framework.
type Notifier struct {
	ch             Chan
	minNotifyLevel int
	log            *logger.Log
	sender         string
	run            string
	pipeline       string
}

// New creates a Notifier for one pipeline run. Both ch and log may be nil.
// The minimum level is taken from the "LOG_LEVEL" env var, defaulting to INFO.
func New(ch Chan, log *logger.Log, sender, run, pipeline string) *Notifier {
	minLevel := Level(os.Getenv("LOG_LEVEL"))
	if minLevel == LevelInvalid {
		minLevel = LevelInfo
	}
	return &Notifier{
		ch:             ch,
		minNotifyLevel: minLevel,
		log:            log,
		sender:         sender,
		run:            run,
		pipeline:       pipeline,
	}
}

func (n *Notifier) SetNotifyLevel(level int) {
	n.minNotifyLevel = level
}

// Notify formats the message and sends it to the channel (non-blocking) and
// to the log framework.
func (n *Notifier) Notify(level int, message string, args ...any) {
	if level < n.minNotifyLevel {
		return
	}

	msg := fmt.Sprintf(message, args...)
	event := Event{
		Level:     LevelName(level),
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000000Z"),
		Sender:    n.sender,
		Run:       n.run,
		Pipeline:  n.pipeline,
		Message:   msg,
		Func:      callerFunc(),
	}

	if n.ch != nil {
		select {
		case n.ch <- event:
		default:
		}
	}

	if n.log == nil {
		return
	}
	const fmtstr = "[%s:%s] (pipeline: %s) %s"
	switch level {
	case LevelDebug:
		n.log.Debugf(fmtstr, n.sender, n.run, n.pipeline, msg)
	case LevelInfo:
		n.log.Infof(fmtstr, n.sender, n.run, n.pipeline, msg)
	case LevelWarn:
		n.log.Warnf(fmtstr, n.sender, n.run, n.pipeline, msg)
	case LevelError:
		n.log.Errorf(fmtstr, n.sender, n.run, n.pipeline, msg)
	}
}

func callerFunc() string {
	pc, _, _, _ := runtime.Caller(2)
	funcName := "unknown"
	if f := runtime.FuncForPC(pc); f != nil {
		_, funcName = filepath.Split(f.Name())
	}
	return funcName
}
