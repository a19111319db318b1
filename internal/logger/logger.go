package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rivo/tview"
	"github.com/rs/zerolog"
)

type Types int

const (
	Info Types = iota
	Error
	Warn
	Fatal
)

type Message struct {
	Timestamp time.Time
	Tag       string
	Message   string
	LogTypes  Types
}

// manager owns the shared outputs. Tagged loggers only hold a pointer to it.
type manager struct {
	view    io.Writer
	dev     bool
	sink    io.Writer
	logFile *os.File

	mu      sync.RWMutex
	closed  bool
	logChan chan Message
	done    chan struct{}
}

type Logger struct {
	tag string
	m   *manager
}

var (
	logManager *manager
	once       sync.Once
)

// InitLogger sets up the process wide outputs. view is usually the TUI debug
// console; a nil view falls back to the standard library logger in dev mode.
func InitLogger(dev bool, logPath string, view io.Writer) {
	once.Do(func() {
		var file *os.File
		if logPath != "" {
			timestamp := time.Now().Format("20060102_150405")
			fileName := fmt.Sprintf("schedchat_log_%s.log", timestamp)
			filePath := filepath.Join(logPath, fileName)

			f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				log.Fatalf("Failed to open log file: %s", err)
			}
			file = f
		}

		var sink io.Writer
		if file != nil {
			sink = file
		}
		logManager = newManager(dev, view, sink)
		logManager.logFile = file
	})
}

func newManager(dev bool, view io.Writer, sink io.Writer) *manager {
	m := &manager{
		view: view,
		dev:  dev,
		sink: sink,
	}
	if sink != nil {
		m.logChan = make(chan Message, 100)
		m.done = make(chan struct{})
		go m.processLogs()
	}
	return m
}

// NewLogger returns a logger tagged with the component name. Before
// InitLogger has run the logger discards everything.
func NewLogger(tag string) *Logger {
	return &Logger{tag: tag, m: logManager}
}

func (m *manager) processLogs() {
	defer close(m.done)
	zl := zerolog.New(m.sink)
	for msg := range m.logChan {
		zl.WithLevel(msg.LogTypes.level()).
			Time("time", msg.Timestamp).
			Str("tag", msg.Tag).
			Msg(msg.Message)
	}
}

func (l *Logger) log(logTypes Types, v ...interface{}) {
	m := l.m
	if m == nil {
		return
	}
	message := fmt.Sprint(v...)
	if m.dev {
		if m.view != nil {
			var format string
			switch logTypes {
			case Info:
				format = "[green]DEBUG (%s): %s[-]\n"
			case Error:
				format = "[red]DEBUG (%s): %s[-]\n"
			case Warn:
				format = "[yellow]DEBUG (%s): %s[-]\n"
			case Fatal:
				format = "[red]DEBUG (%s): %s[-]\n"
			}
			fmt.Fprintf(m.view, format, l.tag, tview.Escape(message))
		} else {
			log.Printf("%s (%s): %s", logTypes.toString(), l.tag, message)
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.logChan != nil && !m.closed {
		m.logChan <- Message{
			Timestamp: time.Now(),
			Tag:       l.tag,
			Message:   message,
			LogTypes:  logTypes,
		}
	}
}

func (l *Logger) Info(v ...interface{}) {
	l.log(Info, v...)
}

func (l *Logger) Error(v ...interface{}) {
	l.log(Error, v...)
}

func (l *Logger) Warn(v ...interface{}) {
	l.log(Warn, v...)
}

func (l *Logger) Fatal(v ...interface{}) {
	l.log(Fatal, v...)
	l.Close()
	os.Exit(1)
}

// Close flushes pending file entries and closes the log file. It is shared by
// every tagged logger, so calling it from any of them stops file logging.
func (l *Logger) Close() {
	if l.m != nil {
		l.m.close()
	}
}

func (m *manager) close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	if m.logChan != nil {
		close(m.logChan)
	}
	m.mu.Unlock()

	if m.done != nil {
		<-m.done
	}
	if m.logFile != nil {
		m.logFile.Close()
	}
}

func (t Types) toString() string {
	switch t {
	case Info:
		return "INFO"
	case Error:
		return "ERROR"
	case Warn:
		return "WARN"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (t Types) level() zerolog.Level {
	switch t {
	case Info:
		return zerolog.InfoLevel
	case Error:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	case Fatal:
		// WithLevel(FatalLevel) does not exit; Fatal() handles that itself.
		return zerolog.FatalLevel
	default:
		return zerolog.NoLevel
	}
}
