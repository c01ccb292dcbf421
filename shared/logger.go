package shared

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// LogLevel represents different log levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelSuccess
	LevelError
)

var levelColors = map[LogLevel]*color.Color{
	LevelDebug:   color.New(color.FgHiBlack),
	LevelInfo:    color.New(color.FgCyan),
	LevelWarn:    color.New(color.FgYellow),
	LevelSuccess: color.New(color.FgGreen),
	LevelError:   color.New(color.FgRed),
}

var levelSymbols = map[LogLevel]string{
	LevelDebug:   "·",
	LevelInfo:    "ℹ",
	LevelWarn:    "⚠",
	LevelSuccess: "✔",
	LevelError:   "✖",
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Reporter is the status channel the deployment pipeline talks to. It never
// assumes a terminal, so pipelines can run headless.
type Reporter interface {
	Start(msg string, args ...interface{})
	Progress(current, total int, label string)
	Succeed(msg string, args ...interface{})
	Fail(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Info(msg string, args ...interface{})
}

// Logger is the user-facing terminal logger
type Logger struct {
	mu          sync.Mutex
	out         io.Writer
	minLevel    LogLevel
	interactive bool

	spinMsg  string
	spinStop chan struct{}
	spinDone chan struct{}
}

var _ Reporter = (*Logger)(nil)

// New creates a new Logger writing to out. Spinner animation is only used
// when out is a terminal.
func New(out io.Writer, minLevel LogLevel) *Logger {
	interactive := false
	if f, ok := out.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return &Logger{
		out:         out,
		minLevel:    minLevel,
		interactive: interactive,
	}
}

// DefaultLogger creates a logger on stdout at info level
func DefaultLogger() *Logger {
	return New(os.Stdout, LevelInfo)
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// Log logs a message at a specific level
func (l *Logger) Log(level LogLevel, msg string, args ...interface{}) {
	if level < l.minLevel {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.clearSpinnerLine()
	fmt.Fprintln(l.out, l.format(level, fmt.Sprintf(msg, args...)))
}

func (l *Logger) format(level LogLevel, msg string) string {
	return levelColors[level].Sprint(levelSymbols[level]) + " " + msg
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.Log(LevelDebug, msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.Log(LevelInfo, msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.Log(LevelWarn, msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.Log(LevelError, msg, args...)
}

// Success logs a success message
func (l *Logger) Success(msg string, args ...interface{}) {
	l.Log(LevelSuccess, msg, args...)
}

// Start begins a status line. On a terminal it animates until the next
// Succeed or Fail.
func (l *Logger) Start(msg string, args ...interface{}) {
	l.stopSpinner()

	text := fmt.Sprintf(msg, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.spinMsg = text

	if !l.interactive {
		fmt.Fprintln(l.out, l.format(LevelInfo, text+"..."))
		return
	}

	l.spinStop = make(chan struct{})
	l.spinDone = make(chan struct{})
	go l.spin(l.spinStop, l.spinDone)
}

func (l *Logger) spin(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i = (i + 1) % len(spinnerFrames) {
		l.mu.Lock()
		fmt.Fprintf(l.out, "\r\033[K%s %s", levelColors[LevelInfo].Sprint(spinnerFrames[i]), l.spinMsg)
		l.mu.Unlock()

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// Succeed ends the status line with a success mark
func (l *Logger) Succeed(msg string, args ...interface{}) {
	l.stopSpinner()
	l.Log(LevelSuccess, msg, args...)
}

// Fail ends the status line with an error mark
func (l *Logger) Fail(msg string, args ...interface{}) {
	l.stopSpinner()
	l.Log(LevelError, msg, args...)
}

func (l *Logger) stopSpinner() {
	l.mu.Lock()
	stop, done := l.spinStop, l.spinDone
	l.spinStop, l.spinDone = nil, nil
	l.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done

	l.mu.Lock()
	fmt.Fprint(l.out, "\r\033[K")
	l.spinMsg = ""
	l.mu.Unlock()
}

// clearSpinnerLine wipes a running spinner so a log line does not share its
// row; the spinner redraws on its next tick. Must be called with l.mu held.
func (l *Logger) clearSpinnerLine() {
	if l.interactive && l.spinStop != nil {
		fmt.Fprint(l.out, "\r\033[K")
	}
}

// JSON writes data as indented JSON, undecorated, for machine consumption
func (l *Logger) JSON(data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = fmt.Fprintln(l.out, string(jsonData))
	return err
}

// Table logs tabular data
func (l *Logger) Table(headers []string, rows [][]string) {
	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) && len([]rune(cell)) > colWidths[i] {
				colWidths[i] = len([]rune(cell))
			}
		}
	}

	var table strings.Builder

	for i, h := range headers {
		table.WriteString(fmt.Sprintf(" %-*s ", colWidths[i], h))
		if i < len(headers)-1 {
			table.WriteString("│")
		}
	}

	table.WriteString("\n")
	for i, w := range colWidths {
		table.WriteString(strings.Repeat("─", w+2))
		if i < len(colWidths)-1 {
			table.WriteString("┼")
		}
	}
	table.WriteString("\n")

	for _, row := range rows {
		for i, cell := range row {
			if i >= len(colWidths) {
				break
			}
			table.WriteString(fmt.Sprintf(" %-*s ", colWidths[i], cell))
			if i < len(row)-1 {
				table.WriteString("│")
			}
		}
		table.WriteString("\n")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, table.String())
}

// Progress reports current of total done. On a terminal the bar replaces the
// running status line; otherwise each call prints one line.
func (l *Logger) Progress(current, total int, label string) {
	if total <= 0 || l.minLevel > LevelInfo {
		return
	}

	const barWidth = 30
	progress := float64(current) / float64(total)
	filled := int(barWidth * progress)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	msg := fmt.Sprintf("[%s] %3.0f%% %d/%d (%s)", bar, progress*100, current, total, label)

	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case !l.interactive:
		fmt.Fprintln(l.out, l.format(LevelInfo, msg))
	case l.spinStop != nil:
		l.spinMsg = msg
	default:
		fmt.Fprint(l.out, "\r\033[K"+l.format(LevelInfo, msg))
		if current >= total {
			fmt.Fprintln(l.out)
		}
	}
}
