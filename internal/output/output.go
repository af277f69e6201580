// Package output handles CLI output: per-file status lines, verbose detail and
// summary tables.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Label tags a status line.
type Label string

const (
	LabelRenamed   Label = "RENAMED"
	LabelDryRun    Label = "DRY-RUN"
	LabelNoOp      Label = "NO-OP"
	LabelConflict  Label = "CONFLICT"
	LabelFailed    Label = "FAILED"
	LabelUnmatched Label = "UNMATCHED"
	LabelWatch     Label = "WATCH"
)

var labelAttrs = map[Label][]color.Attribute{
	LabelRenamed:   {color.FgGreen},
	LabelDryRun:    {color.FgCyan},
	LabelNoOp:      {color.FgHiBlack},
	LabelConflict:  {color.FgYellow, color.Bold},
	LabelFailed:    {color.FgRed, color.Bold},
	LabelUnmatched: {color.FgMagenta},
	LabelWatch:     {color.FgBlue},
}

// labelWidth pads labels so messages line up.
const labelWidth = len("UNMATCHED")

// Config holds output configuration.
type Config struct {
	Verbose   bool      // Enable verbose output
	Writer    io.Writer // Output destination (default: os.Stdout)
	ErrWriter io.Writer // Error output destination (default: os.Stderr)
	IsTTY     bool      // Whether output is a terminal
	NoColor   bool
	Width     int // Table rows are cut to this many columns; 0 means no limit
}

// Output writes formatted lines. It is safe for concurrent use.
type Output struct {
	config Config
	mu     sync.Mutex
}

// New creates a new Output instance with the given configuration.
func New(config Config) *Output {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.ErrWriter == nil {
		config.ErrWriter = os.Stderr
	}
	return &Output{config: config}
}

// Status prints a labelled line such as "RENAMED   a.srt -> b.srt".
func (o *Output) Status(label Label, format string, args ...any) {
	tag := fmt.Sprintf("%-*s", labelWidth, string(label))
	if o.colorEnabled() {
		c := color.New(labelAttrs[label]...)
		c.EnableColor()
		tag = c.Sprint(tag)
	}
	o.write(o.config.Writer, tag+" "+fmt.Sprintf(format, args...))
}

// Verbose prints a message only when verbose mode is enabled.
func (o *Output) Verbose(format string, args ...any) {
	if !o.config.Verbose {
		return
	}
	o.write(o.config.Writer, fmt.Sprintf(format, args...))
}

// Info prints an informational message (always shown).
func (o *Output) Info(format string, args ...any) {
	o.write(o.config.Writer, fmt.Sprintf(format, args...))
}

// Error prints an error message to the error writer.
func (o *Output) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if o.colorEnabled() {
		c := color.New(color.FgRed)
		c.EnableColor()
		msg = c.Sprint(msg)
	}
	o.write(o.config.ErrWriter, msg)
}

// Align selects column alignment for Table.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Table renders rows under headers with rounded borders.
func (o *Output) Table(headers []string, rows [][]string, aligns []Align) {
	if rendered := renderTable(headers, rows, aligns, o.config.Width); rendered != "" {
		o.write(o.config.Writer, rendered)
	}
}

func renderTable(headers []string, rows [][]string, aligns []Align, width int) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	if width > 0 {
		tw.SetAllowedRowLength(width)
	}

	return tw.Render()
}

// IsVerbose returns whether verbose mode is enabled.
func (o *Output) IsVerbose() bool {
	return o.config.Verbose
}

// IsTTY returns whether the output is a terminal.
func (o *Output) IsTTY() bool {
	return o.config.IsTTY
}

func (o *Output) colorEnabled() bool {
	return o.config.IsTTY && !o.config.NoColor
}

func (o *Output) write(w io.Writer, msg string) {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprint(w, msg)
}
