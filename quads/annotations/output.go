package annotations

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// OutputFormatter formats events for human-readable display.
type OutputFormatter struct {
	useColor bool
	writer   io.Writer
}

// NewOutputFormatter creates a formatter with color support detection.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}

	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return &OutputFormatter{useColor: useColor, writer: w}
}

// WithColor forces color on or off.
func (f *OutputFormatter) WithColor(on bool) *OutputFormatter {
	f.useColor = on
	return f
}

// Handle prints events as they occur. It satisfies Handler.
func (f *OutputFormatter) Handle(event Event) {
	output := f.Format(event)
	if output != "" {
		fmt.Fprintln(f.writer, output)
	}
}

// Format converts an event to a human-readable string.
func (f *OutputFormatter) Format(event Event) string {
	latency := f.formatLatency(event.Latency)

	switch event.Name {
	case PatternMatch, PatternCount:
		pattern := f.pattern("Match", event.Data["pattern"])
		rows := f.colorizeCount("rows", intOf(event.Data["match.count"]))
		probed, ok := event.Data["rows.probed"].(int)
		if !ok {
			return fmt.Sprintf("%s %s%s%s", latency, pattern, f.arrow(), rows)
		}
		scan := fmt.Sprintf(" (%d probed, %d rejected)", probed, intOf(event.Data["rows.rejected"]))
		return fmt.Sprintf("%s %s%s%s%s", latency, pattern, f.arrow(), rows, f.colorize(scan, color.FgRed))

	case PatternExtract:
		return fmt.Sprintf("%s %s%s%s removed",
			latency,
			f.pattern("Extract", event.Data["pattern"]),
			f.arrow(),
			f.colorizeCount("rows", intOf(event.Data["extract.count"])))

	case GraphRemoved:
		return fmt.Sprintf("%s %s Removed graph %v with %s",
			latency,
			f.colorize("===", color.FgYellow),
			event.Data["graph"],
			f.colorizeCount("triples", intOf(event.Data["triple.count"])))

	case StoreIndexed:
		return fmt.Sprintf("%s Indexed %v with %s",
			latency,
			event.Data["kind"],
			f.colorizeCount("rows", intOf(event.Data["row.count"])))

	case SnapshotSaved, SnapshotLoaded:
		verb := "Saved"
		if event.Name == SnapshotLoaded {
			verb = "Loaded"
		}
		return fmt.Sprintf("%s %s %s snapshot %q with %s",
			latency,
			f.colorize("===", color.FgGreen),
			verb,
			event.Data["snapshot"],
			f.colorizeCount("quads", intOf(event.Data["quad.count"])))

	case NotationParsed:
		return fmt.Sprintf("%s Parsed %v into %s",
			latency,
			event.Data["source"],
			f.colorizeCount("facts", intOf(event.Data["fact.count"])))

	case RequestServed:
		return fmt.Sprintf("%s %v %v %s",
			latency,
			event.Data["method"],
			event.Data["path"],
			f.status(intOf(event.Data["status"])))

	case ErrorSnapshot, ErrorNotation, ErrorConcurrent:
		return fmt.Sprintf("%s %s %s: %v",
			latency,
			f.colorize("✗", color.FgRed),
			strings.TrimPrefix(event.Name, "error/"),
			event.Data["error"])

	default:
		return fmt.Sprintf("%s %s %v", latency, event.Name, event.Data)
	}
}

func (f *OutputFormatter) pattern(verb string, p any) string {
	if !f.useColor {
		return fmt.Sprintf("%s(%v)", verb, p)
	}
	return fmt.Sprintf("%s%s%s",
		color.BlueString(verb+"("),
		color.CyanString(fmt.Sprint(p)),
		color.BlueString(")"))
}

func (f *OutputFormatter) arrow() string {
	if !f.useColor {
		return " → "
	}
	return color.YellowString(" → ")
}

func (f *OutputFormatter) status(code int) string {
	s := fmt.Sprint(code)
	switch {
	case code >= 500:
		return f.colorize(s, color.FgRed)
	case code >= 400:
		return f.colorize(s, color.FgYellow)
	default:
		return f.colorize(s, color.FgGreen)
	}
}

// formatLatency formats a duration as [XXXms] or [XXXµs] with color coding.
func (f *OutputFormatter) formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		s := fmt.Sprintf("[%dµs]", d.Microseconds())
		if !f.useColor {
			return s
		}
		return color.GreenString(s)
	}

	ms := float64(d.Microseconds()) / 1000.0
	s := fmt.Sprintf("[%.1fms]", ms)

	if !f.useColor {
		return s
	}

	switch {
	case ms < 50:
		return color.GreenString(s)
	case ms < 200:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

// colorizeCount formats a count with a label, using color based on the label type.
func (f *OutputFormatter) colorizeCount(label string, count int) string {
	text := fmt.Sprintf("%d %s", count, label)

	if !f.useColor {
		return text
	}

	switch label {
	case "rows", "triples":
		return color.MagentaString(text)
	case "quads", "facts":
		return color.CyanString(text)
	default:
		return text
	}
}

// colorize applies color if enabled.
func (f *OutputFormatter) colorize(text string, attrs ...color.Attribute) string {
	if !f.useColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

func intOf(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	}
	return 0
}

// ConsoleHandler creates a handler that prints formatted events to w.
func ConsoleHandler(w io.Writer) Handler {
	return NewOutputFormatter(w).Handle
}
