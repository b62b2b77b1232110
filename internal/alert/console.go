package alert

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"github.com/crimson-sun/airs/internal/model"
)

// Console prints alerts and export confirmations to a terminal.
type Console struct {
	warn    *pterm.PrefixPrinter
	success *pterm.PrefixPrinter
	text    *pterm.BasicTextPrinter
}

// NewConsole creates a Console writing to w, or stdout when w is nil.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{
		warn:    pterm.Warning.WithWriter(w),
		success: pterm.Success.WithWriter(w),
		text:    pterm.DefaultBasicText.WithWriter(w),
	}
}

// Notify prints a header and one line per alert, or a single all-clear line
// when there are none.
func (c *Console) Notify(_ context.Context, alerts []model.Incident) error {
	if len(alerts) == 0 {
		c.success.Println("No critical alerts detected.")
		return nil
	}
	c.warn.Println("ALERT TRIGGERED:")
	for _, a := range alerts {
		c.text.Printfln("[%s] %s → %s (%s)", a.Timestamp, a.Source, a.AttackType, severityLabel(a.Severity))
	}
	return nil
}

// Exported confirms the written report files.
func (c *Console) Exported(csvPath, jsonPath string) {
	c.success.Printfln("CSV exported to: %s", csvPath)
	c.success.Printfln("JSON exported to: %s", jsonPath)
}

func severityLabel(s string) string {
	up := strings.ToUpper(s)
	switch strings.ToLower(s) {
	case string(model.SeverityHigh):
		return pterm.FgRed.Sprint(up)
	case string(model.SeverityMedium):
		return pterm.FgYellow.Sprint(up)
	case string(model.SeverityLow):
		return pterm.FgBlue.Sprint(up)
	default:
		return up
	}
}
