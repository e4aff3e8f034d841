package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/tp90x/internal/protocol"
)

const lowBatteryThreshold = 20

// RenderBroadcast formats one periodic temperature broadcast as a single
// line suitable for streaming output: probe readings in channel order,
// battery, and an alarm marker when one is ringing.
func RenderBroadcast(bc *protocol.Broadcast) string {
	var b strings.Builder

	for i, temp := range bc.Temps {
		if i > 0 {
			b.WriteString("  ")
		}
		label := fmt.Sprintf("P%d ", i+1)
		if temp.Present {
			b.WriteString(LabelStyle.Width(0).Render(label))
			b.WriteString(ProbePresentStyle.Render(temp.String()))
		} else {
			b.WriteString(ProbeAbsentStyle.Render(label + temp.String()))
		}
	}

	b.WriteString("  ")
	b.WriteString(renderBattery(bc.Battery))

	if bc.AlarmActive() {
		b.WriteString("  ")
		b.WriteString(AlarmStyle.Render(AlarmMarker + " ALARM"))
	}

	return b.String()
}

// RenderStatus formats a device status reply as a bordered summary box.
func RenderStatus(model string, status *protocol.DeviceStatus) string {
	beeper := FailureMarker + " off"
	if status.BeeperEnabled {
		beeper = SuccessMarker + " on"
	}

	lines := []string{
		TitleStyle.Render(model),
		LabelStyle.Render("Units:") + ValueStyle.Render(status.Units.String()),
		LabelStyle.Render("Beeper:") + ValueStyle.Render(beeper),
		LabelStyle.Render("Battery:") + renderBattery(status.Battery),
	}

	return BoxStyle().Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// RenderAlarm formats an alarm configuration reply.
func RenderAlarm(cfg *protocol.AlarmConfig) string {
	lines := []string{
		TitleStyle.Render(fmt.Sprintf("Probe %d alarm", cfg.Channel)),
		LabelStyle.Render("Mode:") + ValueStyle.Render(cfg.Mode.String()),
	}

	switch cfg.Mode {
	case protocol.AlarmTarget:
		lines = append(lines,
			LabelStyle.Render("Target:")+ProbePresentStyle.Render(cfg.Primary.String()))
	case protocol.AlarmRange:
		lines = append(lines,
			LabelStyle.Render("High:")+ProbePresentStyle.Render(cfg.Primary.String()),
			LabelStyle.Render("Low:")+ProbePresentStyle.Render(cfg.Secondary.String()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderBattery(level byte) string {
	text := fmt.Sprintf("battery %d%%", level)
	if level < lowBatteryThreshold {
		return WarnStyle.Render(text)
	}
	return ValueStyle.Render(text)
}
