package terminal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Lin-Jiong-HDU/nlsh/internal/command"
	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
)

const (
	windowsProcessRows = 18
	linuxProcessRows   = 16
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(colorPink).Bold(true).Padding(0, 1)
	keyStyle    = lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
	valueStyle  = lipgloss.NewStyle().Foreground(colorGreen).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// FormatOutput renders command output for intents that have a known
// shape. It reports false when the raw text should be shown instead,
// including when the output does not parse.
func FormatOutput(in intent.Intent, stdout string, d command.Dialect) (string, bool) {
	if strings.TrimSpace(stdout) == "" {
		return "", false
	}

	switch in {
	case intent.CheckRAM:
		return formatRAM(stdout, d)
	case intent.CheckCPU:
		return formatCPU(stdout, d)
	case intent.CheckDisk:
		return formatDisk(stdout, d)
	case intent.CheckIP:
		return panel("Network Info", commandStyle.Bold(true).Render(strings.TrimSpace(stdout)), colorCyan), true
	case intent.ListProcesses:
		return formatProcesses(stdout, d)
	}
	return "", false
}

func formatRAM(stdout string, d command.Dialect) (string, bool) {
	if d == command.Windows {
		// FreePhysicalMemory=123456
		// TotalVisibleMemorySize=234567
		data := make(map[string]float64)
		for _, line := range nonEmptyLines(stdout) {
			k, v, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return "", false
			}
			data[strings.TrimSpace(k)] = n
		}
		freeMB := data["FreePhysicalMemory"] / 1024
		totalMB := data["TotalVisibleMemorySize"] / 1024
		if totalMB == 0 {
			return "", false
		}
		usedMB := totalMB - freeMB
		return renderTable("Memory Status", []string{"Metric", "Value"}, [][]string{
			{"Total Memory", fmt.Sprintf("%.2f GB", totalMB/1024)},
			{"Used Memory", fmt.Sprintf("%.2f GB", usedMB/1024)},
			{"Free Memory", fmt.Sprintf("%.2f GB", freeMB/1024)},
			{"Usage", fmt.Sprintf("%.1f%%", usedMB/totalMB*100)},
		}), true
	}

	//               total        used        free      shared  buff/cache   available
	// Mem:           15G        5.2G        8.1G        280M        2.1G        9.8G
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) < 2 {
		return "", false
	}
	parts := strings.Fields(lines[1])
	if len(parts) < 6 || parts[0] != "Mem:" {
		return "", false
	}
	available := parts[5]
	if len(parts) > 6 {
		available = parts[6]
	}
	return renderTable("Memory Status", []string{"Metric", "Value"}, [][]string{
		{"Total", parts[1]},
		{"Used", parts[2]},
		{"Free", parts[3]},
		{"Available", available},
	}), true
}

func formatCPU(stdout string, d command.Dialect) (string, bool) {
	if d != command.Windows {
		return panel("CPU Status", strings.TrimSpace(stdout), colorPurple), true
	}

	// LoadPercentage
	// 14
	for _, field := range strings.Fields(stdout) {
		if isDigits(field) {
			return panel("CPU Usage", successStyle.Render(field+"%"), colorPurple), true
		}
	}
	return "", false
}

func formatDisk(stdout string, d command.Dialect) (string, bool) {
	var rows [][]string
	lines := strings.Split(strings.TrimSpace(stdout), "\n")

	if d == command.Windows {
		// Caption  FreeSpace     Size
		// C:       12345         23456
		for _, line := range lines {
			if strings.Contains(line, "Caption") || strings.TrimSpace(line) == "" {
				continue
			}
			parts := strings.Fields(line)
			if len(parts) < 3 {
				continue
			}
			free, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return "", false
			}
			size, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return "", false
			}
			const gb = 1 << 30
			rows = append(rows, []string{
				parts[0],
				fmt.Sprintf("%.2f GB", size/gb),
				fmt.Sprintf("%.2f GB", free/gb),
			})
		}
	} else {
		// Filesystem      Size  Used Avail Use% Mounted on
		for _, line := range lines[1:] {
			parts := strings.Fields(line)
			if len(parts) >= 6 {
				rows = append(rows, []string{parts[0], parts[1], parts[3]})
			}
		}
	}

	if len(rows) == 0 {
		return "", false
	}
	return renderTable("Disk Usage", []string{"Drive/Mount", "Size", "Free"}, rows), true
}

func formatProcesses(stdout string, d command.Dialect) (string, bool) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	limit := linuxProcessRows
	header := "Output (Top 15)"
	if d == command.Windows {
		// Image names contain spaces, so rows are shown whole.
		if len(lines) <= 3 {
			return "", false
		}
		limit = windowsProcessRows
		header = "Process Output (Top 15)"
	}
	if len(lines) > limit {
		lines = lines[:limit]
	}

	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = []string{strings.TrimRight(line, "\r")}
	}
	return renderTable("Top Processes", []string{header}, rows), true
}

func renderTable(title string, headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(commentStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case len(headers) == 1:
				return cellStyle
			case col == 0:
				return keyStyle
			}
			return valueStyle
		})
	return titleStyle.Render(title) + "\n" + t.Render()
}

func panel(title, body string, border lipgloss.Color) string {
	return titleStyle.Render(title) + "\n" + panelStyle.BorderForeground(border).Render(body)
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
