// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
	"golang.org/x/term"
)

// colorWriter downsamples ANSI colors to what w supports. Production and
// non-terminal outputs get plain text.
func (a *App) colorWriter(w io.Writer) *colorprofile.Writer {
	cpw := colorprofile.NewWriter(w, os.Environ())
	if a.settings.Server.Environment == EnvironmentProduction || !isTerminal(w) {
		cpw.Profile = colorprofile.NoTTY
	}
	return cpw
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printBanner writes the service name as ASCII art followed by the access
// log configuration.
func (a *App) printBanner(out io.Writer, addr string) {
	w := a.colorWriter(out)
	s := a.settings

	gradient := []string{"10", "11"}
	if s.Server.Environment == EnvironmentDevelopment {
		gradient = []string{"12", "14", "10", "11"}
	}

	var art strings.Builder
	for _, line := range figure.NewFigure(s.Logging.ServiceName, "", false).Slicify() {
		if strings.TrimSpace(line) == "" {
			art.WriteString("\n")
			continue
		}
		for i, char := range line {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradient[i%len(gradient)])).Bold(true)
			art.WriteString(style.Render(string(char)))
		}
		art.WriteString("\n")
	}

	category := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(14).PaddingLeft(2)
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	if strings.HasPrefix(addr, ":") || strings.HasPrefix(addr, "[::]") {
		addr = "0.0.0.0" + addr[strings.LastIndex(addr, ":"):]
	}
	row := func(b *strings.Builder, name, v, color string) {
		b.WriteString(label.Render(name+":") + "  " + value.Foreground(lipgloss.Color(color)).Render(v) + "\n")
	}

	var info strings.Builder
	info.WriteString(category.Render("Service") + "\n")
	row(&info, "Environment", s.Server.Environment, "11")
	row(&info, "Address", "http://"+addr, "10")

	info.WriteString("\n" + category.Render("Access log") + "\n")
	sinkDesc := s.Sink.Type
	if s.Sink.Type == "file" {
		sinkDesc += " " + s.Sink.Path
	}
	if s.Sink.Async {
		sinkDesc += fmt.Sprintf(" (async, queue %d)", s.Sink.QueueSize)
	}
	row(&info, "Sink", sinkDesc, "14")
	duration := s.AccessLog.DurationUnit
	if s.AccessLog.DisableDuration {
		duration = "off"
	}
	row(&info, "Duration", duration, "14")
	row(&info, "Timezone", s.AccessLog.Timezone, "14")
	if n := len(s.AccessLog.TrustedProxies); n > 0 {
		row(&info, "Proxies", fmt.Sprintf("%d trusted, %d hops", n, s.AccessLog.ProxyMaxHops), "14")
	}

	if a.recorder != nil {
		metricsDesc := string(a.recorder.Provider())
		if _, err := a.recorder.Handler(); err == nil {
			metricsDesc = "http://" + addr + a.recorder.Path() + "  " + dim.Render("["+metricsDesc+"]")
		}
		row(&info, "Metrics", metricsDesc, "13")
	} else {
		info.WriteString(label.Render("Metrics:") + "  " + dim.Render("Disabled") + "\n")
	}
	if a.tracer != nil {
		row(&info, "Tracing", string(a.tracer.Provider()), "13")
	} else {
		info.WriteString(label.Render("Tracing:") + "  " + dim.Render("Disabled") + "\n")
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprint(w, art.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprint(w, info.String())
	_, _ = fmt.Fprintln(w)
}
