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
	"strconv"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/common-nighthawk/go-figure"
	"golang.org/x/term"

	"github.com/Perritu/Router/metrics"
	"github.com/Perritu/Router/router"
)

const environmentProduction = "production"

// colorWriter downsamples ANSI colors to what w supports. Production output
// is always plain.
func (a *App) colorWriter(w io.Writer) *colorprofile.Writer {
	cpw := colorprofile.NewWriter(w, os.Environ())
	if a.settings.Service.Environment == environmentProduction {
		cpw.Profile = colorprofile.NoTTY
	}
	return cpw
}

// PrintBanner writes the service name as ASCII art followed by the listen
// address, the observability state and, outside production, the route table.
func (a *App) PrintBanner(w io.Writer, addr string) {
	if w == nil || w == io.Discard {
		return
	}
	cw := a.colorWriter(w)

	palette := []string{"12", "14", "10", "11"}
	if a.settings.Service.Environment == environmentProduction {
		palette = []string{"10", "11"}
	}

	var art strings.Builder
	for _, line := range figure.NewFigure(a.settings.Service.Name, "", false).Slicify() {
		if strings.TrimSpace(line) == "" {
			art.WriteString("\n")
			continue
		}
		for i, ch := range line {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(palette[i%len(palette)])).Bold(true)
			art.WriteString(style.Render(string(ch)))
		}
		art.WriteString("\n")
	}

	category := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(16).PaddingLeft(2)
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	disabled := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	bracket := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	if strings.HasPrefix(addr, ":") || strings.HasPrefix(addr, "[::]") {
		addr = "0.0.0.0" + addr[strings.LastIndex(addr, ":"):]
	}
	base := "http://" + addr

	var out strings.Builder
	line := func(name, v string) {
		out.WriteString(label.Render(name) + "  " + v + "\n")
	}

	out.WriteString(category.Render("Service") + "\n")
	line("Version:", value.Foreground(lipgloss.Color("14")).Render(a.settings.Service.Version))
	line("Environment:", value.Foreground(lipgloss.Color("11")).Render(a.settings.Service.Environment))
	line("Address:", value.Foreground(lipgloss.Color("10")).Render(base))

	out.WriteString("\n" + category.Render("Routing") + "\n")
	line("Routes:", value.Render(strconv.Itoa(len(a.routes))))
	line("Criteria prefix:", value.Render(orDash(a.settings.Router.CriteriaPrefix)))
	line("Handler prefix:", value.Render(orDash(a.settings.Router.HandlerPrefix)))
	line("Default mode:", value.Render(a.router.DefaultMode().String()))

	out.WriteString("\n" + category.Render("Observability") + "\n")
	if a.metrics != nil {
		target := bracket.Render(fmt.Sprintf("[%s]", a.metrics.Provider()))
		if a.metrics.Provider() == metrics.PrometheusProvider {
			line("Metrics:", value.Foreground(lipgloss.Color("13")).Render(base+a.settings.Metrics.Path)+"  "+target)
		} else {
			line("Metrics:", value.Foreground(lipgloss.Color("13")).Render("Enabled")+"  "+target)
		}
	} else {
		line("Metrics:", disabled.Render("Disabled"))
	}
	if a.tracing != nil {
		line("Tracing:", value.Foreground(lipgloss.Color("12")).Render("Enabled")+"  "+bracket.Render(fmt.Sprintf("[%s]", a.tracing.Provider())))
	} else {
		line("Tracing:", disabled.Render("Disabled"))
	}

	_, _ = fmt.Fprintln(cw)
	_, _ = fmt.Fprint(cw, art.String())
	_, _ = fmt.Fprintln(cw)
	_, _ = fmt.Fprint(cw, out.String())

	if a.settings.Service.Environment != environmentProduction && len(a.routes) > 0 {
		_, _ = fmt.Fprintln(cw)
		a.renderRoutes(cw, w, 80)
	}
	_, _ = fmt.Fprintln(cw)
}

// PrintRoutes writes the route table in evaluation order.
//
//	╭────────┬──────────────────┬───────────┬─────────────────┬───────────╮
//	│ Method │ Criteria         │ Mode      │ Handler         │ Terminate │
//	├────────┼──────────────────┼───────────┼─────────────────┼───────────┤
//	│ GET    │ ^/users/([0-9]+) │ regex     │ Users@show      │ yes       │
//	│ ANY    │ /admin           │ mount     │ App\Admin\*     │ yes       │
//	╰────────┴──────────────────┴───────────┴─────────────────┴───────────╯
func (a *App) PrintRoutes(w io.Writer) {
	if len(a.routes) == 0 {
		_, _ = fmt.Fprintln(w, "No routes configured")
		return
	}
	a.renderRoutes(a.colorWriter(w), w, 120)
}

// renderRoutes writes the table to w, sizing it from the terminal behind raw
// when there is one.
func (a *App) renderRoutes(w, raw io.Writer, width int) {
	verbColors := map[string]string{
		"GET": "10", "POST": "12", "PUT": "11", "DELETE": "9",
		"PATCH": "13", "HEAD": "14", "OPTIONS": "7", "ANY": "208",
	}
	colors := a.settings.Service.Environment != environmentProduction

	rows := make([][]string, 0, len(a.routes))
	minWidth := 2 + 4 + 10
	widths := []int{len("Method"), len("Criteria"), len("Mode"), len("Handler"), len("Terminate")}
	for _, rt := range a.routes {
		cells := routeCells(rt, a.router.DefaultMode().String())
		for i, c := range cells {
			widths[i] = max(widths[i], len(c))
		}
		if colors {
			verb := cells[0]
			if first, _, ok := strings.Cut(verb, "|"); ok {
				verb = first
			}
			if c, ok := verbColors[verb]; ok {
				cells[0] = lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Bold(true).Render(cells[0])
			}
		}
		rows = append(rows, cells)
	}
	for _, n := range widths {
		minWidth += n
	}

	tableWidth := max(minWidth, width)
	if f, ok := raw.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			tableWidth = min(tableWidth, tw)
		}
	}
	tableWidth = max(60, tableWidth)

	border := lipgloss.NewStyle()
	if colors {
		border = border.Foreground(lipgloss.Color("240"))
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow && colors {
				s = s.Bold(true).Foreground(lipgloss.Color("230"))
			}
			return s
		}).
		Headers("Method", "Criteria", "Mode", "Handler", "Terminate").
		Rows(rows...).
		Width(tableWidth)

	_, _ = fmt.Fprintln(w, t.Render())
}

func routeCells(rt router.Route, defaultMode string) []string {
	methods := rt.Methods
	if methods == 0 {
		methods = router.MethodAny
	}
	terminate := "no"
	if rt.Terminate {
		terminate = "yes"
	}
	if rt.Namespace != "" {
		return []string{methods.String(), rt.Pattern, "mount", strings.TrimRight(rt.Namespace, `\`) + `\*`, terminate}
	}
	mode := defaultMode
	if rt.Mode != 0 {
		mode = rt.Mode.String()
	}
	return []string{methods.String(), rt.Pattern, mode, rt.Handler.String(), terminate}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
