package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/napolitain/citysim/internal/models"
	"github.com/napolitain/citysim/internal/scenario"
	"github.com/napolitain/citysim/internal/sim"
)

func printReport(r *scenario.Report, city *sim.City, quiet bool) {
	titleColor := color.New(color.FgCyan, color.Bold)
	successColor := color.New(color.FgGreen, color.Bold)
	errorColor := color.New(color.FgRed)
	infoColor := color.New(color.FgYellow)

	if !quiet {
		titleColor.Printf("\n%s\n", r.Name)
		titleColor.Println(strings.Repeat("─", len(r.Name)))
		fmt.Println()

		printActions(r)
		printStages(r)
		printPrompts(r)
		printBuildings(city)
	}

	fmt.Println()
	infoColor.Println("Summary:")
	fmt.Printf("   • Clock:      %s\n", scenario.Elapsed(r.Clock))
	fmt.Printf("   • Budget:     %s\n", formatMoney(r.Budget))
	fmt.Printf("   • Revenue:    %s over %d passes\n", formatMoney(r.TotalRevenue), len(r.Revenue))
	fmt.Printf("   • Buildings:  %d\n", r.Buildings)
	fmt.Printf("   • Population: %d\n", r.Population)
	if len(r.Burned) > 0 {
		errorColor.Printf("   • Burned:     %d buildings\n", len(r.Burned))
	}

	failed := r.Failed()
	if len(failed) == 0 {
		successColor.Printf("\n✓ All %d actions applied\n", len(r.Actions))
		return
	}
	errorColor.Printf("\n✗ %d of %d actions failed\n", len(failed), len(r.Actions))
	for _, a := range failed {
		errorColor.Printf("   %s %s: %s\n", formatClock(a.At.Seconds()), a.Description, a.Error)
	}
}

func printActions(r *scenario.Report) {
	if len(r.Actions) == 0 {
		return
	}
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "At", "Action", "Result"}),
	)
	for i, a := range r.Actions {
		result := "ok"
		if !a.OK() {
			result = a.Error
		}
		_ = table.Append([]string{
			fmt.Sprintf("%d", i+1),
			formatClock(a.AppliedAt.Seconds()),
			a.Description,
			result,
		})
	}
	_ = table.Render()
	fmt.Println()
}

func printStages(r *scenario.Report) {
	if len(r.Stages) == 0 {
		return
	}
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Stage", "Activated"}),
	)
	for _, s := range r.Stages {
		_ = table.Append([]string{formatName(s.Stage), formatClock(s.ActivatedAt.Seconds())})
	}
	_ = table.Render()
	fmt.Println()
}

func printPrompts(r *scenario.Report) {
	if len(r.Prompts) == 0 {
		return
	}
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Prompt", "Cost", "Raised", "Status"}),
	)
	for _, p := range r.Prompts {
		_ = table.Append([]string{
			formatName(string(p.Kind)),
			formatMoney(p.Cost),
			formatClock(p.RaisedAt.Seconds()),
			string(p.Status),
		})
	}
	_ = table.Render()
	fmt.Println()
}

func printBuildings(city *sim.City) {
	buildings := city.Buildings()
	if len(buildings) == 0 {
		return
	}
	catalog := city.Config().Catalog
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Building", "Origin", "Size", "Residents", "State"}),
	)
	for _, b := range buildings {
		state := "intact"
		switch {
		case b.Burned:
			state = "burned"
		case b.Stabilized:
			state = "stabilized"
		}
		name := catalog[b.Type].Name
		if name == "" {
			name = string(b.Type)
		}
		_ = table.Append([]string{
			name,
			fmt.Sprintf("(%d,%d)", b.Origin.X, b.Origin.Y),
			fmt.Sprintf("%dx%d", b.Size, b.Size),
			fmt.Sprintf("%d/%d", b.Residents, b.Capacity()),
			state,
		})
	}
	_ = table.Render()
}

func printCatalog(cfg *models.Config) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Type", "Name", "Cost", "Rate", "Size", "Residents", "Flags"}),
	)
	for _, bt := range cfg.Catalog.Types() {
		spec := cfg.Catalog[bt]
		var flags []string
		if spec.Residential {
			flags = append(flags, "residential")
		}
		if spec.Special {
			flags = append(flags, "special")
		}
		if spec.RefundExempt {
			flags = append(flags, "no refund")
		}
		_ = table.Append([]string{
			string(bt),
			spec.Name,
			formatMoney(spec.Cost),
			fmt.Sprintf("%.0f", spec.Rate),
			fmt.Sprintf("%dx%d", spec.Footprint, spec.Footprint),
			fmt.Sprintf("%d", spec.Residents),
			strings.Join(flags, ", "),
		})
	}
	_ = table.Render()
}

func formatClock(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	words := strings.Fields(name)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
