package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/gridstats/gridstats/internal/analytics/field"
	"github.com/gridstats/gridstats/internal/config"
	"github.com/gridstats/gridstats/internal/ergast"
	"github.com/gridstats/gridstats/internal/logging"
	"github.com/gridstats/gridstats/internal/metrics"
	"github.com/gridstats/gridstats/internal/models"
	"github.com/gridstats/gridstats/internal/services"
	"github.com/gridstats/gridstats/internal/utils"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	season := flag.String("season", "current", "Season year or \"current\"")
	format := flag.String("format", "table", "Output format (table, csv, markdown)")
	projection := flag.Bool("projection", false, "Append the championship projection")
	constructors := flag.Bool("constructors", false, "Show constructor standings instead of drivers")

	flag.Parse()

	cfg := config.LoadOrDefault(*configPath)

	s, err := services.ParseSeason(*season)
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}

	logger := logging.Nop()
	upstream := ergast.New(cfg.Upstream, ergast.WithLogger(logger))
	data := services.NewDataService(logger, upstream, nil, cfg.Cache)
	an := services.NewAnalyticsService(logger, data, nil, services.AnalyticsOptions{
		Thresholds: services.ThresholdsFromConfig(cfg.Analytics),
	}, metrics.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), utils.AnalyticsRequestTimeout)
	defer cancel()

	var t table.Writer
	if *constructors {
		rows, err := data.ConstructorStandings(ctx, s)
		if err != nil {
			log.Fatalf("Error: failed to load constructor standings: %v\n", err)
		}
		t = constructorTable(rows)
	} else {
		rows, err := data.DriverStandings(ctx, s)
		if err != nil {
			log.Fatalf("Error: failed to load driver standings: %v\n", err)
		}
		t = driverTable(rows)
	}
	t.SetTitle(fmt.Sprintf("%s standings", s))
	render(t, *format)

	if *projection {
		out, err := an.Projection(ctx, s)
		if err != nil {
			log.Fatalf("Error: failed to project championship: %v\n", err)
		}
		fmt.Println()
		render(projectionTable(out), *format)
		if out.Notice != "" {
			fmt.Println(out.Notice)
		}
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	return t
}

func driverTable(rows []models.DriverStanding) table.Writer {
	t := newTable()
	t.AppendHeader(table.Row{"Pos", "Driver", "Team", "Points", "Wins"})
	for _, r := range rows {
		team := ""
		if len(r.Constructors) > 0 {
			team = r.Constructors[len(r.Constructors)-1].Name
		}
		t.AppendRow(table.Row{r.Position, r.Driver.FullName(), team, points(r.Points), r.Wins})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	return t
}

func constructorTable(rows []models.ConstructorStanding) table.Writer {
	t := newTable()
	t.AppendHeader(table.Row{"Pos", "Constructor", "Points", "Wins"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Position, r.Constructor.Name, points(r.Points), r.Wins})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	return t
}

func projectionTable(out field.ProjectionResult) table.Writer {
	t := newTable()
	t.SetTitle(fmt.Sprintf("Projection over %d remaining races", out.RemainingRaces))
	t.AppendHeader(table.Row{"Proj", "Driver", "Now", "Pessimistic", "Realistic", "Optimistic"})
	for _, r := range out.Rows {
		t.AppendRow(table.Row{
			r.ProjectedPosition,
			r.Name,
			fmt.Sprintf("%s (P%d)", points(r.CurrentPoints), r.CurrentPosition),
			points(r.Pessimistic),
			points(r.Realistic),
			points(r.Optimistic),
		})
	}
	return t
}

func points(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func render(t table.Writer, format string) {
	switch format {
	case "csv":
		t.RenderCSV()
	case "markdown":
		t.RenderMarkdown()
	default:
		t.Render()
	}
}
