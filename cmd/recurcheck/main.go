// Command recurcheck evaluates a recurrence configuration against dates and
// iCalendar files.
//
//	recurcheck -config '{"start":"2024-01-01","weekdays":["mon","fri"]}' 2024-03-04 2024-03-05
//	recurcheck -config-file rule.json -ics team.ics -from 2024-01-01 -to 2024-06-30
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/emersion/go-ical"

	"github.com/cyp0633/daterecur/recurrence"
)

type envConfig struct {
	LogLevel       string `env:"RECURCHECK_LOG_LEVEL" envDefault:"info"`
	MaxOccurrences int    `env:"RECURCHECK_MAX_OCCURRENCES" envDefault:"100"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "recurcheck:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid RECURCHECK_LOG_LEVEL: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	fs := flag.NewFlagSet("recurcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configJSON := fs.String("config", "", "recurrence configuration as a JSON object")
	configFile := fs.String("config-file", "", "file holding the JSON configuration")
	icsPath := fs.String("ics", "", "iCalendar file whose events and to-dos are tested")
	from := fs.String("from", "", "with -ics, expand recurring events from this date (YYYY-MM-DD)")
	to := fs.String("to", "", "with -ics, expand recurring events up to this date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	raw, err := loadConfig(*configJSON, *configFile)
	if err != nil {
		return err
	}
	rule, err := recurrence.NewFromMap(raw, recurrence.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if fs.NArg() == 0 && *icsPath == "" {
		return errors.New("nothing to check: pass dates or -ics")
	}

	for _, arg := range fs.Args() {
		ok, err := rule.MatchesString(arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\t%t\n", arg, ok)
	}

	if *icsPath == "" {
		return nil
	}
	cal, err := readCalendar(*icsPath)
	if err != nil {
		return err
	}
	logger.Debug("calendar loaded", "path", *icsPath, "components", len(cal.Children))

	if *from == "" && *to == "" {
		return printMatches(stdout, rule, cal)
	}
	if *from == "" || *to == "" {
		return errors.New("-from and -to must be given together")
	}
	rangeStart, err := recurrence.ParseDate(*from)
	if err != nil {
		return fmt.Errorf("-from: %w", err)
	}
	rangeEnd, err := recurrence.ParseDate(*to)
	if err != nil {
		return fmt.Errorf("-to: %w", err)
	}
	// Include the whole last day.
	rangeEnd = rangeEnd.AddDate(0, 0, 1).Add(-time.Second)

	return printOccurrences(stdout, logger, rule, cal, rangeStart, rangeEnd, cfg.MaxOccurrences)
}

func loadConfig(inline, path string) (map[string]any, error) {
	var body string
	switch {
	case inline != "" && path != "":
		return nil, errors.New("use either -config or -config-file, not both")
	case inline != "":
		body = inline
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		body = string(data)
	default:
		return nil, errors.New("missing -config or -config-file")
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return raw, nil
}

func readCalendar(path string) (*ical.Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open calendar: %w", err)
	}
	defer f.Close()

	cal, err := ical.NewDecoder(f).Decode()
	if err != nil {
		return nil, fmt.Errorf("decode calendar %s: %w", path, err)
	}
	return cal, nil
}

func printMatches(w io.Writer, rule *recurrence.Rule, cal *ical.Calendar) error {
	matched, err := rule.FilterCalendar(cal)
	if err != nil {
		return err
	}
	for _, comp := range matched {
		d, err := recurrence.DateOfComponent(comp)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Format(time.DateOnly), propText(comp, ical.PropUID), propText(comp, ical.PropSummary))
	}
	return nil
}

func printOccurrences(w io.Writer, logger *slog.Logger, rule *recurrence.Rule, cal *ical.Calendar, rangeStart, rangeEnd time.Time, limit int) error {
	for _, comp := range cal.Children {
		if comp.Name != ical.CompEvent {
			continue
		}
		occurrences, err := rule.MatchingOccurrences(comp, rangeStart, rangeEnd, limit)
		if err != nil {
			logger.Warn("skipping event", "uid", propText(comp, ical.PropUID), "error", err)
			continue
		}
		for _, occ := range occurrences {
			fmt.Fprintf(w, "%s\t%s\t%s\n", occ.Format(time.DateOnly), propText(comp, ical.PropUID), propText(comp, ical.PropSummary))
		}
	}
	return nil
}

func propText(comp *ical.Component, name string) string {
	if prop := comp.Props.Get(name); prop != nil {
		if text, err := prop.Text(); err == nil {
			return text
		}
		return prop.Value
	}
	return ""
}
