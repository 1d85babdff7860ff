// Command preview runs the country transform over a saved reports API
// payload and prints the resulting table as CSV on stdout, with the window
// summary on stderr. It uses the actual domain package, so the output
// matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/preview \
//	  -payload data/sample/reports_mx_2023-09-01.json \
//	  -country MX \
//	  -as-of 2023-09-15
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/couchcryptid/covid-report-etl/internal/adapter/localfile"
	"github.com/couchcryptid/covid-report-etl/internal/adapter/reportsapi"
	"github.com/couchcryptid/covid-report-etl/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	payloadPath := flag.String("payload", "", "path to a saved reports API response (JSON)")
	country := flag.String("country", "MX", "country label for the output rows")
	asOf := flag.String("as-of", "", "reference day for the trailing window (YYYY-MM-DD, default now)")
	low := flag.Int("low", 100, "low risk threshold (new cases)")
	medium := flag.Int("medium", 500, "medium risk threshold (new cases)")
	flag.Parse()

	if *payloadPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -payload")
	}

	ref := time.Now().UTC()
	if *asOf != "" {
		day, err := time.Parse("2006-01-02", *asOf)
		if err != nil {
			return fmt.Errorf("parse -as-of: %w", err)
		}
		// End of day, so reports dated -as-of itself stay inside the window.
		ref = day.Add(24*time.Hour - time.Second)
	}

	body, err := os.ReadFile(*payloadPath)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	raw, err := reportsapi.ParseReportPayload(body)
	if err != nil {
		return err
	}

	table, summary, err := domain.ProcessCountry(raw, *country,
		domain.Thresholds{Low: *low, Medium: *medium}, ref)
	if err != nil {
		return err
	}

	if err := localfile.WriteCSV(os.Stdout, table); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	log.Printf("%s: %d of %d reports in window, total confirmed %d, new cases %d",
		summary.Country, table.NumRows(), raw.NumRows(), summary.TotalConfirmed, summary.TotalNewCases)
	return nil
}
