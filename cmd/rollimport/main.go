// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command rollimport loads official electoral roll records from a CSV file.
//
//	rollimport -f roll.csv [-map full_name=Name,epic_number=EPIC] [-batch 500] [-validate]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/danielhkuo/voteguard/db"
	"github.com/danielhkuo/voteguard/importer"
	"github.com/danielhkuo/voteguard/logger"
	"github.com/danielhkuo/voteguard/models"
	"github.com/danielhkuo/voteguard/store"
)

func main() {
	_ = godotenv.Load()

	var (
		file         = flag.String("f", "", "CSV file to import")
		databaseURL  = flag.String("d", os.Getenv("DATABASE_URL"), "Database URL")
		databaseType = flag.String("t", envOr("DATABASE_TYPE", db.TypeSQLite), "Database type (sqlite or postgres)")
		mapping      = flag.String("map", "", "Column mapping, field=Header pairs separated by commas")
		batch        = flag.Int("batch", importer.DefaultBatchSize, "Rows per insert transaction")
		validateOnly = flag.Bool("validate", false, "Validate rows without writing")
		logLevel     = flag.String("log-level", envOr("LOG_LEVEL", "warn"), "Log level")
	)
	flag.Parse()

	if err := logger.Init(*logLevel, "console"); err != nil {
		color.Red("Error initializing logger: %v", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *file == "" || *databaseURL == "" {
		color.Red("Both -f and -d (or DATABASE_URL) are required")
		flag.Usage()
		os.Exit(2)
	}

	m, err := importer.ParseMapping(*mapping)
	if err != nil {
		color.Red("Invalid mapping: %v", err)
		os.Exit(2)
	}

	f, err := os.Open(*file)
	if err != nil {
		color.Red("Error opening file: %v", err)
		os.Exit(1)
	}
	defer f.Close()
	if info, err := f.Stat(); err == nil {
		color.Cyan("Importing %s (%s)", *file, humanize.Bytes(uint64(info.Size())))
	}

	conn, err := db.Open(*databaseType, *databaseURL)
	if err != nil {
		color.Red("Database error: %v", err)
		os.Exit(1)
	}
	defer conn.Close()
	if err := db.CreateSchema(conn); err != nil {
		color.Red("Schema error: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	im := importer.New(store.New(conn), importer.Config{
		Mapping:      m,
		BatchSize:    *batch,
		ValidateOnly: *validateOnly,
	})
	summary, err := im.Import(ctx, f)
	printSummary(summary, *validateOnly)
	if err != nil {
		color.Red("Import failed: %v", err)
		os.Exit(1)
	}
	if len(summary.Errors) > 0 {
		os.Exit(3)
	}
}

func printSummary(s models.ImportSummary, validateOnly bool) {
	if validateOnly {
		color.Yellow("\nValidation only; nothing was written")
	} else {
		color.Yellow("\nImport Summary")
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Rows", "Inserted", "Skipped", "Invalid"})
	table.Append([]string{
		humanize.Comma(int64(s.Rows)),
		humanize.Comma(int64(s.Inserted)),
		humanize.Comma(int64(s.Skipped)),
		strconv.Itoa(len(s.Errors)),
	})
	table.Render()

	if len(s.Errors) == 0 {
		color.Green("All rows valid")
		return
	}
	color.Red("Rejected rows:")
	for _, e := range s.Errors {
		fmt.Println("  " + e)
	}
	if len(s.Errors) == importer.MaxReportedErrors {
		fmt.Printf("  (first %d shown)\n", importer.MaxReportedErrors)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
