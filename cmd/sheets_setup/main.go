package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/2beens/liftmates/internal/config"
	"github.com/2beens/liftmates/internal/sheets"
)

// creates the spreadsheet tabs and header rows used by the service
func main() {
	fmt.Println("starting spreadsheet setup ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	if err := sheets.Setup(context.Background(), cfg.SpreadsheetID, cfg.SheetsCredentialsPath); err != nil {
		fmt.Printf("spreadsheet setup failed: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("\nspreadsheet setup completed")
}
