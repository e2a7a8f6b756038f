// Command predict runs one prediction from the command line using the same
// dataset, model and validation as the web form.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"goldpredict/app"
	"goldpredict/apperr"
	"goldpredict/config"
	"goldpredict/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	open := flag.Float64("open", 0, "open price")
	high := flag.Float64("high", 0, "high price")
	low := flag.Float64("low", 0, "low price")
	history := flag.Bool("history", false, "print the preview rows before predicting")
	flag.Parse()

	os.Exit(run(*configPath, app.PriceInput{Open: *open, High: *high, Low: *low}, *history))
}

func run(configPath string, input app.PriceInput, history bool) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg.Log.File = ""
	cfg.Log.Level = "warn"
	logger, closeLog, err := logging.NewWithWriter(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeLog()

	startup := app.Initialize(cfg, app.WithLogger(logger))
	if startup.Halted() {
		fmt.Fprintf(os.Stderr, "%s: %s\n", apperr.KindOf(startup.Err), apperr.Message(startup.Err))
		return 1
	}
	a := startup.App

	if history {
		preview := a.Preview()
		fmt.Println(strings.Join(preview.Columns, "\t"))
		for _, row := range preview.Rows {
			fmt.Println(strings.Join(row, "\t"))
		}
	}

	prediction, err := a.Predict(context.Background(), input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", apperr.KindOf(err), apperr.Message(err))
		return 1
	}
	fmt.Println(prediction.Display)
	return 0
}
