package cmd

import (
	"github.com/etnz/revenue"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the application.
func Completion() *complete.Command {
	format := predict.Set{formatTerminal, formatMarkdown, formatHTML}
	sectors := complete.PredictFunc(predictSectors)
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config":   predict.Files("*.toml"),
			"env":      predict.Files("*"),
			"registry": predict.Files("*.csv"),
			"workbook": predict.Files("*.xlsx"),
			"v":        predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"sectors":  {Flags: map[string]complete.Predictor{"format": format}},
			"overview": {Flags: map[string]complete.Predictor{"format": format, "s": sectors}},
			"stock": {
				Flags: map[string]complete.Predictor{"format": format, "s": sectors},
				Args:  complete.PredictFunc(predictTickers),
			},
			"browse":   {Flags: map[string]complete.Predictor{"format": format}},
			"refresh":  {Flags: map[string]complete.Predictor{"years": predict.Something}},
			"schedule": {Flags: map[string]complete.Predictor{"cron": predict.Something, "now": predict.Nothing}},
		},
	}
}

// completionRegistry reads the registry of the configuration, nil if it cannot.
func completionRegistry() *revenue.Registry {
	path := *registryFile
	if path == "" {
		config, err := LoadConfig(*configFile, *envFile)
		if err != nil {
			return nil
		}
		path = config.Registry
	}
	reg, err := revenue.LoadRegistry(path)
	if err != nil {
		return nil
	}
	return reg
}

func predictSectors(prefix string) []string {
	reg := completionRegistry()
	if reg == nil {
		return nil
	}
	return reg.Sectors()
}

func predictTickers(prefix string) []string {
	reg := completionRegistry()
	if reg == nil {
		return nil
	}
	var tickers []string
	for _, e := range reg.Entries() {
		tickers = append(tickers, e.Ticker)
	}
	return tickers
}
