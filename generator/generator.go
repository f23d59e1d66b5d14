// Package generator drives the sheet-to-decks pipeline: normalize the
// uploaded spreadsheet once, then produce one populated deck per forecast
// location.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/giangph58/Automated-ACB/deck"
	"github.com/giangph58/Automated-ACB/forecast"
)

// Options configures a Generator. Zero values use the production
// vocabulary, icon table, and sheet layout.
type Options struct {
	Sheet      string
	Vocabulary []string
	IconRules  []forecast.IconRule
	Normalize  forecast.Options

	// ContinueOnError keeps generating remaining locations after one
	// fails; the failures come back joined with the successful paths.
	// Default is to abort the batch on the first failing location.
	ContinueOnError bool

	Logger *slog.Logger
}

type Generator struct {
	opts   Options
	logger *slog.Logger
	titler cases.Caser
}

func New(opts Options) *Generator {
	if opts.Vocabulary == nil {
		opts.Vocabulary = forecast.DefaultVocabulary()
	}
	if opts.IconRules == nil {
		opts.IconRules = forecast.DefaultIconRules()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Generator{
		opts:   opts,
		logger: opts.Logger,
		titler: cases.Title(language.Vietnamese),
	}
}

// Generate reads the forecast sheet at inputPath and writes one deck per
// distinct location into outputDir, returning the written paths in the
// sheet's location order.
func (g *Generator) Generate(ctx context.Context, inputPath, outputDir, templatePath, iconDir string) ([]string, error) {
	grid, err := forecast.LoadSheet(inputPath, g.opts.Sheet)
	if err != nil {
		return nil, err
	}

	records, err := forecast.Normalize(grid, g.opts.Normalize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(inputPath), err)
	}

	order, blocks := forecast.Blocks(forecast.Format(records))
	province := Province(filepath.Base(inputPath))

	var (
		outputs []string
		failed  []error
	)
	for _, location := range order {
		if err := ctx.Err(); err != nil {
			return outputs, err
		}

		out, err := g.generateOne(location, blocks[location], province, outputDir, templatePath, iconDir)
		if err != nil {
			err = fmt.Errorf("%s: location %q: %w", filepath.Base(inputPath), location, err)
			if !g.opts.ContinueOnError {
				return outputs, err
			}
			g.logger.Error("deck generation failed", "location", location, "error", err)
			failed = append(failed, err)
			continue
		}
		outputs = append(outputs, out)
	}

	if len(failed) > 0 {
		return outputs, errors.Join(failed...)
	}
	return outputs, nil
}

func (g *Generator) generateOne(location string, block []forecast.Row, province, outputDir, templatePath, iconDir string) (string, error) {
	period, err := forecast.ExtractPeriod(block)
	if err != nil {
		return "", err
	}

	var f deck.Forecast
	f.District = DistrictName(location, g.titler)
	f.Period = period
	for i := 0; i < deck.TableRows && i < len(block); i++ {
		row := block[i]
		f.Rows[i] = deck.RowContent{
			DateWeather: row.DateWeather,
			TempRange:   row.TempRange,
		}
		if icon, ok := forecast.SelectIcon(row.DateWeather, g.opts.Vocabulary, g.opts.IconRules); ok {
			f.Rows[i].IconPath = filepath.Join(iconDir, icon)
		}
	}

	doc, err := deck.OpenFile(templatePath, deck.WithLogger(deck.NewSlogLogger(g.logger)))
	if err != nil {
		return "", err
	}
	if err := doc.PopulateForecast(f); err != nil {
		return "", err
	}

	outPath := filepath.Join(outputDir, fmt.Sprintf("ACB_%s_%s.pptx", province, f.District))
	if err := doc.SaveFile(outPath); err != nil {
		return "", err
	}

	g.logger.Info("deck saved", "location", location, "path", outPath)
	return outPath, nil
}

// DistrictName derives the display name for a location: everything before
// the first hyphen, trimmed and title-cased. Applying it to its own output
// changes nothing.
func DistrictName(location string, titler cases.Caser) string {
	name, _, _ := strings.Cut(location, "-")
	return titler.String(strings.TrimSpace(name))
}

// Province is the part of the input filename before its first underscore.
// Filenames without an underscore fall back to the bare name so output
// decks stay distinguishable.
func Province(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if p, _, found := strings.Cut(base, "_"); found {
		return p
	}
	return base
}
