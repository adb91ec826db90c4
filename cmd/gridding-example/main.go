package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ugcs/go-gridding"
)

const shades = " .:-=+*#%@"

func readSamples(r io.Reader) ([]gridding.Sample, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true
	var samples []gridding.Sample
	for {
		record, err := reader.Read()
		switch {
		case errors.Is(err, io.EOF):
			return samples, nil
		case err != nil:
			return nil, err
		}
		var fields [3]float64
		for i, field := range record {
			if field == "" {
				fields[i] = math.NaN()
				continue
			}
			fields[i], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, err
			}
		}
		samples = append(samples, gridding.Sample{Lat: fields[0], Lon: fields[1], Value: fields[2]})
	}
}

func render(w io.Writer, result *gridding.Result) {
	raster := result.Raster
	for row := raster.Height() - 1; row >= 0; row-- {
		var sb strings.Builder
		for c := range raster.Width() {
			value := raster.At(c, row)
			switch {
			case math.IsNaN(value):
				sb.WriteByte(' ')
			case result.Max == result.Min:
				sb.WriteByte(shades[len(shades)/2])
			default:
				i := int((value - result.Min) / (result.Max - result.Min) * float64(len(shades)-1))
				sb.WriteByte(shades[min(max(i, 0), len(shades)-1)])
			}
		}
		fmt.Fprintln(w, sb.String())
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML gridding config")
	cellSize := flag.Float64("cell-size", 1, "cell size in meters")
	blankingDistance := flag.Float64("blanking-distance", 5, "blanking distance in meters")
	verbose := flag.Bool("verbose", false, "log progress")
	flag.Parse()

	if flag.NArg() != 1 {
		return errors.New("syntax: gridding-example [flags] samples.csv")
	}

	config := &gridding.Config{
		Parameters: gridding.Parameters{
			CellSize:         *cellSize,
			BlankingDistance: *blankingDistance,
		},
	}
	if *configPath != "" {
		var err error
		if config, err = gridding.LoadConfig(*configPath); err != nil {
			return err
		}
	}

	file, err := os.Open(flag.Arg(0))
	if err != nil {
		return err
	}
	defer file.Close()
	samples, err := readSamples(file)
	if err != nil {
		return err
	}

	logLevel := log.WarnLevel
	if *verbose {
		logLevel = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           logLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine := gridding.NewEngine(append(config.EngineOptions(), gridding.WithLogger(logger))...)
	sources := []gridding.Source{gridding.StaticSource{"value": samples}}
	result, err := engine.Run(ctx, sources, "value", config.GriddingParameters())
	switch {
	case err != nil:
		return err
	case result == nil:
		return errors.New("no result")
	}

	fmt.Printf("%dx%d cells, min %g, max %g, %d iterations at tension %g\n",
		result.Raster.Width(), result.Raster.Height(), result.Min, result.Max, result.Iterations, result.Tension)
	render(os.Stdout, result)

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
