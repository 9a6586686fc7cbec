// Command geodist computes distances between points from the command
// line and builds pairwise distance matrix snapshots.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/hupe1980/geodist"
	"github.com/hupe1980/geodist/blobstore"
	"github.com/hupe1980/geodist/matrix"
	"github.com/hupe1980/geodist/resource"
)

type cli struct {
	Verbose bool `name:"verbose" short:"v" help:"enable debug logging"`

	Dist     distCmd     `cmd:"" help:"compute a single distance"`
	Formulas formulasCmd `cmd:"" help:"list supported formulas"`
	Matrix   matrixCmd   `cmd:"" help:"compute a pairwise distance matrix from a CSV of points"`
}

type distCmd struct {
	Formula string    `arg:"" help:"formula name, e.g. haversine or vincenty"`
	Args    []float64 `arg:"" optional:"" help:"formula arguments; points as lat lng pairs"`
}

type formulasCmd struct{}

type matrixCmd struct {
	Formula string `arg:"" help:"formula name, e.g. haversine or vincenty"`
	Input   string `arg:"" type:"existingfile" help:"CSV file with lat,lng per row"`

	Out         string `name:"out" default:"snapshots" help:"local snapshot directory"`
	Name        string `name:"name" default:"matrix.snap" help:"snapshot name within the store"`
	Compression string `name:"compression" default:"zstd" enum:"none,lz4,zstd" help:"snapshot payload compression"`
	Workers     int    `name:"workers" default:"0" help:"max concurrent rows, 0 = number of CPUs"`
}

func main() {
	var c cli

	kctx := kong.Parse(&c,
		kong.Name("geodist"),
		kong.Description("multi-metric distance calculator"),
		kong.HelpOptions{NoAppSummary: false, Compact: true, FlagsLast: true},
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}

	engine := geodist.New(geodist.WithLogLevel(level))

	if err := kctx.Run(engine); err != nil {
		var unknownErr *geodist.UnknownFormulaError
		if errors.As(err, &unknownErr) {
			// Unknown formulas are diagnosed, not fatal.
			fmt.Fprintln(os.Stderr, unknownErr.Error())
			return
		}

		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (c *distCmd) Run(engine *geodist.Engine) error {
	result, err := engine.Compute(context.Background(), c.Formula, c.Args...)
	if err != nil {
		return err
	}

	fmt.Println(strconv.FormatFloat(result, 'f', -1, 64))

	return nil
}

func (c *formulasCmd) Run(_ *geodist.Engine) error {
	for _, name := range geodist.Formulas() {
		fmt.Println(name)
	}

	return nil
}

func (c *matrixCmd) Run(_ *geodist.Engine) error {
	ctx := context.Background()

	formula, err := geodist.ParseFormula(c.Formula)
	if err != nil {
		return err
	}

	points, err := readPoints(c.Input)
	if err != nil {
		return err
	}

	var computeOpts []matrix.ComputeOption
	if c.Workers > 0 {
		rc := resource.NewController(resource.Config{MaxWorkers: int64(c.Workers)})
		computeOpts = append(computeOpts, matrix.WithWorkers(c.Workers), matrix.WithController(rc))
	}

	m, err := matrix.Compute(ctx, points, formula, computeOpts...)
	if err != nil {
		return err
	}

	store, err := blobstore.NewLocalStore(c.Out)
	if err != nil {
		return err
	}

	compression := map[string]matrix.CompressionType{
		"none": matrix.CompressionNone,
		"lz4":  matrix.CompressionLZ4,
		"zstd": matrix.CompressionZSTD,
	}[c.Compression]

	if err := matrix.Write(ctx, store, c.Name, m, matrix.WithCompression(compression)); err != nil {
		return err
	}

	fmt.Printf("wrote %s snapshot of %d points to %s/%s\n", formula, m.Len(), c.Out, c.Name)

	return nil
}

// readPoints parses a CSV of lat,lng rows. A header row is skipped when
// its first field is not numeric.
func readPoints(path string) ([]geodist.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	var points []geodist.Point

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(record) < 2 {
			return nil, fmt.Errorf("row %d: expected lat,lng, got %d fields", len(points)+1, len(record))
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			if len(points) == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("row %d: bad latitude %q", len(points)+1, record[0])
		}

		lng, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad longitude %q", len(points)+1, record[1])
		}

		points = append(points, geodist.Point{Lat: lat, Lng: lng})
	}

	if len(points) == 0 {
		return nil, errors.New("no points in input")
	}

	return points, nil
}
