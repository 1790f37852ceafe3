/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package hackload

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/charts"
	"github.com/pkg/errors"
)

type ChartLine struct {
	XValues []float64
	YValues []float64
}

var percsColumns = []string{"rps", "p50", "p95", "p99"}

// parsePercsData reads percentiles log, every series is keyed by tick second
func parsePercsData(path string) (map[string]*ChartLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	reader := csv.NewReader(f)
	percs := make(map[string]*ChartLine, len(percsColumns))
	for _, c := range percsColumns {
		percs[c] = &ChartLine{}
	}
	// skip csv header
	_, _ = reader.Read()

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != len(PercsCsvHeader) {
			return nil, errors.New("malformed csv")
		}
		tick, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, err
		}
		for i, c := range percsColumns {
			v, err := strconv.ParseFloat(record[i+2], 64)
			if err != nil {
				return nil, err
			}
			percs[c].XValues = append(percs[c].XValues, tick)
			percs[c].YValues = append(percs[c].YValues, v)
		}
	}
	if len(percs["rps"].XValues) == 0 {
		return nil, errors.New("empty csv, nothing to plot")
	}
	return percs, nil
}

func PercsChart(path string, title string) (*charts.Line, error) {
	d, err := parsePercsData(path)
	if err != nil {
		return nil, err
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.DataZoomOpts{},
		charts.TitleOpts{Title: title},
		charts.XAxisOpts{Name: "Time (sec)"},
		charts.YAxisOpts{Name: "Response (ms)"},
	)
	line.AddXAxis(d["rps"].XValues)
	for _, c := range percsColumns {
		line.AddYAxis(c, d[c].YValues, defaultMaxLabel(c)...)
	}
	return line, nil
}

func RenderEChart(data *charts.Line, name string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return data.Render(f)
}

// draws max label for every line
func defaultMaxLabel(metric string) []charts.SeriesOptser {
	return []charts.SeriesOptser{
		charts.MPNameTypeItem{Name: "max " + metric, Type: "max"},
		charts.MPStyleOpts{Label: charts.LabelTextOpts{Show: true}},
	}
}
