package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// evalRecord is one row of optimize_log.csv. Parameter columns follow the
// ParamVector spec order.
type evalRecord struct {
	Eval     int     `csv:"eval"`
	Fitness  float64 `csv:"fitness"`
	Coverage float64 `csv:"coverage"`
	Sighted  float64 `csv:"sighted"`
	Targets  float64 `csv:"targets"`
	Faults   float64 `csv:"faults"`
	FuelLeft float64 `csv:"fuel_left"`
	Quality  float64 `csv:"quality"`
	Failed   int     `csv:"failed_seeds"`

	ArriveRadius    float64 `csv:"arrive_radius"`
	MaxVelocity     float64 `csv:"max_velocity"`
	MaxAcceleration float64 `csv:"max_acceleration"`
	Count           int     `csv:"count"`
}

func newEvalRecord(n int, ev Evaluation, values []float64) evalRecord {
	return evalRecord{
		Eval:            n,
		Fitness:         ev.Fitness,
		Coverage:        ev.Coverage,
		Sighted:         ev.Sighted,
		Targets:         ev.Targets,
		Faults:          ev.Faults,
		FuelLeft:        ev.FuelLeft,
		Quality:         ev.Quality,
		Failed:          ev.Failed,
		ArriveRadius:    values[paramArriveRadius],
		MaxVelocity:     values[paramMaxVelocity],
		MaxAcceleration: values[paramMaxAcceleration],
		Count:           roundCount(values[paramCount]),
	}
}

// evalLog appends evaluation rows to a CSV stream, writing the header once.
type evalLog struct {
	w             io.Writer
	closer        io.Closer
	headerWritten bool
}

func createEvalLog(path string) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating evaluation log: %w", err)
	}
	return &evalLog{w: f, closer: f}, nil
}

func (l *evalLog) write(rec evalRecord) error {
	rows := []evalRecord{rec}
	if !l.headerWritten {
		l.headerWritten = true
		return gocsv.Marshal(rows, l.w)
	}
	return gocsv.MarshalWithoutHeaders(rows, l.w)
}

// Close closes the underlying file, if any.
func (l *evalLog) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
