package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/evacsys/evacroute/fusion"
)

// Sample is one tick of raw collaborator inputs: gas/IMU register values and
// the occupant's current area as reported by the position reader.
type Sample struct {
	Area   int32
	Env    fusion.RawEnvironmentalSample
	Motion fusion.RawMotionSample
}

// SampleSource supplies raw samples to the pipeline. Hardware acquisition
// lives behind this interface; the core never touches a bus.
type SampleSource interface {
	Next() (Sample, error) // io.EOF when drained
}

// ReplaySource reads samples from a text file, one per line:
//
//	area tvoc eco2 gas_adc ax ay az gx gy gz
//
// Blank lines and #-comments are skipped.
type ReplaySource struct {
	f       *os.File
	scanner *bufio.Scanner
	lineNo  int
}

func OpenReplay(path string) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	return &ReplaySource{f: f, scanner: bufio.NewScanner(f)}, nil
}

func (r *ReplaySource) Next() (Sample, error) {
	for r.scanner.Scan() {
		r.lineNo++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s, err := parseSampleLine(line)
		if err != nil {
			return Sample{}, fmt.Errorf("replay line %d: %w", r.lineNo, err)
		}
		return s, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Sample{}, err
	}
	return Sample{}, io.EOF
}

func (r *ReplaySource) Close() error {
	return r.f.Close()
}

func parseSampleLine(line string) (Sample, error) {
	fields := strings.Fields(line)
	if len(fields) != 10 {
		return Sample{}, fmt.Errorf("need 10 fields, got %d", len(fields))
	}
	ints := make([]int64, 10)
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			return Sample{}, err
		}
		ints[i] = v
	}
	return Sample{
		Area: int32(ints[0]),
		Env: fusion.RawEnvironmentalSample{
			TVOC:   uint16(ints[1]),
			ECO2:   uint16(ints[2]),
			GasADC: int16(ints[3]),
		},
		Motion: fusion.RawMotionSample{
			AccelX: int16(ints[4]),
			AccelY: int16(ints[5]),
			AccelZ: int16(ints[6]),
			GyroX:  int16(ints[7]),
			GyroY:  int16(ints[8]),
			GyroZ:  int16(ints[9]),
		},
	}, nil
}
