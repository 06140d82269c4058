package gridmap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/gridnav/pkg/util"
)

const bz2Suffix = ".bz2"

// ReadMap loads an octile map file. files ending in .bz2 are decompressed on the fly.
func ReadMap(filename string, kind Kind) (Grid, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(filename, bz2Suffix) {
		bz, err := bzip2.NewReader(f, nil)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrFormat, "cannot open bzip2 stream %s", filename)
		}
		defer bz.Close()
		r = bz
	}
	return ParseMap(r, kind)
}

// ParseMap reads the octile map format:
//
//	type octile
//	height H
//	width W
//	map
//	<H rows of W characters>
func ParseMap(r io.Reader, kind Kind) (Grid, error) {
	br := bufio.NewReader(r)
	lineNo := 0
	next := func() (string, error) {
		lineNo++
		line, err := util.ReadLine(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", util.WrapErrorf(err, util.ErrFormat, "line %d: unexpected end of file", lineNo)
			}
			return "", err
		}
		return line, nil
	}

	line, err := next()
	if err != nil {
		return nil, err
	}
	ff := util.Fields(line)
	if len(ff) != 2 || ff[0] != "type" || ff[1] != "octile" {
		return nil, util.WrapErrorf(nil, util.ErrFormat, "line %d: expected \"type octile\", got %q", lineNo, line)
	}

	height, err := readDimension(next, "height", &lineNo)
	if err != nil {
		return nil, err
	}
	width, err := readDimension(next, "width", &lineNo)
	if err != nil {
		return nil, err
	}

	line, err = next()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(line) != "map" {
		return nil, util.WrapErrorf(nil, util.ErrFormat, "line %d: expected \"map\", got %q", lineNo, line)
	}

	rows := make([]string, height)
	for y := 0; y < height; y++ {
		line, err = next()
		if err != nil {
			return nil, err
		}
		if len(line) != width {
			return nil, util.WrapErrorf(nil, util.ErrFormat, "line %d: row %d has %d cells, expected %d",
				lineNo, y, len(line), width)
		}
		rows[y] = line
	}

	g, err := BuildMapFromRows(kind, rows)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrFormat, "invalid map body")
	}
	return g, nil
}

func readDimension(next func() (string, error), key string, lineNo *int) (int, error) {
	line, err := next()
	if err != nil {
		return 0, err
	}
	ff := util.Fields(line)
	if len(ff) != 2 || ff[0] != key {
		return 0, util.WrapErrorf(nil, util.ErrFormat, "line %d: expected \"%s N\", got %q", *lineNo, key, line)
	}
	v, err := strconv.Atoi(ff[1])
	if err != nil || v <= 0 {
		return 0, util.WrapErrorf(err, util.ErrFormat, "line %d: invalid %s %q", *lineNo, key, ff[1])
	}
	return v, nil
}

// WriteMap writes g in the octile map format. costs above 9 are written as '9'.
func WriteMap(w io.Writer, g Grid) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "type octile\nheight %d\nwidth %d\nmap\n", g.Height(), g.Width())
	row := make([]byte, g.Width())
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			row[x] = charOf(g.GetLabel(g.ToPaddedID(x, y)))
		}
		bw.Write(row)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteMapFile writes g to filename, bzip2 compressed when the name ends in .bz2.
func WriteMapFile(filename string, g Grid) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if !strings.HasSuffix(filename, bz2Suffix) {
		return WriteMap(f, g)
	}

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}
	if err := WriteMap(bz, g); err != nil {
		bz.Close()
		return err
	}
	return bz.Close()
}
