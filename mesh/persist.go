package mesh

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// A mesh file holds one configuration per line: its path followed by its NumValues values,
// separated by whitespace. Lines starting with '#' are comments.
const commentPrefix = "#"

func header(name string) string {
	return fmt.Sprintf("%s pairmesh v%d %s\n", commentPrefix, PathVersion, name)
}

func writeRecord(w io.Writer, conf *Configuration) error {
	var sb strings.Builder
	sb.WriteString(conf.ID)
	for _, v := range conf.Values {
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteTo writes every filled configuration of the grid to w.
func (g *Grid) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	if _, err := io.WriteString(bw, header(g.cfg.Name)); err != nil {
		return cw.n, err
	}
	for conf := range g.Configurations() {
		if !conf.Filled {
			continue
		}
		if err := writeRecord(bw, conf); err != nil {
			return cw.n, err
		}
	}
	err := bw.Flush()
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// Save replaces the file at path with every filled configuration of the grid.
func (g *Grid) Save(ctx context.Context, path string) (err error) {
	_, span := trace.StartSpan(ctx, "mesh::Grid::Save")
	defer span.End()

	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "cannot create mesh file")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	if _, err := g.WriteTo(f); err != nil {
		return errors.Wrapf(err, "cannot write mesh file %q", path)
	}
	return nil
}

// appendRecords adds confs to the end of the file at path, creating it if needed.
func appendRecords(ctx context.Context, path string, confs []*Configuration) error {
	_, span := trace.StartSpan(ctx, "mesh::appendRecords")
	defer span.End()

	//nolint:gosec
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "cannot open database")
	}
	defer utils.UncheckedErrorFunc(f.Close)
	bw := bufio.NewWriter(f)
	for _, conf := range confs {
		if err := writeRecord(bw, conf); err != nil {
			return errors.Wrapf(err, "cannot append to database %q", path)
		}
	}
	return errors.Wrapf(bw.Flush(), "cannot append to database %q", path)
}

// LoadStats counts what happened to the lines of a loaded file.
type LoadStats struct {
	Lines    int
	Filled   int
	Comments int
	// Malformed lines have the wrong number of fields or a value that is not a number.
	Malformed int
	// Unresolved lines name a path the grid cannot reach.
	Unresolved int
}

// LoadFrom fills the grid from records read from r. Malformed lines are skipped. Paths that
// cannot be resolved are skipped too and reported together once r is exhausted.
func (g *Grid) LoadFrom(r io.Reader) (LoadStats, error) {
	var stats LoadStats
	var unresolved error
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		stats.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			stats.Comments++
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != NumValues+1 {
			stats.Malformed++
			continue
		}
		values, ok := parseValues(fields[1:])
		if !ok {
			stats.Malformed++
			continue
		}
		if err := g.Fill(fields[0], values); err != nil {
			stats.Unresolved++
			unresolved = multierr.Append(unresolved, errors.Wrapf(err, "line %d", stats.Lines))
			continue
		}
		stats.Filled++
	}
	g.discover()
	if err := scanner.Err(); err != nil {
		return stats, multierr.Combine(errors.Wrap(err, "cannot read mesh file"), unresolved)
	}
	return stats, unresolved
}

func parseValues(fields []string) (Values, bool) {
	var values Values
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Values{}, false
		}
		values[i] = v
	}
	return values, true
}

// Load fills the grid from the file at path. See LoadFrom.
func (g *Grid) Load(ctx context.Context, path string) (LoadStats, error) {
	_, span := trace.StartSpan(ctx, "mesh::Grid::Load")
	defer span.End()

	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return LoadStats{}, errors.Wrap(err, "cannot open mesh file")
	}
	defer utils.UncheckedErrorFunc(f.Close)
	stats, err := g.LoadFrom(f)
	g.logger.Infow("loaded mesh file", "path", path, "filled", stats.Filled,
		"malformed", stats.Malformed, "unresolved", stats.Unresolved)
	return stats, err
}
