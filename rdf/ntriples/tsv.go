package ntriples

import (
	"bufio"
	"io"
	"iter"
	"strings"
)

// TSVReader reads two-column tab-separated mapping tables.
//
// Empty lines and lines starting with '#' are skipped. Surrounding angle
// brackets on a column are stripped, so both "Q5" and "<http://...>" forms
// are accepted.
type TSVReader struct {
	sc   *bufio.Scanner
	line int
}

// NewTSVReader returns a TSVReader over r.
func NewTSVReader(r io.Reader) *TSVReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	return &TSVReader{sc: sc}
}

// Read returns the next row, or io.EOF at the end of input.
func (r *TSVReader) Read() (key, value string, err error) {
	for r.sc.Scan() {
		r.line++
		line := strings.TrimRight(r.sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || line[0] == '#' {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) != 2 {
			return "", "", &SyntaxError{Line: r.line, Msg: "expected 2 tab-separated columns"}
		}
		return trimBrackets(cols[0]), trimBrackets(cols[1]), nil
	}
	if err := r.sc.Err(); err != nil {
		return "", "", err
	}
	return "", "", io.EOF
}

// All iterates over the remaining rows.
func (r *TSVReader) All() iter.Seq2[[2]string, error] {
	return func(yield func([2]string, error) bool) {
		for {
			k, v, err := r.Read()
			if err == io.EOF {
				return
			}
			if !yield([2]string{k, v}, err) || err != nil {
				return
			}
		}
	}
}

func trimBrackets(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '<' && s[len(s)-1] == '>' {
		return s[1 : len(s)-1]
	}
	return s
}
