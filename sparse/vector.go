package sparse

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadVector reads a dense column vector: one value per line, blanks skipped.
func LoadVector(filename string) (x []float64, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open vector %s: %w", filename, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, perr := strconv.ParseFloat(line, 64)
		if perr != nil {
			return nil, fmt.Errorf("vector %s line %d: bad value %q", filename, lineNum, line)
		}
		x = append(x, v)
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("vector %s: %w", filename, err)
	}
	return
}

// SaveVector writes a dense column vector, one value per line.
func SaveVector(x []float64, filename string) (err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return fmt.Errorf("unable to create vector %s: %w", filename, err)
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	for _, v := range x {
		fmt.Fprintln(w, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return w.Flush()
}
