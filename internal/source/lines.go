package source

import (
	"bufio"
	"errors"
	"io"
)

// forEachLine calls fn with every newline-terminated line of r, without the
// trailing newline. A line longer than maxLine is drained without being
// buffered and counted in the returned overlong total; reading continues
// with the next line. The slice passed to fn is reused between calls.
func forEachLine(r io.Reader, maxLine int, fn func(line []byte)) (overlong int, err error) {
	br := bufio.NewReaderSize(r, 256*1024)
	var buf []byte

	for {
		line, tooLong, err := readLine(br, buf[:0], maxLine)
		buf = line
		switch {
		case tooLong:
			overlong++
		case len(line) > 0:
			fn(line)
		}
		if errors.Is(err, io.EOF) {
			return overlong, nil
		}
		if err != nil {
			return overlong, err
		}
	}
}

// readLine appends the next line to buf. Once the line exceeds maxLine the
// rest of it is read and discarded.
func readLine(br *bufio.Reader, buf []byte, maxLine int) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := br.ReadSlice('\n')
		n := len(chunk)
		if n > 0 && chunk[n-1] == '\n' {
			n--
		}
		if !tooLong {
			if len(buf)+n > maxLine {
				tooLong = true
				buf = buf[:0]
			} else {
				buf = append(buf, chunk[:n]...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return buf, tooLong, err
	}
}
