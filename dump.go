package arena

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// BytesPerLine is the number of byte groups Dump renders per line.
const BytesPerLine = 16

const hexDigits = "0123456789abcdef"

// Dump renders the whole buffer, allocated or not, as lowercase hex. Each
// byte is two digits followed by a space, and a newline follows every
// BytesPerLine-th byte.
func (a *Arena) Dump() (string, error) {
	var b strings.Builder
	b.Grow(dumpLen(a.layout.Size))
	if err := a.WriteDump(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteDump streams the Dump rendering to w.
func (a *Arena) WriteDump(w io.Writer) error {
	if a.region == nil {
		return closedError("dump")
	}
	if len(a.buf) != a.layout.Size {
		return corrupt("dump", len(a.buf), a.layout.Size)
	}

	bw := bufio.NewWriter(w)
	group := [3]byte{0, 0, ' '}
	for i, c := range a.buf {
		group[0] = hexDigits[c>>4]
		group[1] = hexDigits[c&0x0f]
		if _, err := bw.Write(group[:]); err != nil {
			return errors.Wrap(err, "write dump")
		}
		if (i+1)%BytesPerLine == 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return errors.Wrap(err, "write dump")
			}
		}
	}
	return errors.Wrap(bw.Flush(), "flush dump")
}

func dumpLen(size int) int {
	return size*3 + size/BytesPerLine
}
