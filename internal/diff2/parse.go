package diff2

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"

	"github.com/gosynge/diff3merge/internal/diff3err"
)

var headerRE = regexp.MustCompile(`^([0-9]+)(?:,([0-9]+))?([acd])([0-9]+)(?:,([0-9]+))?$`)

// Options controls parser behavior that the CLI layer exposes as
// flags.
type Options struct {
	// StripTrailingCR strips a trailing '\r' from every captured line,
	// honouring --strip-trailing-cr.
	StripTrailingCR bool
	// KeepMissingNewline retains the trailing newline on a line whose
	// source lacked one. Ed scripts cannot represent an unterminated
	// line, so editor-script output keeps the newline and forwards
	// the marker as a Notice instead.
	KeepMissingNewline bool
}

// Parse consumes buf, the full text of a normal-format two-way diff,
// and returns the block chain it describes. buf must end in a
// newline; an incomplete last line is a fatal parse error.
func Parse(buf []byte, opts Options) (Chain, []Notice, error) {
	if len(buf) == 0 {
		return nil, nil, nil
	}
	if buf[len(buf)-1] != '\n' {
		return nil, nil, parseErr(lastLine(buf), "unterminated final line")
	}
	var chain Chain
	var notices []Notice
	pos := 0
	for pos < len(buf) {
		header, next, ok := readLine(buf, pos)
		if !ok {
			return nil, nil, parseErr(buf[pos:], "missing newline after header")
		}
		m := headerRE.FindSubmatch(header)
		if m == nil {
			return nil, nil, parseErr(header, "malformed diff header")
		}
		pos = next

		lo1, _ := strconv.Atoi(string(m[1]))
		hi1 := lo1
		if len(m[2]) > 0 {
			hi1, _ = strconv.Atoi(string(m[2]))
		}
		cmdCh := m[3][0]
		lo2, _ := strconv.Atoi(string(m[4]))
		hi2 := lo2
		if len(m[5]) > 0 {
			hi2, _ = strconv.Atoi(string(m[5]))
		}

		var blk Block
		switch cmdCh {
		case 'a':
			blk.Cmd = Add
			blk.A = Range{Lo: lo1 + 1, Hi: lo1}
			blk.B = Range{Lo: lo2, Hi: hi2}
		case 'd':
			blk.Cmd = Delete
			blk.A = Range{Lo: lo1, Hi: hi1}
			blk.B = Range{Lo: lo2 + 1, Hi: lo2}
		case 'c':
			blk.Cmd = Change
			blk.A = Range{Lo: lo1, Hi: hi1}
			blk.B = Range{Lo: lo2, Hi: hi2}
		}

		blockIndex := len(chain)

		if blk.A.Len() > 0 {
			lines, n, newPos, err := readGroup(buf, pos, '<', blk.A.Len(), opts)
			if err != nil {
				return nil, nil, err
			}
			blk.ALines = lines
			for _, nt := range n {
				nt.BlockIndex = blockIndex
				nt.Side = SideA
				notices = append(notices, nt)
			}
			pos = newPos
		}

		if blk.Cmd == Change {
			sep, next, ok := readLine(buf, pos)
			if !ok || string(sep) != "---" {
				return nil, nil, parseErr(sep, "expected '---' separator in change hunk")
			}
			pos = next
		}

		if blk.B.Len() > 0 {
			lines, n, newPos, err := readGroup(buf, pos, '>', blk.B.Len(), opts)
			if err != nil {
				return nil, nil, err
			}
			blk.BLines = lines
			for _, nt := range n {
				nt.BlockIndex = blockIndex
				nt.Side = SideB
				notices = append(notices, nt)
			}
			pos = newPos
		}

		chain = append(chain, blk)
	}
	return chain, notices, nil
}

// readGroup reads count literal lines each prefixed "<prefix> " (e.g.
// "< " or "> "), returning the decoded Lines and a Notice (with only
// LineIndex and Text set) for every line that lacked a trailing
// newline in the source.
func readGroup(buf []byte, pos int, prefix byte, count int, opts Options) (lines []Line, missing []Notice, newPos int, err error) {
	lines = make([]Line, count)
	for i := 0; i < count; i++ {
		if pos+2 > len(buf) || buf[pos] != prefix || buf[pos+1] != ' ' {
			return nil, nil, 0, parseErr(lastLine(buf[pos:]), fmt.Sprintf("expected %q-prefixed line", string(prefix)+" "))
		}
		content, next, ok := readLineRaw(buf, pos+2)
		if !ok {
			return nil, nil, 0, parseErr(buf[pos:], "unterminated literal line")
		}
		pos = next
		noNewline := false
		if pos < len(buf) && buf[pos] == '\\' {
			_, next2, ok := readLine(buf, pos)
			if !ok {
				return nil, nil, 0, parseErr(buf[pos:], "unterminated newline-continuation marker")
			}
			missing = append(missing, Notice{LineIndex: i, Text: buf[pos:next2]})
			pos = next2
			noNewline = true
			if !opts.KeepMissingNewline && len(content) > 0 && content[len(content)-1] == '\n' {
				content = content[:len(content)-1]
			}
		}
		if opts.StripTrailingCR {
			switch {
			case bytes.HasSuffix(content, []byte("\r\n")):
				content = append(content[:len(content)-2:len(content)-2], '\n')
			case bytes.HasSuffix(content, []byte("\r")):
				content = content[:len(content)-1]
			}
		}
		lines[i] = Line{Text: content, NoNewline: noNewline}
	}
	return lines, missing, pos, nil
}

// readLine returns buf[pos:nl] (excluding the newline) and the
// position just past it. ok is false if no newline was found.
func readLine(buf []byte, pos int) (line []byte, newPos int, ok bool) {
	idx := bytes.IndexByte(buf[pos:], '\n')
	if idx < 0 {
		return nil, 0, false
	}
	return buf[pos : pos+idx], pos + idx + 1, true
}

// readLineRaw is like readLine but includes the trailing newline in
// the returned slice, matching the grammar's "extends to and includes
// the terminating newline" rule for literal content lines.
func readLineRaw(buf []byte, pos int) (line []byte, newPos int, ok bool) {
	idx := bytes.IndexByte(buf[pos:], '\n')
	if idx < 0 {
		return nil, 0, false
	}
	return buf[pos : pos+idx+1], pos + idx + 1, true
}

func lastLine(buf []byte) []byte {
	if idx := bytes.IndexByte(buf, '\n'); idx >= 0 {
		return buf[:idx]
	}
	return buf
}

func parseErr(context []byte, why string) error {
	return diff3err.New(diff3err.Parse, string(context), fmt.Errorf("%s", why))
}
