package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/npillmayer/bigbuf"
)

type op struct {
	code     byte
	offset   int64
	length   int64
	data     []byte
	backward bool
}

type script []op

func parseScript(args []string) (script, error) {
	s := make(script, 0, len(args))
	for _, arg := range args {
		o, err := parseOp(arg)
		if err != nil {
			return nil, fmt.Errorf("operation %q: %w", arg, err)
		}
		s = append(s, o)
	}
	return s, nil
}

func parseOp(arg string) (op, error) {
	fields := strings.Split(arg, ":")
	if len(fields[0]) != 1 {
		return op{}, fmt.Errorf("unknown operation")
	}
	o := op{code: fields[0][0]}
	var err error
	want := func(n int) error {
		if len(fields) != n {
			return fmt.Errorf("expected %d fields, have %d", n, len(fields))
		}
		return nil
	}
	switch o.code {
	case 'u', 'U':
		err = want(1)
	case 'w', 'i':
		if err = want(3); err == nil {
			if o.offset, err = parseNum(fields[1]); err == nil {
				o.data, err = hex.DecodeString(fields[2])
			}
		}
	case 'd', 'p':
		if err = want(3); err == nil {
			if o.offset, err = parseNum(fields[1]); err == nil {
				o.length, err = parseNum(fields[2])
			}
		}
	case 'r':
		if err = want(4); err == nil {
			if o.offset, err = parseNum(fields[1]); err == nil {
				if o.length, err = parseNum(fields[2]); err == nil {
					o.data, err = hex.DecodeString(fields[3])
				}
			}
		}
	case 'f':
		if len(fields) == 3 && fields[2] == "b" {
			o.backward = true
		} else if err = want(2); err != nil {
			break
		}
		o.data, err = hex.DecodeString(fields[1])
	default:
		err = fmt.Errorf("unknown operation")
	}
	return o, err
}

func parseNum(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 0, 64)
	if err == nil && n < 0 {
		err = fmt.Errorf("negative number %d", n)
	}
	return n, err
}

func (s script) run(buf *bigbuf.Buffer, w io.Writer) error {
	for _, o := range s {
		var err error
		switch o.code {
		case 'w':
			err = buf.Write(o.offset, o.data)
		case 'i':
			err = buf.Insert(o.offset, o.data)
		case 'd':
			err = buf.Delete(o.offset, o.length)
		case 'r':
			err = buf.Replace(o.offset, o.length, o.data)
		case 'u':
			err = buf.Undo()
		case 'U':
			err = buf.Redo()
		case 'f':
			from := int64(0)
			if o.backward {
				from = buf.Len()
			}
			var pos int64
			pos, err = buf.Find(o.data, from, bigbuf.FindOptions{Backward: o.backward})
			if err == nil {
				fmt.Fprintf(w, "find %x: %d\n", o.data, pos)
			}
		case 'p':
			p := make([]byte, o.length)
			var n int64
			var mods []bigbuf.ModifiedRange
			n, err = buf.Read(p, o.offset, &mods)
			if err == nil {
				fmt.Fprintf(w, "%08x  % x\n", o.offset, p[:n])
				for _, m := range mods {
					fmt.Fprintf(w, "          modified [%d,%d)\n", m.Start, m.End)
				}
			}
		}
		if err != nil {
			return fmt.Errorf("%c at %d: %w", o.code, o.offset, err)
		}
	}
	return nil
}
