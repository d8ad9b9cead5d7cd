package meterface

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The textual record format is a compact, flat key-value representation,
// one record per line, with a fixed key order and default-valued keys
// omitted:
//
//	{sessionUuid:aB3xQ9pL, position:17, category:orders.import, operation:validate,
//	 createTime:1000, startTime:1200, stopTime:1800, currentIteration:42,
//	 expectedIterations:100, okPath:fast, context:{userId:u1,region:eu}}
//
// Strings are quoted only when they contain separators, quotes, spaces, or
// non-ASCII characters. The parser tolerates extra whitespace and unknown
// keys, and rejects records missing sessionUuid or position.

const nullValue = `<null>`

var (
	// ErrMissingSessionUUID is returned by ParseData for records without a
	// sessionUuid key.
	ErrMissingSessionUUID = errors.New(`meterface: record missing sessionUuid`)
	// ErrMissingPosition is returned by ParseData for records without a
	// position key.
	ErrMissingPosition = errors.New(`meterface: record missing position`)
	// ErrMalformedRecord is returned by ParseData for input that is not a
	// record at all.
	ErrMalformedRecord = errors.New(`meterface: malformed record`)

	recordKeyPattern    = regexp.MustCompile(`^\s*([^:{}",\s]+)\s*:\s*`)
	recordQuotedPattern = regexp.MustCompile(`^"((?:[^"\\]|\\.)*)"`)
	recordBarePattern   = regexp.MustCompile(`^[^,{}"]*`)
)

// AppendData serializes d to dst in the flat record format.
func AppendData(dst []byte, d *Data) []byte {
	w := recordWriter{dst: append(dst, '{')}
	w.str(`sessionUuid`, d.SessionUUID)
	w.uint(`position`, d.Position)
	w.str(`category`, d.Category)
	w.str(`operation`, d.Operation)
	w.str(`parent`, d.Parent)
	w.str(`description`, d.Description)
	w.int(`createTime`, d.CreateTime)
	w.int(`startTime`, d.StartTime)
	w.int(`stopTime`, d.StopTime)
	w.int(`timeLimit`, d.TimeLimit)
	w.uint(`currentIteration`, d.CurrentIteration)
	w.uint(`expectedIterations`, d.ExpectedIterations)
	w.str(`okPath`, d.OkPath)
	w.str(`rejectPath`, d.RejectPath)
	w.str(`failPath`, d.FailPath)
	w.str(`failMessage`, d.FailMessage)
	if len(d.Context) != 0 {
		w.sep()
		w.dst = append(w.dst, `context:{`...)
		for i, e := range d.Context {
			if i != 0 {
				w.dst = append(w.dst, ',')
			}
			w.dst = appendRecordString(w.dst, e.Key)
			w.dst = append(w.dst, ':')
			if e.Null {
				w.dst = append(w.dst, nullValue...)
			} else {
				w.dst = appendRecordString(w.dst, e.Value)
			}
		}
		w.dst = append(w.dst, '}')
	}
	return append(w.dst, '}')
}

// SerializeData returns the flat record representation of d.
func SerializeData(d *Data) string {
	return string(AppendData(nil, d))
}

// ParseData parses a record in the format produced by AppendData,
// tolerating extra whitespace and ignoring unknown keys.
func ParseData(s string) (*Data, error) {
	p := recordParser{rest: strings.TrimSpace(s)}
	if !p.consume(`{`) {
		return nil, ErrMalformedRecord
	}
	var (
		d           Data
		haveSession bool
		havePos     bool
	)
	for {
		p.space()
		if p.consume(`}`) || p.rest == `` {
			break
		}
		p.consume(`,`)
		p.space()
		m := recordKeyPattern.FindStringSubmatch(p.rest)
		if m == nil {
			return nil, fmt.Errorf(`%w: expected key at %q`, ErrMalformedRecord, truncate(p.rest))
		}
		p.rest = p.rest[len(m[0]):]
		key := m[1]
		if key == `context` {
			entries, err := p.context()
			if err != nil {
				return nil, err
			}
			d.Context = entries
			continue
		}
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		switch key {
		case `sessionUuid`:
			d.SessionUUID, haveSession = val, true
		case `position`:
			d.Position, err = strconv.ParseUint(val, 10, 64)
			havePos = err == nil
		case `category`:
			d.Category = val
		case `operation`:
			d.Operation = val
		case `parent`:
			d.Parent = val
		case `description`:
			d.Description = val
		case `createTime`:
			d.CreateTime, err = strconv.ParseInt(val, 10, 64)
		case `startTime`:
			d.StartTime, err = strconv.ParseInt(val, 10, 64)
		case `stopTime`:
			d.StopTime, err = strconv.ParseInt(val, 10, 64)
		case `timeLimit`:
			d.TimeLimit, err = strconv.ParseInt(val, 10, 64)
		case `currentIteration`:
			d.CurrentIteration, err = strconv.ParseUint(val, 10, 64)
		case `expectedIterations`:
			d.ExpectedIterations, err = strconv.ParseUint(val, 10, 64)
		case `okPath`:
			d.OkPath = val
		case `rejectPath`:
			d.RejectPath = val
		case `failPath`:
			d.FailPath = val
		case `failMessage`:
			d.FailMessage = val
		default:
			// unknown keys are ignored
		}
		if err != nil {
			return nil, fmt.Errorf(`%w: bad value for %s: %v`, ErrMalformedRecord, key, err)
		}
	}
	if !haveSession {
		return nil, ErrMissingSessionUUID
	}
	if !havePos {
		return nil, ErrMissingPosition
	}
	return &d, nil
}

type recordWriter struct {
	dst   []byte
	wrote bool
}

func (x *recordWriter) sep() {
	if x.wrote {
		x.dst = append(x.dst, ',', ' ')
	}
	x.wrote = true
}

func (x *recordWriter) str(key, val string) {
	if val == `` {
		return
	}
	x.sep()
	x.dst = append(x.dst, key...)
	x.dst = append(x.dst, ':')
	x.dst = appendRecordString(x.dst, val)
}

func (x *recordWriter) int(key string, val int64) {
	if val == 0 {
		return
	}
	x.sep()
	x.dst = append(x.dst, key...)
	x.dst = append(x.dst, ':')
	x.dst = strconv.AppendInt(x.dst, val, 10)
}

func (x *recordWriter) uint(key string, val uint64) {
	if val == 0 {
		return
	}
	x.sep()
	x.dst = append(x.dst, key...)
	x.dst = append(x.dst, ':')
	x.dst = strconv.AppendUint(x.dst, val, 10)
}

func appendRecordString(dst []byte, s string) []byte {
	if !recordNeedsQuoting(s) {
		return append(dst, s...)
	}
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			dst = append(dst, '\\', c)
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}

func recordNeedsQuoting(s string) bool {
	if s == `` {
		return true
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c <= ' ' || c >= 0x7f:
			return true
		case c == '{' || c == '}' || c == ':' || c == ',' || c == '"' || c == '\\':
			return true
		}
	}
	return false
}

type recordParser struct {
	rest string
}

func (x *recordParser) space() {
	x.rest = strings.TrimLeft(x.rest, " \t\r\n")
}

func (x *recordParser) consume(prefix string) bool {
	if strings.HasPrefix(x.rest, prefix) {
		x.rest = x.rest[len(prefix):]
		return true
	}
	return false
}

func (x *recordParser) value() (string, error) {
	x.space()
	if m := recordQuotedPattern.FindStringSubmatch(x.rest); m != nil {
		x.rest = x.rest[len(m[0]):]
		return unescapeRecordString(m[1]), nil
	}
	m := recordBarePattern.FindString(x.rest)
	x.rest = x.rest[len(m):]
	return strings.TrimSpace(m), nil
}

func (x *recordParser) context() ([]ContextEntry, error) {
	x.space()
	if !x.consume(`{`) {
		return nil, fmt.Errorf(`%w: expected context block at %q`, ErrMalformedRecord, truncate(x.rest))
	}
	var entries []ContextEntry
	for {
		x.space()
		if x.consume(`}`) {
			return entries, nil
		}
		if x.rest == `` {
			return nil, fmt.Errorf(`%w: unterminated context block`, ErrMalformedRecord)
		}
		x.consume(`,`)
		x.space()
		var key string
		if m := recordQuotedPattern.FindStringSubmatch(x.rest); m != nil {
			x.rest = x.rest[len(m[0]):]
			key = unescapeRecordString(m[1])
			x.space()
			if !x.consume(`:`) {
				return nil, fmt.Errorf(`%w: expected value for context key %q`, ErrMalformedRecord, key)
			}
		} else if m := recordKeyPattern.FindStringSubmatch(x.rest); m != nil {
			x.rest = x.rest[len(m[0]):]
			key = m[1]
		} else {
			return nil, fmt.Errorf(`%w: expected context key at %q`, ErrMalformedRecord, truncate(x.rest))
		}
		val, err := x.value()
		if err != nil {
			return nil, err
		}
		entry := ContextEntry{Key: key, Value: val}
		if val == nullValue {
			entry.Value, entry.Null = ``, true
		}
		entries = append(entries, entry)
	}
}

func unescapeRecordString(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b = append(b, s[i])
	}
	return string(b)
}

func truncate(s string) string {
	if len(s) > 16 {
		return s[:16] + `...`
	}
	return s
}
