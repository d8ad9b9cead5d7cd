package meterface

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Recognized configuration keys, see [ParseMap].
const (
	KeySessionUUIDLength = `session.uuid_length`
	KeySessionCharset    = `session.charset`
	KeyMessagePrefix     = `meter.message.prefix`
	KeyMessageSuffix     = `meter.message.suffix`
	KeyDataPrefix        = `meter.data.prefix`
	KeyDataSuffix        = `meter.data.suffix`
	KeyProgressPeriod    = `meter.progress.period`
	KeyEnableData        = `meter.enable_data`
)

// Defaults applied by NewConfig, and wherever a configured value is
// invalid.
const (
	DefaultUUIDLength     = 8
	DefaultCharset        = `UTF-8`
	DefaultProgressPeriod = 2 * time.Second
)

type (
	// Config carries the tunables recognized by this package.
	//
	// Configuration never fails hard: parse errors are collected into
	// Errors, and the defaults apply for the affected keys.
	Config struct {
		Charset        string
		MessagePrefix  string
		MessageSuffix  string
		DataPrefix     string
		DataSuffix     string
		Errors         []error
		ProgressPeriod time.Duration
		UUIDLength     int
		EnableData     bool
	}
)

var durationPattern = regexp.MustCompile(`^([0-9]+)(ms|s|m|h)$`)

// NewConfig returns a Config populated with the defaults.
func NewConfig() *Config {
	return &Config{
		UUIDLength:     DefaultUUIDLength,
		Charset:        DefaultCharset,
		ProgressPeriod: DefaultProgressPeriod,
		EnableData:     true,
	}
}

// ParseMap builds a Config from the recognized string keys, e.g. as loaded
// from flags, a file, or the environment. Unrecognized keys and
// unparsable values are recorded in Config.Errors, with the defaults
// applying in their place.
func ParseMap(m map[string]string) *Config {
	c := NewConfig()
	keys := maps.Keys(m)
	slices.Sort(keys)
	for _, k := range keys {
		v := m[k]
		switch k {
		case KeySessionUUIDLength:
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				c.fail(k, v, err)
				continue
			}
			c.UUIDLength = n
		case KeySessionCharset:
			if v == `` {
				c.fail(k, v, nil)
				continue
			}
			c.Charset = v
		case KeyMessagePrefix:
			c.MessagePrefix = v
		case KeyMessageSuffix:
			c.MessageSuffix = v
		case KeyDataPrefix:
			c.DataPrefix = v
		case KeyDataSuffix:
			c.DataSuffix = v
		case KeyProgressPeriod:
			d, err := parsePeriod(v)
			if err != nil {
				c.fail(k, v, err)
				continue
			}
			c.ProgressPeriod = d
		case KeyEnableData:
			b, err := strconv.ParseBool(v)
			if err != nil {
				c.fail(k, v, err)
				continue
			}
			c.EnableData = b
		default:
			c.Errors = append(c.Errors, fmt.Errorf(`meterface: unrecognized configuration key %q`, k))
		}
	}
	return c
}

func (x *Config) fail(key, value string, err error) {
	if err != nil {
		x.Errors = append(x.Errors, fmt.Errorf(`meterface: invalid value %q for %s: %w`, value, key, err))
	} else {
		x.Errors = append(x.Errors, fmt.Errorf(`meterface: invalid value %q for %s`, value, key))
	}
}

// parsePeriod parses a duration with a required unit suffix, one of
// ms|s|m|h.
func parsePeriod(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf(`expected <number><ms|s|m|h>`)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, err
	}
	switch m[2] {
	case `ms`:
		return time.Duration(n) * time.Millisecond, nil
	case `s`:
		return time.Duration(n) * time.Second, nil
	case `m`:
		return time.Duration(n) * time.Minute, nil
	default:
		return time.Duration(n) * time.Hour, nil
	}
}
