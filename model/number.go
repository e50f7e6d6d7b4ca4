package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cdfmlr/crud/log"
	"gopkg.in/yaml.v3"
)

var logger = log.ZoneLogger("gigmaster/model")

// Number is an int that also accepts numeric strings ("120", "")
// from JSON request bodies and YAML sidecars written by hand.
//
// A value that is not a number ("3:45", "fast", a list) decodes to 0
// instead of failing, so the other fields of the document survive.
type Number int

func parseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		return Number(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return Number(f), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = 0
		return nil
	}

	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}

	v, err := parseNumber(s)
	if err != nil {
		logger.WithError(err).Warn("Number: using 0")
	}
	*n = v
	return nil
}

func (n *Number) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		logger.WithField("line", value.Line).Warn("Number: not a scalar, using 0")
		*n = 0
		return nil
	}
	v, err := parseNumber(value.Value)
	if err != nil {
		logger.WithField("line", value.Line).WithError(err).Warn("Number: using 0")
	}
	*n = v
	return nil
}
