package dor

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Attribute file names under the driver tree.
const (
	attrCurrent       = "current"
	attrVoltage       = "voltage"
	attrPlugged       = "is-plugged"
	attrPower         = "pwr"
	attrPowerCheck    = "pwr_check"
	attrCommunicating = "is-communicating"
	attrNotConfigboot = "is-not-configboot"
	attrID            = "id"
	attrCommStats     = "comstat"
	attrFPGA          = "fpga"
	attrRevision      = "rev"
	attrTestLog       = "test-log"
)

var (
	currentPattern = regexp.MustCompile(`^.+ current is (\d+) mA`)
	voltagePattern = regexp.MustCompile(`^.+ voltage is ([0-9.]+) Volts`)
	idPattern      = regexp.MustCompile(`^.+ ID is ([0-9a-f]+)`)
	serialPattern  = regexp.MustCompile(`^Serial number: (\S+)`)
	powerOnPattern = regexp.MustCompile(`\bon\b`)
)

// flagAttr is a boolean attribute decided by a predicate on the file text.
type flagAttr struct {
	file string
	test func(string) bool
}

var (
	pluggedFlag = flagAttr{attrPlugged, func(s string) bool {
		return s != "" && !strings.Contains(s, "not")
	}}
	poweredFlag = flagAttr{attrPower, powerOnPattern.MatchString}
	commFlag    = flagAttr{attrCommunicating, func(s string) bool {
		return s != "" && !strings.Contains(s, "NOT")
	}}
	notConfigbootFlag = flagAttr{attrNotConfigboot, func(s string) bool {
		return s != "" && strings.Contains(s, "is out")
	}}
)

func readAttr(dir, name string) (string, error) {
	path := filepath.Join(dir, name)

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrAttributeUnreadable, path, err)
	}

	return string(b), nil
}

func readFlag(dir string, a flagAttr) (bool, error) {
	text, err := readAttr(dir, a.file)
	if err != nil {
		return false, err
	}

	return a.test(text), nil
}

// readMatch returns the first capture of re in the attribute, or "".
func readMatch(dir, name string, re *regexp.Regexp) string {
	text, err := readAttr(dir, name)
	if err != nil {
		return ""
	}

	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	return m[1]
}

func readInt(dir, name string, re *regexp.Regexp) int {
	var (
		s   string
		err error
	)

	if re == nil {
		s, err = readAttr(dir, name)
		s = strings.TrimSpace(s)
	} else {
		s = readMatch(dir, name, re)
	}

	if err != nil {
		return -1
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}

	return v
}

func readFloat(dir, name string, re *regexp.Regexp) float64 {
	v, err := strconv.ParseFloat(readMatch(dir, name, re), 64)
	if err != nil {
		return -1
	}

	return v
}
