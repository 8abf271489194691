package fleet

import (
	"fmt"
	"regexp"
	"strconv"
)

var plateSuffix = regexp.MustCompile(`^(.*-)(\d+)$`)

// PlateSequence derives count license plates from a base plate. A base of the
// shape "<prefix>-<number>" is continued by incrementing the number with its
// zero-padding preserved; any other shape gets a zero-padded suffix appended.
// Callers must check the results against stored plates before committing.
func PlateSequence(base string, count int) []string {
	plates := make([]string, 0, count)
	m := plateSuffix.FindStringSubmatch(base)
	if m == nil {
		for i := 0; i < count; i++ {
			plates = append(plates, fmt.Sprintf("%s-%03d", base, i+1))
		}
		return plates
	}
	prefix, digits := m[1], m[2]
	start, err := strconv.Atoi(digits)
	if err != nil {
		// digits too long for an int, fall back to suffixing
		for i := 0; i < count; i++ {
			plates = append(plates, fmt.Sprintf("%s-%03d", base, i+1))
		}
		return plates
	}
	for i := 0; i < count; i++ {
		plates = append(plates, fmt.Sprintf("%s%0*d", prefix, len(digits), start+i))
	}
	return plates
}

// VINSequence derives count VINs from a base VIN. A full-length 17-character
// VIN with a numeric tail is continued by incrementing its trailing 4 digits;
// anything else gets a 3-digit suffix appended.
func VINSequence(base string, count int) []string {
	vins := make([]string, 0, count)
	if len(base) == 17 {
		if tail, err := strconv.Atoi(base[13:]); err == nil {
			for i := 0; i < count; i++ {
				vins = append(vins, fmt.Sprintf("%s%04d", base[:13], tail+i))
			}
			return vins
		}
	}
	for i := 0; i < count; i++ {
		vins = append(vins, fmt.Sprintf("%s%03d", base, i+1))
	}
	return vins
}
