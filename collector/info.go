package collector

import (
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

var dbKeyRE = regexp.MustCompile(`^db\d+$`)

// extractInfoSamples parses a raw INFO (or CLUSTER INFO) reply into res.
// The reply is line oriented: blank lines and "# Section" headers are
// skipped, as is any other line without a colon. Works the same with CRLF
// or LF line endings and with or without a trailing newline.
func extractInfoSamples(info string, res *Result) {
	fieldClass := ""
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		log.Debugf("info: %s", line)
		if strings.HasPrefix(line, "# ") {
			fieldClass = line[2:]
			continue
		}

		if len(line) < 2 || !strings.Contains(line, ":") {
			continue
		}

		split := strings.SplitN(line, ":", 2)
		fieldKey := split[0]
		fieldValue := split[1]

		if fieldClass == "Keyspace" {
			if stats, ok := parseDBKeyspaceString(fieldKey, fieldValue); ok {
				res.Samples = append(res.Samples, stats...)
				continue
			}
		}

		kind, ok := lookupField(fieldKey)
		if !ok {
			continue
		}

		sample, err := coerceValue(fieldKey, statKey(fieldKey), fieldValue, kind)
		if err != nil {
			log.Debugf("dropping field, %s", err)
			res.Skipped = append(res.Skipped, fieldKey)
			continue
		}
		res.Samples = append(res.Samples, sample)
	}
}

/*
	valid example: db0:keys=1,expires=0,avg_ttl=0
*/
func parseDBKeyspaceString(inputKey string, inputVal string) (samples []MetricSample, ok bool) {
	if !dbKeyRE.MatchString(inputKey) {
		log.Debugf("parseDBKeyspaceString inputKey not a db name: [%s]", inputKey)
		return nil, false
	}

	for _, part := range strings.Split(inputVal, ",") {
		kv := strings.Split(part, "=")
		if len(kv) != 2 {
			log.Debugf("parseDBKeyspaceString invalid part: [%s]", part)
			return nil, false
		}
		v, err := strconv.ParseInt(kv[1], 10, 64)
		if err != nil {
			log.Debugf("parseDBKeyspaceString invalid value in [%s], err: %s", part, err)
			return nil, false
		}
		samples = append(samples, newIntSample(
			inputKey+"_"+kv[0],
			dbStatKey(inputKey, kv[0]),
			v,
		))
	}

	return samples, len(samples) > 0
}

// parseDatabaseNames returns the dbN names present in the Keyspace section,
// in reply order.
func parseDatabaseNames(info string) (dbs []string) {
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		split := strings.SplitN(line, ":", 2)
		if len(split) == 2 && dbKeyRE.MatchString(split[0]) {
			dbs = append(dbs, split[0])
		}
	}
	return dbs
}
