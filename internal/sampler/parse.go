package sampler

import "strconv"

// SentinelValue is published when a probe fails or its content cannot be
// parsed. The overlay then reads 0 for that tick; the next successful probe
// supersedes it.
const SentinelValue = 0

// ParseValue extracts the first contiguous run of decimal digits from raw
// counter text and returns it as a non-negative integer. Malformed, empty, or
// overflowing input yields SentinelValue; parsing never fails.
func ParseValue(raw string) int {
	start := -1
	end := len(raw)
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		return SentinelValue
	}
	for i := start; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			end = i
			break
		}
	}

	v, err := strconv.Atoi(raw[start:end])
	if err != nil {
		return SentinelValue
	}
	return v
}
