// Package video holds the asynchronous video generation adapters. Generate
// submits a job and returns a pending result; CheckStatus reports progress.
package video

import (
	"strconv"
	"strings"
	"unicode"

	"reelgen/internal/infra"
)

// Provider names as they appear in chain configuration.
const (
	ProviderVeo          = "veo"
	ProviderReplicateLTX = "replicate-ltx"
	ProviderSeedance     = "seedance"
)

const (
	defaultAspect  = "9:16"
	defaultSeconds = 4
	videoMIME      = "video/mp4"
)

// durationSeconds reads the leading integer of a hint such as "4 seconds".
func durationSeconds(hint string) int {
	hint = strings.TrimSpace(hint)
	end := strings.IndexFunc(hint, func(r rune) bool { return !unicode.IsDigit(r) })
	if end < 0 {
		end = len(hint)
	}
	n, err := strconv.Atoi(hint[:end])
	if err != nil || n <= 0 {
		return defaultSeconds
	}
	return n
}

func aspectOrDefault(aspect string) string {
	if strings.TrimSpace(aspect) == "" {
		return defaultAspect
	}
	return aspect
}

func loggerOrNop(logger *infra.Logger) *infra.Logger {
	if logger == nil {
		return infra.NopLogger()
	}
	return logger
}
