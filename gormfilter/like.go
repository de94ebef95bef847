package gormfilter

import (
	"fmt"
	"strings"
)

const likeEscapeClause = "ESCAPE '\\'"

var likeEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"%", "\\%",
	"_", "\\_",
)

func escapeLikePattern(value string) string {
	return likeEscaper.Replace(value)
}

func buildLikeComparison(column string, value string, prefixWildcard, suffixWildcard bool) (string, []interface{}) {
	pattern := escapeLikePattern(value)
	if prefixWildcard {
		pattern = "%" + pattern
	}
	if suffixWildcard {
		pattern += "%"
	}
	return fmt.Sprintf("%s LIKE ? %s", column, likeEscapeClause), []interface{}{pattern}
}
