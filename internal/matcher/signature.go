package matcher

import (
	"regexp"
	"strconv"
)

// Signature is the season/episode marker embedded in an episode filename.
type Signature struct {
	Season  int
	Episode int
}

func (s Signature) String() string {
	return "S" + pad2(s.Season) + "E" + pad2(s.Episode)
}

// Patterns run against normalized names (lower case, single spaces).
var (
	seasonEpisodePattern = regexp.MustCompile(`(?:^|[^0-9])s(\d{1,3}) ?e(\d{1,4})(?:[^0-9]|$)`)
	crossPattern         = regexp.MustCompile(`(?:^| )(\d{1,2})x(\d{2,3})(?: |$)`)
)

// ParseSignature extracts the first season/episode marker from a normalized
// name. It understands "s01e02", "s1 e2" and "1x02".
func ParseSignature(normalized string) (Signature, bool) {
	for _, re := range []*regexp.Regexp{seasonEpisodePattern, crossPattern} {
		m := re.FindStringSubmatch(normalized)
		if m == nil {
			continue
		}
		season, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		episode, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		return Signature{Season: season, Episode: episode}, true
	}
	return Signature{}, false
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
