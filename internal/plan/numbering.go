package plan

import (
	"strconv"
	"strings"

	"github.com/mwhite/stratplan-api/internal/models"
)

// NextNumber computes the next sibling goal number. With an empty
// parentNumber it allocates the next root number ("1", "2", ...); otherwise
// it appends the next child segment under parentNumber ("2" -> "2.3" when
// "2.1" and "2.2" exist). Gaps are never refilled and unparsable numbers
// are ignored, matching the dashboard's allocation behavior.
//
// The result is only as good as the sibling set it is given: callers must
// pass the currently persisted siblings, and goal creation still has to
// enforce uniqueness itself (see the goals handler) since two editors can
// race for the same number.
func NextNumber(parentNumber string, siblings []models.Goal) string {
	if parentNumber == "" {
		max := 0
		for _, g := range siblings {
			if g.ParentID != nil {
				continue
			}
			if n, err := strconv.Atoi(g.GoalNumber); err == nil && n > max {
				max = n
			}
		}
		return strconv.Itoa(max + 1)
	}

	prefix := parentNumber + "."
	max := 0
	for _, g := range siblings {
		if !strings.HasPrefix(g.GoalNumber, prefix) {
			continue
		}
		parts := strings.Split(g.GoalNumber, ".")
		if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil && n > max {
			max = n
		}
	}
	return prefix + strconv.Itoa(max+1)
}
