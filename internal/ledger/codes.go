package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// NextCode derives the next sequential human-readable document code from
// the most recently assigned one: NextCode("BRG", "BRG-007") == "BRG-008".
// Falls back to <prefix>-001 when there is no prior code or its suffix is
// unparsable. Pure; callers that need strict uniqueness must create inside
// a transaction and rely on the unique index, retrying on conflict.
func NextCode(prefix, last string) string {
	first := prefix + "-001"
	if last == "" {
		return first
	}
	parts := strings.SplitN(last, "-", 2)
	if len(parts) != 2 {
		return first
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n <= 0 {
		return first
	}
	return fmt.Sprintf("%s-%03d", prefix, n+1)
}
