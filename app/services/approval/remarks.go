package approval

import "strings"

// RemarkForApprover extracts one approver's line from a concatenated
// remark block of "Name: remark" lines. Empty when the approver left no
// remark.
func RemarkForApprover(remark, approverName string) string {
	for _, line := range strings.Split(remark, "\n") {
		if rest, ok := strings.CutPrefix(line, approverName+": "); ok {
			return rest
		}
	}
	return ""
}
