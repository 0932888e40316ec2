package formation

// Tally aggregates the current vote ledger for one request, one vote per
// voter. Pass votes are tracked for visibility but never influence the
// verdict.
type Tally struct {
	Approve int
	Object  int
	Discuss int
	Pass    int
}

// Verdict is the policy outcome for a tally.
type Verdict string

const (
	// VerdictApprove transitions the request to approved and runs the executor.
	VerdictApprove Verdict = "approve"
	// VerdictReject transitions the request to rejected.
	VerdictReject Verdict = "reject"
	// VerdictPending leaves the request open for more votes.
	VerdictPending Verdict = "pending"
)

// Decision pairs a verdict with a human-readable reason.
type Decision struct {
	Verdict Verdict
	Reason  string
}

const (
	// ApprovalThreshold is the number of approve votes required.
	ApprovalThreshold = 2

	reasonObjection        = "objection raised"
	reasonApproved         = "sufficient approvals, no discussion requested"
	reasonAwaitingApproval = "awaiting second approval"
	reasonDiscussion       = "discussion requested"
)

// Evaluate applies the auto-approval policy to a tally. A single objection
// rejects regardless of approval count; otherwise two approvals with no open
// discussion approve; anything else stays pending with the missing condition
// named.
func Evaluate(tally Tally) Decision {
	if tally.Object >= 1 {
		return Decision{Verdict: VerdictReject, Reason: reasonObjection}
	}
	if tally.Approve >= ApprovalThreshold && tally.Discuss == 0 {
		return Decision{Verdict: VerdictApprove, Reason: reasonApproved}
	}
	if tally.Approve < ApprovalThreshold {
		return Decision{Verdict: VerdictPending, Reason: reasonAwaitingApproval}
	}
	return Decision{Verdict: VerdictPending, Reason: reasonDiscussion}
}
