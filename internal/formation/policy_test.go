package formation

import "testing"

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tally   Tally
		verdict Verdict
		reason  string
	}{
		{
			name:    "no votes stays pending",
			tally:   Tally{},
			verdict: VerdictPending,
			reason:  "awaiting second approval",
		},
		{
			name:    "one approval stays pending",
			tally:   Tally{Approve: 1},
			verdict: VerdictPending,
			reason:  "awaiting second approval",
		},
		{
			name:    "two approvals approve",
			tally:   Tally{Approve: 2},
			verdict: VerdictApprove,
			reason:  "sufficient approvals, no discussion requested",
		},
		{
			name:    "single objection rejects",
			tally:   Tally{Object: 1},
			verdict: VerdictReject,
			reason:  "objection raised",
		},
		{
			name:    "objection outranks any approval count",
			tally:   Tally{Approve: 5, Object: 1},
			verdict: VerdictReject,
			reason:  "objection raised",
		},
		{
			name:    "open discussion holds approval",
			tally:   Tally{Approve: 3, Discuss: 1},
			verdict: VerdictPending,
			reason:  "discussion requested",
		},
		{
			name:    "discussion with too few approvals names the approvals",
			tally:   Tally{Approve: 1, Discuss: 1},
			verdict: VerdictPending,
			reason:  "awaiting second approval",
		},
		{
			name:    "pass votes never count",
			tally:   Tally{Approve: 1, Pass: 10},
			verdict: VerdictPending,
			reason:  "awaiting second approval",
		},
		{
			name:    "pass votes do not block approval",
			tally:   Tally{Approve: 2, Pass: 3},
			verdict: VerdictApprove,
			reason:  "sufficient approvals, no discussion requested",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			decision := Evaluate(tt.tally)
			if decision.Verdict != tt.verdict {
				t.Fatalf("expected verdict %q, got %q", tt.verdict, decision.Verdict)
			}
			if decision.Reason != tt.reason {
				t.Fatalf("expected reason %q, got %q", tt.reason, decision.Reason)
			}
		})
	}
}
