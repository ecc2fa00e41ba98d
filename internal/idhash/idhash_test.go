package idhash

import "testing"

func TestComputeReportID(t *testing.T) {
	got := ComputeReportID("eth-mainnet", "0xAbC", 1700000000000)
	if len(got) != 64 {
		t.Fatalf("ComputeReportID() length = %d, want 64", len(got))
	}

	// Wallet case does not matter.
	if lower := ComputeReportID("eth-mainnet", "0xabc", 1700000000000); lower != got {
		t.Errorf("ComputeReportID() case sensitive: %s != %s", lower, got)
	}

	for i := 0; i < 10; i++ {
		if again := ComputeReportID("eth-mainnet", "0xAbC", 1700000000000); again != got {
			t.Fatalf("ComputeReportID() not deterministic: %s != %s", again, got)
		}
	}
}

func TestComputeReportID_DifferentInputs(t *testing.T) {
	base := ComputeReportID("eth-mainnet", "0xabc", 1000)

	if base == ComputeReportID("bsc-mainnet", "0xabc", 1000) {
		t.Error("Different chain should produce different hash")
	}
	if base == ComputeReportID("eth-mainnet", "0xabd", 1000) {
		t.Error("Different wallet should produce different hash")
	}
	if base == ComputeReportID("eth-mainnet", "0xabc", 1001) {
		t.Error("Different timestamp should produce different hash")
	}
}

func TestComputeAssessmentID(t *testing.T) {
	a := ComputeAssessmentID("eth-mainnet", "0xFEED", 1000)
	if len(a) != 64 {
		t.Fatalf("ComputeAssessmentID() length = %d, want 64", len(a))
	}
	if a != ComputeAssessmentID("eth-mainnet", "0xfeed", 1000) {
		t.Error("ComputeAssessmentID() should ignore hash case")
	}
	// Reports and assessments never collide on the same inputs.
	if a == ComputeReportID("eth-mainnet", "0xfeed", 1000) {
		t.Error("report and assessment IDs share a namespace")
	}
}
