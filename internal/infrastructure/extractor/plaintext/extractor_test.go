package plaintext

import "testing"

func TestExtractCountsFormFeedPages(t *testing.T) {
	out, err := Extract([]byte("  IN THE HIGH COURT OF KERALA\fORDER\n"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if out.Pages != 2 || out.Method != Method || out.Text != "IN THE HIGH COURT OF KERALA\fORDER" {
		t.Fatalf("unexpected result %+v", out)
	}
}

func TestExtractEmpty(t *testing.T) {
	out, err := Extract([]byte(" \n "))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if out.Text != "" || out.Pages != 0 {
		t.Fatalf("unexpected result %+v", out)
	}
}

func TestExtractRejectsBinary(t *testing.T) {
	if _, err := Extract([]byte{0xff, 0xfe, 0x00}); err == nil {
		t.Fatalf("expected error")
	}
}
