package build

import (
	"testing"
)

func TestTrackerTransitions(t *testing.T) {
	tr := newTracker()
	tr.add("Alpha", "ios", []string{"iphonesimulator", "iphoneos"})

	if got := tr.snapshot()[0].Phase; got != Pending {
		t.Fatalf("phase = %v, want pending", got)
	}

	tr.begin("Alpha", "ios")
	if got := tr.snapshot()[0].Phase; got != Archiving {
		t.Fatalf("phase = %v, want archiving", got)
	}

	tr.succeed("Alpha", "ios", 1, "/w/iphoneos.xcarchive")
	if got := tr.snapshot()[0].Phase; got != Archiving {
		t.Fatalf("phase = %v after one of two SDKs, want archiving", got)
	}

	tr.succeed("Alpha", "ios", 0, "/w/iphonesimulator.xcarchive")
	s := tr.snapshot()[0]
	if s.Phase != Archived {
		t.Fatalf("phase = %v, want archived", s.Phase)
	}

	want := []string{"/w/iphonesimulator.xcarchive", "/w/iphoneos.xcarchive"}
	got := tr.archives("Alpha", "ios")
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("archives = %v, want %v (SDK order)", got, want)
	}
}

func TestTrackerFailure(t *testing.T) {
	tr := newTracker()
	tr.add("Alpha", "ios", []string{"iphonesimulator", "iphoneos"})
	tr.begin("Alpha", "ios")
	tr.fail("Alpha", "ios", 0)
	tr.succeed("Alpha", "ios", 1, "/w/iphoneos.xcarchive")

	s := tr.snapshot()[0]
	if s.Phase != Failed {
		t.Fatalf("phase = %v, want failed", s.Phase)
	}
	if len(s.FailedSDKs) != 1 || s.FailedSDKs[0] != "iphonesimulator" {
		t.Fatalf("failed SDKs = %v, want [iphonesimulator]", s.FailedSDKs)
	}
	if got := tr.archives("Alpha", "ios"); len(got) != 1 {
		t.Fatalf("archives = %v, want one", got)
	}
}

func TestTrackerCancelUnfinished(t *testing.T) {
	tr := newTracker()
	tr.add("Alpha", "ios", []string{"iphonesimulator"})
	tr.add("Alpha", "osx", []string{"macosx"})
	tr.add("Alpha", "osx", []string{"macosx"})

	tr.succeed("Alpha", "ios", 0, "/w/a")
	tr.cancelUnfinished()

	states := tr.snapshot()
	if len(states) != 2 {
		t.Fatalf("states = %d, want 2", len(states))
	}
	if states[0].Phase != Archived {
		t.Fatalf("ios phase = %v, want archived", states[0].Phase)
	}
	if states[1].Phase != Cancelled {
		t.Fatalf("osx phase = %v, want cancelled", states[1].Phase)
	}
}

func TestPhaseText(t *testing.T) {
	text, err := Cancelled.MarshalText()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(text) != "cancelled" {
		t.Fatalf("text = %q, want cancelled", text)
	}
}
