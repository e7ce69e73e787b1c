package apperr

import (
	"errors"
	"testing"
)

func TestKindOfUnwrapsWrappedError(t *testing.T) {
	cause := errors.New("disk is on fire")
	err := Wrap(NotAudioFile, cause, "probing track")

	if KindOf(err) != NotAudioFile {
		t.Fatalf("expected NotAudioFile, got %v", KindOf(err))
	}
}

func TestKindOfDefaultsForForeignErrors(t *testing.T) {
	if KindOf(errors.New("plain")) != IoError {
		t.Fatal("expected foreign errors to default to IoError")
	}
}
