package artifactory

import (
	"errors"
	"testing"
)

func testError(t *testing.T, actual error, expected string) {
	if actual.Error() != expected {
		t.Errorf("FAIL!\n'%s'\ndoes not match expectation\n'%s'\n", actual.Error(), expected)
	} else {
		t.Logf("Output: '%s'", actual.Error())
	}
}

func TestErrorNoSuper(t *testing.T) {
	err := newError(nil, "Error")
	testError(t, err, "Artifactory Error:\n  1. (internal) Error")
}

func TestErrorfNoSuper(t *testing.T) {
	err := newErrorf(nil, "%s", "Formatted Error")
	testError(t, err, "Artifactory Error:\n  1. (internal) Formatted Error")
}

func TestErrorIsPassableAsStdError(t *testing.T) {
	err := newError(nil, "Error")
	switch v := err.(type) {
	case error:
	default:
		t.Errorf("%T is not the error interface", v)
	}
}

func TestErrorsPlainErrorSuper(t *testing.T) {
	err := newError(errors.New("error"), "Error")
	testError(t, err, "Artifactory Error:\n  1. (internal) Error\n  2. (*errors.errorString) error")
}

func TestErrorsSuperWithSuper(t *testing.T) {
	var actual error // ensure exact type
	actual = func() error {
		return newError(func() error {
			return newError(func() error {
				return newError(func() error {
					return errors.New("error")
				}(), "Error1")
			}(), "Error2")
		}(), "Error3")
	}()

	testError(t, actual, "Artifactory Error:\n  1. (internal) Error3\n  2. (internal) Error2\n  3. (internal) Error1\n  4. (*errors.errorString) error")
}

func TestErrorKinds(t *testing.T) {
	t.Run("unclassified errors have no kind", func(t *testing.T) {
		if _, ok := KindOf(newError(nil, "Error")); ok {
			t.Error("expected no kind")
		}
		if _, ok := KindOf(errors.New("plain")); ok {
			t.Error("expected no kind for a plain error")
		}
		if _, ok := KindOf(nil); ok {
			t.Error("expected no kind for nil")
		}
	})

	t.Run("wrapping keeps the kind of the cause", func(t *testing.T) {
		cause := errors.New("disk on fire")
		err := newErrorf(newKindErrorf(LocalIOFailure, cause, "reading %s", "a.jar"), "deploying %s", "a.jar")

		kind, ok := KindOf(err)
		if !ok || kind != LocalIOFailure {
			t.Errorf("expected %s, got %s", LocalIOFailure, kind)
		}
		if !errors.Is(err, cause) {
			t.Error("expected the cause to be reachable with errors.Is")
		}
		testError(t, err, "Artifactory Error:\n  1. (internal) deploying a.jar\n  2. (local I/O failure) reading a.jar\n  3. (*errors.errorString) disk on fire")
	})

	t.Run("status errors carry their status code", func(t *testing.T) {
		err := newErrorf(newStatusErrorf(500, "failed to deploy"), "wrapped")

		kind, _ := KindOf(err)
		if kind != UnexpectedStatus {
			t.Errorf("expected %s, got %s", UnexpectedStatus, kind)
		}
		if code := StatusCodeOf(err); code != 500 {
			t.Errorf("expected status 500, got %d", code)
		}

		var e *Error
		if !errors.As(err, &e) || e.StatusCode != 500 {
			t.Error("expected the outer error to carry the status code")
		}
		testError(t, err, "Artifactory Error:\n  1. (internal) wrapped\n  2. (unexpected status 500) failed to deploy")
	})

	t.Run("sentinels survive wrapping", func(t *testing.T) {
		err := newErrorf(ErrMissingChecksums, "deploying %s", "a.jar")
		if !errors.Is(err, ErrMissingChecksums) {
			t.Error("expected ErrMissingChecksums")
		}
	})
}
