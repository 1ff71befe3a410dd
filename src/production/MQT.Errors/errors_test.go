package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClass_String(t *testing.T) {
	tests := []struct {
		class    Class
		expected string
	}{
		{ClassRoutine, "routine"},
		{ClassFailure, "failure"},
		{Class(42), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.class.String())
		})
	}
}

func TestKinds_MatchSentinels(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name  string
		err   error
		kind  error
		class Class
	}{
		{"decode", Decode(cause), ErrDecode, ClassFailure},
		{"not found", NotFound("device", "dev1"), ErrNotFound, ClassRoutine},
		{"store", Store("asset", "abc", cause), ErrStore, ClassFailure},
		{"publish", Publish("exchange declare", cause), ErrPublish, ClassFailure},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.ErrorIs(t, test.err, test.kind)
			assert.Equal(t, test.class, Classify(test.err))

			wrapped := fmt.Errorf("pipeline: %w", test.err)
			assert.ErrorIs(t, wrapped, test.kind)
			assert.Equal(t, test.class, Classify(wrapped))
		})
	}
}

func TestPipelineError_KeepsCause(t *testing.T) {
	cause := errors.New("server selection timeout")
	err := Store("sensor", "2", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsStore(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, "sensor store unavailable (2): server selection timeout", err.Error())
	assert.Equal(t, "sensor", EntityOf(err))
}

func TestNotFound_Message(t *testing.T) {
	err := NotFound("device", "dev123")
	assert.Equal(t, "device not found (dev123)", err.Error())
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "device", EntityOf(err))
	assert.Equal(t, "", EntityOf(errors.New("plain")))
}

func TestClassify_Nil(t *testing.T) {
	assert.Equal(t, ClassRoutine, Classify(nil))
}
