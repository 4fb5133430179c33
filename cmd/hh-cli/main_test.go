package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskString(t *testing.T) {
	assert.Equal(t, "", maskString(""))
	assert.Equal(t, "***", maskString("secret"))
	assert.Equal(t, "eyJh***wxyz", maskString("eyJhbGciOiJIUzI1NiJ9.wxyz"))
}

func TestRunSafelyReturnsError(t *testing.T) {
	boom := errors.New("relation \"vacancies\" does not exist")
	err := runSafely(context.Background(), func() error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRunSafelyRecoversPanic(t *testing.T) {
	err := runSafely(context.Background(), func() error {
		var m map[string]int
		m["x"]++
		return nil
	})
	assert.ErrorContains(t, err, "panic")
}
