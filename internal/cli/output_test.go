package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_OutputFormatter_Success(t *testing.T) {
	testCases := []struct {
		name     string
		format   string
		expected string
	}{
		{name: "json", format: "json", expected: "{\n  \"status\": \"ok\",\n  \"data\": {\n    \"a\": 1\n  }\n}\n"},
		{name: "text", format: "text", expected: "a=1\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: tc.format, Writer: buf}

			err := f.Success(map[string]int{"a": 1}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "a=1")
				return err
			})

			require.NoError(t, err)
			assert.Equal(t, tc.expected, buf.String())
		})
	}
}

func Test_OutputFormatter_Failure(t *testing.T) {
	// given
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}
	cause := errors.New("disk full")

	// when
	err := f.Failure(ExitCommandError, "failed to save", cause)

	// then
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.JSONEq(t, `{"status":"error","error":"failed to save: disk full"}`, buf.String())
}

func Test_GetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "bad flag"))))
}
