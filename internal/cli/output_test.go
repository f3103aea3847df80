package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fanling-index/internal/model"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E001", "rebuild failed", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "E001", resp.Error.Code)
	assert.Equal(t, "rebuild failed", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]any{"path": []string{"a", "b", "a"}}
	err := formatter.Error("E002", "cycle detected", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("Initialized fanling.db")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Initialized fanling.db")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E001", "rebuild failed", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]")
	assert.Contains(t, buf.String(), "rebuild failed")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"kind": "child"}
	err := formatter.Error("E001", "rebuild failed", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("rebuilding %s", "child")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "rebuilding child")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"count": 42},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    "INVALID_ITEM",
		Message: "invalid item",
		Details: []string{"ident should not be empty"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "INVALID_ITEM", decoded.Code)
	assert.Equal(t, "invalid item", decoded.Message)
}

func TestOutputFormatter_Emit(t *testing.T) {
	text := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: text}
	require.NoError(t, f.Emit([]string{"a"}, func(w io.Writer) { fmt.Fprintln(w, "rendered") }))
	assert.Equal(t, "rendered\n", text.String())

	js := &bytes.Buffer{}
	f = &OutputFormatter{Format: "json", Writer: js}
	require.NoError(t, f.Emit([]string{"a"}, func(w io.Writer) { t.Fatal("text renderer called in json mode") }))
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(js.Bytes(), &resp))
	assert.Equal(t, []any{"a"}, resp.Data)
}

func TestOutputFormatter_Fail(t *testing.T) {
	cycle := model.NewCycleError("a", "child", []string{"a", "b", "a"})

	text := &bytes.Buffer{}
	err := (&OutputFormatter{Format: "text", Writer: text}).Fail(cycle)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, model.IsCycle(err))
	assert.Empty(t, text.String())

	js := &bytes.Buffer{}
	err = (&OutputFormatter{Format: "json", Writer: js}).Fail(cycle)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(js.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CYCLE_DETECTED", resp.Error.Code)
	assert.Equal(t, map[string]any{"path": []any{"a", "b", "a"}}, resp.Error.Details)

	err = (&OutputFormatter{Format: "text", Writer: text}).Fail(errors.New("disk on fire"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "open", errors.New("inner")))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}
