package ui

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/bz888/schedchat/internal/api"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	cases := map[string]struct {
		cmd string
		ok  bool
	}{
		"/help":           {cmdHelp, true},
		"  /stream \n":    {cmdStream, true},
		"/quit":           {cmdBye, true},
		"/exit":           {cmdBye, true},
		"/bye":            {cmdBye, true},
		"/clear":          {cmdClear, true},
		"/debug":          {cmdDebug, true},
		"/voice":          {"", false},
		"book a slot":     {"", false},
		"/help me please": {"", false},
	}

	for input, want := range cases {
		cmd, ok := parseCommand(input)
		assert.Equal(t, want.ok, ok, input)
		assert.Equal(t, want.cmd, cmd, input)
	}
}

func TestUserBlockEscapesTags(t *testing.T) {
	assert.Equal(t, "\n\n[red::]You:[-]\nmove [red[] to 3pm\n\n", userBlock("move [red] to 3pm"))
}

func TestChunkEscaperEscapesWholeChunks(t *testing.T) {
	esc := &chunkEscaper{}
	assert.Equal(t, "Hel", esc.Write("Hel"))
	assert.Equal(t, "[yellow[]", esc.Write("[yellow]"))
	assert.Equal(t, "", esc.Write(""))
	assert.Equal(t, "", esc.Flush())
}

func TestChunkEscaperHoldsTagSplitAcrossChunks(t *testing.T) {
	esc := &chunkEscaper{}
	assert.Equal(t, "see ", esc.Write("see [re"))
	assert.Equal(t, "[red[] box", esc.Write("d] box"))
	assert.Equal(t, "", esc.Flush())
}

func TestChunkEscaperMatchesEscapeAtEverySplit(t *testing.T) {
	texts := []string{
		"see [red] box",
		"slots [9am, 10am] and [a[b]",
		"[yellow::b]Booked[-] café [x",
		"no tags at all",
	}
	for _, whole := range texts {
		for i := 0; i <= len(whole); i++ {
			esc := &chunkEscaper{}
			got := esc.Write(whole[:i]) + esc.Write(whole[i:]) + esc.Flush()
			assert.Equal(t, tview.Escape(whole), got, "%q split at %d", whole, i)
		}
	}
}

func TestChunkEscaperFlushReleasesUnclosedBracket(t *testing.T) {
	esc := &chunkEscaper{}
	assert.Equal(t, "total ", esc.Write("total [abc"))
	assert.Equal(t, "[abc", esc.Flush())
	assert.Equal(t, "", esc.Flush())
}

func TestChunkEscaperGivesUpOnLongRuns(t *testing.T) {
	esc := &chunkEscaper{}
	long := "[" + strings.Repeat("a", maxHeldTag)
	assert.Equal(t, long, esc.Write(long))
	assert.Equal(t, "", esc.Flush())
}

func TestResponseBlockShowsIntentAndJSON(t *testing.T) {
	raw := `{"intent":"book_appointment","parameters":{"slots":["9am"]},"result":"ok"}`
	var data any
	assert.NoError(t, json.Unmarshal([]byte(raw), &data))

	block := responseBlock(&api.ChatResponse{Raw: json.RawMessage(raw), Data: data})

	assert.Contains(t, block, "[green::]System Response:[-]\n")
	assert.Contains(t, block, "[yellow::]Intent:[-] book_appointment\n")
	assert.Contains(t, block, "\"intent\": \"book_appointment\"")
	assert.Contains(t, block, "\"9am\"")
}

func TestResponseBlockWithoutIntent(t *testing.T) {
	block := responseBlock(&api.ChatResponse{Raw: json.RawMessage(`"done"`), Data: "done"})

	assert.NotContains(t, block, "Intent:")
	assert.Contains(t, block, "\"done\"")
}

func TestHelpTextListsCommandsAndMode(t *testing.T) {
	text := helpText(true)
	for _, cmd := range []string{cmdHelp, cmdBye, cmdDebug, cmdStream, cmdClear} {
		assert.Contains(t, text, "- "+cmd+": ")
	}
	assert.Contains(t, text, "Replies are currently streaming.")
	assert.Contains(t, helpText(false), "Replies are currently single-shot.")
}

func TestErrorBlock(t *testing.T) {
	assert.Equal(t, "\n[red::]Error communicating with backend[-]\n", errorBlock())
}
