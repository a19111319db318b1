package ui

import (
	"fmt"
	"strings"

	"github.com/bz888/schedchat/internal/api"
	"github.com/rivo/tview"
)

const errorNotice = "Error communicating with backend"

const (
	cmdHelp   = "/help"
	cmdBye    = "/bye"
	cmdQuit   = "/quit"
	cmdExit   = "/exit"
	cmdDebug  = "/debug"
	cmdStream = "/stream"
	cmdClear  = "/clear"
)

var commands = map[string]string{
	cmdHelp:   "Display this help message",
	cmdBye:    "Exit the application (also /quit, /exit)",
	cmdDebug:  "Toggle the debug console",
	cmdStream: "Switch between streamed and single-shot replies",
	cmdClear:  "Clear the conversation",
}

// parseCommand reports whether content is one of the slash commands. Anything
// else, including unknown slash words, is sent to the service.
func parseCommand(content string) (string, bool) {
	cmd := strings.TrimSpace(content)
	switch cmd {
	case cmdQuit, cmdExit:
		return cmdBye, true
	}
	if _, ok := commands[cmd]; ok {
		return cmd, true
	}
	return "", false
}

func modeLabel(streaming bool) string {
	if streaming {
		return "streaming"
	}
	return "single-shot"
}

func userBlock(content string) string {
	return fmt.Sprintf("\n\n[red::]You:[-]\n%s\n\n", tview.Escape(content))
}

func botHeader() string {
	return "[green::]Bot:[-]\n"
}

// maxHeldTag bounds how much of an unclosed "[" tail is held back between
// chunks. Longer runs cannot be a colour tag worth protecting.
const maxHeldTag = 256

// chunkEscaper escapes streamed text for a dynamic-colours TextView. A tag
// can arrive split across chunks ("[re" then "d]"), so the tail from an
// unclosed "[" is held and escaped together with the next chunk.
type chunkEscaper struct {
	pending string
}

// Write returns the escaped text that is safe to print now.
func (e *chunkEscaper) Write(text string) string {
	combined := e.pending + text
	e.pending = ""

	j := len(combined)
	for j > 0 && isTagByte(combined[j-1]) {
		j--
	}
	if k := strings.IndexByte(combined[j:], '['); k >= 0 {
		k += j
		if len(combined)-k <= maxHeldTag {
			e.pending = combined[k:]
			return tview.Escape(combined[:k])
		}
	}
	return tview.Escape(combined)
}

// Flush releases whatever is still held at the end of a stream.
func (e *chunkEscaper) Flush() string {
	out := tview.Escape(e.pending)
	e.pending = ""
	return out
}

// isTagByte matches the bytes tview.Escape treats as part of a tag.
func isTagByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	}
	return strings.IndexByte("_,;: -.\"#[", b) >= 0
}

func errorBlock() string {
	return fmt.Sprintf("\n[red::]%s[-]\n", errorNotice)
}

func responseBlock(resp *api.ChatResponse) string {
	var sb strings.Builder
	sb.WriteString("[green::]System Response:[-]\n")
	if o, ok := resp.Orchestration(); ok {
		fmt.Fprintf(&sb, "[yellow::]Intent:[-] %s\n", tview.Escape(o.Intent))
	}
	sb.WriteString(tview.Escape(resp.Pretty()))
	sb.WriteString("\n")
	return sb.String()
}

func helpText(streaming bool) string {
	var sb strings.Builder
	sb.WriteString("Here are some commands you can use:\n")
	for _, cmd := range []string{cmdHelp, cmdBye, cmdDebug, cmdStream, cmdClear} {
		fmt.Fprintf(&sb, "- %s: %s\n", cmd, commands[cmd])
	}
	fmt.Fprintf(&sb, "\nReplies are currently %s.\n\n", modeLabel(streaming))
	return sb.String()
}
