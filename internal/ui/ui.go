package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/bz888/schedchat/internal/api"
	"github.com/bz888/schedchat/internal/config"
	"github.com/bz888/schedchat/internal/logger"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

var app *tview.Application
var wg sync.WaitGroup

var (
	debugConsole *tview.TextView
	textView     *tview.TextView
	textArea     *tview.TextArea
	localLogger  *logger.Logger
	chatClient   *api.Client
)

// only touched from the tview event loop
var (
	streaming  bool
	debugShown bool
)

func Init() {
	app = tview.NewApplication()
	app.EnablePaste(true)
	app.EnableMouse(true)

	debugConsole = initDebugConsole()

	textView = initChatViewer()
	textArea = initChatInput()
}

func initChatViewer() *tview.TextView {
	textView := tview.NewTextView().
		SetChangedFunc(func() {
			app.Draw()
		}).
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	textView.SetTitle("AI Clinical Scheduling System").SetBorder(true)
	textView.SetScrollable(true)
	textView.ScrollToEnd()
	return textView
}

func initChatInput() *tview.TextArea {
	textArea := tview.NewTextArea().
		SetPlaceholder("Type your request...")
	textArea.SetTitle("Request").SetBorder(true)
	return textArea
}

func initDebugConsole() *tview.TextView {
	console := tview.NewTextView().
		SetChangedFunc(func() {
			app.Draw()
		}).
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	console.SetTitle("Debugger").SetBorder(true)
	console.ScrollToEnd()
	return console
}

// Run blocks until the user quits. Requests go through client; stream picks
// the initial reply mode.
func Run(client *api.Client, stream bool) error {
	localLogger = logger.NewLogger("views")
	chatClient = client
	streaming = stream

	textView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter:
			app.SetFocus(textArea)
		}
		return event
	})

	subFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(textView, 0, 1, false).
		AddItem(textArea, 6, 2, true)
	mainFlex := tview.NewFlex().
		AddItem(subFlex, 0, 2, false)

	if config.Dev {
		mainFlex.AddItem(debugConsole, 0, 1, false)
		debugShown = true
	}

	setInputCapture(mainFlex)

	fmt.Fprintf(textView, "Connected to %s, replies are %s. Type /help for commands.\n", client.BaseURL(), modeLabel(streaming))

	return app.SetRoot(mainFlex, true).SetFocus(textArea).Run()
}

func setInputCapture(mainFlex *tview.Flex) {
	textArea.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyESC:
			if textView.GetText(false) != "" {
				app.SetFocus(textView)
			}
			return event
		case tcell.KeyEnter:
			content := textArea.GetText()
			if strings.TrimSpace(content) == "" {
				return nil
			}
			textArea.SetText("", true)

			if cmd, ok := parseCommand(content); ok {
				runCommand(cmd, mainFlex)
				return nil
			}

			setBusy(true)
			go func(stream bool) {
				defer app.QueueUpdateDraw(func() { setBusy(false) })
				if stream {
					chatStream(content)
				} else {
					chatOnce(content)
				}
			}(streaming)
			return nil
		}
		return event
	})
}

func runCommand(cmd string, mainFlex *tview.Flex) {
	switch cmd {
	case cmdHelp:
		fmt.Fprint(textView, userBlock(cmd))
		fmt.Fprint(textView, botHeader())
		fmt.Fprint(textView, helpText(streaming))
	case cmdBye:
		quitApp()
	case cmdDebug:
		toggleDebugConsole(mainFlex)
	case cmdStream:
		streaming = !streaming
		localLogger.Info("Reply mode: ", modeLabel(streaming))
		fmt.Fprintf(textView, "\nReplies are now %s\n", modeLabel(streaming))
	case cmdClear:
		textView.Clear()
	}
}

func setBusy(busy bool) {
	textArea.SetDisabled(busy)
	if busy {
		textArea.SetTitle("Request (processing...)")
	} else {
		textArea.SetTitle("Request")
		app.SetFocus(textArea)
	}
}

func chatStream(content string) {
	app.QueueUpdateDraw(func() {
		fmt.Fprint(textView, userBlock(content))
		fmt.Fprint(textView, botHeader())
	})

	esc := &chunkEscaper{}
	err := chatClient.Stream(context.Background(), content, func(text string) {
		out := esc.Write(text)
		app.QueueUpdateDraw(func() {
			fmt.Fprint(textView, out)
		})
	})
	tail := esc.Flush()
	app.QueueUpdateDraw(func() {
		fmt.Fprint(textView, tail)
	})
	if err != nil {
		localLogger.Error("Stream failed: ", err)
		app.QueueUpdateDraw(func() {
			fmt.Fprint(textView, errorBlock())
		})
	}
}

func chatOnce(content string) {
	app.QueueUpdateDraw(func() {
		fmt.Fprint(textView, userBlock(content))
	})

	resp, err := chatClient.Send(context.Background(), content)
	if err != nil {
		localLogger.Error("Send failed: ", err)
		app.QueueUpdateDraw(func() {
			fmt.Fprint(textView, errorBlock())
		})
		return
	}
	app.QueueUpdateDraw(func() {
		fmt.Fprint(textView, responseBlock(resp))
	})
}

func toggleDebugConsole(mainFlex *tview.Flex) {
	if !debugShown {
		mainFlex.AddItem(debugConsole, 0, 1, false)
		fmt.Fprintf(textView, "\nDebug console enabled\n")
	} else {
		mainFlex.RemoveItem(debugConsole)
		fmt.Fprintf(textView, "\nDebug console disabled\n")
	}
	debugShown = !debugShown
}

func quitApp() {
	fmt.Fprintf(textView, "Bye bye\n")

	wg.Add(1)
	go func() {
		defer wg.Done()
		localLogger.Close()
		app.Stop()
		log.Println("Shutting down gracefully.")
	}()

	wg.Wait()
	os.Exit(0)
}

func GetDebugConsole() (*tview.TextView, error) {
	if debugConsole == nil {
		return nil, errors.New("debug console not initialized")
	}
	return debugConsole, nil
}
