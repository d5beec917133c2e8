package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/neeevans/rpcs3/armv7"
)

// TUI is the text user interface for the debugger: register, memory,
// stack and disassembly panels around a command input line.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	MainLayout *tview.Flex

	DisassemblyView *tview.TextView
	RegisterView    *tview.TextView
	MemoryView      *tview.TextView
	StackView       *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	// MemoryAddress is the base of the memory panel; defaults to the
	// data segment until a mem command moves it.
	MemoryAddress uint32
}

// NewTUI creates the text user interface.
func NewTUI(d *Debugger) *TUI {
	t := &TUI{
		Debugger:      d,
		App:           tview.NewApplication(),
		MemoryAddress: armv7.DataSegmentStart,
	}

	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()

	// Guest console output lands in the output panel.
	d.Thread.OutputWriter = tview.ANSIWriter(t.OutputView)

	return t
}

// Run enters the tview event loop.
func (t *TUI) Run() error {
	t.refresh()
	return t.App.SetRoot(t.MainLayout, true).SetFocus(t.CommandInput).Run()
}

func (t *TUI) initializeViews() {
	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.RegisterView = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.StackView = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("(psv) ")
	t.CommandInput.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		line := strings.TrimSpace(t.CommandInput.GetText())
		t.CommandInput.SetText("")
		t.execute(line)
	})
}

func (t *TUI) buildLayout() {
	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.DisassemblyView, 0, 2, false).
		AddItem(t.OutputView, 0, 1, false)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 12, 0, false).
		AddItem(t.MemoryView, 0, 1, false).
		AddItem(t.StackView, 0, 1, false)

	body := tview.NewFlex().
		AddItem(left, 0, 2, false).
		AddItem(right, 0, 1, false)

	t.MainLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, false).
		AddItem(t.CommandInput, 1, 0, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			t.execute("continue")
			return nil
		case tcell.KeyF10:
			t.execute("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		}
		return event
	})
}

// execute runs one command through the shared command dispatcher and
// refreshes every panel.
func (t *TUI) execute(line string) {
	if line == "" {
		line = "step"
	}
	if f := strings.Fields(line); len(f) > 1 && (f[0] == "mem" || f[0] == "x") {
		if addr, err := t.Debugger.ResolveAddress(f[1]); err == nil {
			t.MemoryAddress = addr
		}
	}

	var out strings.Builder
	if quit := execCommand(t.Debugger, &out, line); quit {
		t.App.Stop()
		return
	}
	if s := out.String(); s != "" {
		fmt.Fprint(t.OutputView, s)
	}
	t.refresh()
}

// refresh redraws every panel from the current machine state.
func (t *TUI) refresh() {
	t.RegisterView.SetText(t.Debugger.FormatRegisters())
	t.MemoryView.SetText(t.Debugger.FormatMemory(t.MemoryAddress, 128))
	t.StackView.SetText(t.Debugger.FormatStack(12))
	t.DisassemblyView.SetText(t.Debugger.FormatDisassembly(t.Debugger.Thread.PC, 16))
	t.OutputView.ScrollToEnd()
}
