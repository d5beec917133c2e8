package debugger

import (
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/neeevans/rpcs3/armv7"
)

// GUI is the graphical front end for the debugger.
type GUI struct {
	Debugger *Debugger
	App      fyne.App
	Window   fyne.Window

	DisassemblyView *widget.TextGrid
	RegisterView    *widget.TextGrid
	MemoryView      *widget.TextGrid
	StackView       *widget.TextGrid
	ConsoleOutput   *widget.TextGrid
	StatusLabel     *widget.Label
	Toolbar         *widget.Toolbar

	MemoryAddress uint32

	consoleBuffer strings.Builder
	consoleMutex  sync.Mutex
}

// guiWriter redirects guest console output into the GUI console panel.
type guiWriter struct {
	gui *GUI
}

// Write implements io.Writer.
func (w *guiWriter) Write(p []byte) (n int, err error) {
	w.gui.consoleMutex.Lock()
	defer w.gui.consoleMutex.Unlock()

	w.gui.consoleBuffer.Write(p)
	w.gui.updateConsole()
	return len(p), nil
}

// RunGUI runs the graphical debugger until the window closes.
func RunGUI(d *Debugger) error {
	gui := newGUI(d)
	gui.Window.ShowAndRun()
	return nil
}

func newGUI(d *Debugger) *GUI {
	myApp := app.New()
	myWindow := myApp.NewWindow("PSV Emulator Debugger")

	gui := &GUI{
		Debugger:      d,
		App:           myApp,
		Window:        myWindow,
		MemoryAddress: armv7.DataSegmentStart,
	}

	gui.initializeViews()
	gui.buildLayout()

	d.Thread.OutputWriter = &guiWriter{gui: gui}

	myWindow.Resize(fyne.NewSize(1200, 800))
	return gui
}

func (g *GUI) initializeViews() {
	g.DisassemblyView = widget.NewTextGrid()
	g.RegisterView = widget.NewTextGrid()
	g.MemoryView = widget.NewTextGrid()
	g.StackView = widget.NewTextGrid()
	g.ConsoleOutput = widget.NewTextGrid()
	g.StatusLabel = widget.NewLabel("halted")

	g.Toolbar = widget.NewToolbar(
		widget.NewToolbarAction(theme.MediaPlayIcon(), func() {
			if err := g.Debugger.Continue(); err != nil {
				g.StatusLabel.SetText(fmt.Sprintf("error: %v", err))
			}
			g.refresh()
		}),
		widget.NewToolbarAction(theme.MediaSkipNextIcon(), func() {
			if err := g.Debugger.Step(); err != nil {
				g.StatusLabel.SetText(fmt.Sprintf("error: %v", err))
			}
			g.refresh()
		}),
		widget.NewToolbarAction(theme.MediaStopIcon(), func() {
			g.Debugger.Thread.Halt(0)
			g.refresh()
		}),
	)

	g.refresh()
}

func (g *GUI) buildLayout() {
	left := container.NewVSplit(
		container.NewScroll(g.DisassemblyView),
		container.NewScroll(g.ConsoleOutput),
	)
	left.SetOffset(0.7)

	right := container.NewVSplit(
		container.NewScroll(g.RegisterView),
		container.NewVSplit(
			container.NewScroll(g.MemoryView),
			container.NewScroll(g.StackView),
		),
	)
	right.SetOffset(0.35)

	body := container.NewHSplit(left, right)
	body.SetOffset(0.6)

	g.Window.SetContent(container.NewBorder(g.Toolbar, g.StatusLabel, nil, nil, body))
}

// refresh redraws every panel from the current machine state.
func (g *GUI) refresh() {
	d := g.Debugger
	g.RegisterView.SetText(d.FormatRegisters())
	g.MemoryView.SetText(d.FormatMemory(g.MemoryAddress, 128))
	g.StackView.SetText(d.FormatStack(12))
	g.DisassemblyView.SetText(d.FormatDisassembly(d.Thread.PC, 20))

	switch d.Thread.State {
	case armv7.StateHalted:
		g.StatusLabel.SetText(fmt.Sprintf("halted (exit %d)", d.Thread.ExitCode))
	case armv7.StateBreakpoint:
		g.StatusLabel.SetText(fmt.Sprintf("breakpoint at 0x%08X", d.Thread.PC))
	case armv7.StateError:
		g.StatusLabel.SetText(fmt.Sprintf("error: %v", d.Thread.LastError))
	default:
		g.StatusLabel.SetText("running")
	}
}

func (g *GUI) updateConsole() {
	g.ConsoleOutput.SetText(g.consoleBuffer.String())
}
