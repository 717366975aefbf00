package app

import (
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"trait-roller/internal/activity"
	"trait-roller/pkg/config"
	"trait-roller/pkg/logger"
)

// Keep only the last lines of activity in the panel
const maxPanelLines = 1000

// Panel is the desktop window: trait lists, controls and the activity log.
type Panel struct {
	window fyne.Window
	ctl    *TraitRoller
	cfg    *config.Config
	log    *logger.Logger
	menu   SequenceMenu

	status   *widget.Label
	textArea *widget.TextGrid
	seqArea  *widget.TextGrid

	listA     *widget.Entry
	listB     *widget.Entry
	delay     *widget.Entry
	logOCR    *widget.Check
	playDelay *widget.Entry
	repeats   *widget.Entry

	mu      sync.Mutex
	content []string
}

func NewPanel(a fyne.App, ctl *TraitRoller, cfg *config.Config, menu SequenceMenu, log *logger.Logger) *Panel {
	p := &Panel{ctl: ctl, cfg: cfg, menu: menu, log: log}
	p.window = a.NewWindow("RimWorld Trait Roller")
	p.window.SetMaster()

	p.status = widget.NewLabel(ctl.StatusLine())
	p.textArea = widget.NewTextGrid()
	p.seqArea = widget.NewTextGrid()

	p.listA = widget.NewMultiLineEntry()
	p.listB = widget.NewMultiLineEntry()
	p.delay = widget.NewEntry()
	p.playDelay = widget.NewEntry()
	p.repeats = widget.NewEntry()
	p.logOCR = widget.NewCheck("Log OCR text", nil)
	p.loadFields()

	p.listA.OnChanged = cfg.SetListA
	p.listB.OnChanged = cfg.SetListB
	p.delay.OnChanged = cfg.SetDelay
	p.playDelay.OnChanged = cfg.SetPlayDelay
	p.repeats.OnChanged = cfg.SetRepeatCount
	p.logOCR.OnChanged = cfg.SetLogOCR

	lists := container.NewGridWithColumns(2,
		container.NewBorder(widget.NewLabel("MUST HAVE (one per line)"), nil, nil, nil, p.listA),
		container.NewBorder(widget.NewLabel("WANT ONE OF (one per line)"), nil, nil, nil, p.listB),
	)
	rollerForm := widget.NewForm(widget.NewFormItem("Delay (ms)", p.delay))
	rollerButtons := container.NewHBox(
		widget.NewButton("Start / Stop", p.run(ctl.ToggleRolling)),
		p.logOCR,
		widget.NewButton("Save Config", p.run(ctl.SaveConfig)),
		widget.NewButton("Clear Log", p.Clear),
	)

	playForm := widget.NewForm(
		widget.NewFormItem("Delay (ms)", p.playDelay),
		widget.NewFormItem("Repeat", p.repeats),
	)
	macroButtons := container.NewHBox(
		widget.NewButton("Record", p.run(ctl.ToggleRecording)),
		widget.NewButton("Play", p.run(ctl.PlaySequence)),
		widget.NewButton("Stop", func() { p.SetStatus(ctl.StopAll()) }),
		widget.NewButton("Edit", p.run(p.editSequence)),
		widget.NewButton("Clear", p.run(ctl.ClearSequence)),
		widget.NewButton("Save", p.run(ctl.SaveSequence)),
		widget.NewButton("Load", p.run(ctl.LoadSequence)),
	)

	tabs := container.NewAppTabs(
		container.NewTabItem("Traits", container.NewBorder(
			container.NewVBox(rollerForm, rollerButtons), nil, nil, nil,
			container.NewVSplit(lists, container.NewScroll(p.textArea)),
		)),
		container.NewTabItem("Auto Clicker", container.NewBorder(
			container.NewVBox(playForm, macroButtons), nil, nil, nil,
			container.NewScroll(p.seqArea),
		)),
	)

	p.window.SetContent(container.NewBorder(p.status, nil, nil, nil, tabs))
	p.window.Resize(fyne.NewSize(800, 600))

	ctl.OnStatus(p.SetStatus)
	p.refreshSequence()
	return p
}

func (p *Panel) loadFields() {
	p.listA.SetText(p.cfg.GetListA())
	p.listB.SetText(p.cfg.GetListB())
	p.delay.SetText(p.cfg.GetDelay())
	p.playDelay.SetText(p.cfg.GetPlayDelay())
	p.repeats.SetText(p.cfg.GetRepeatCount())
	p.logOCR.SetChecked(p.cfg.GetLogOCR())
}

// Reload refreshes the form after the config file changed on disk.
func (p *Panel) Reload() {
	p.loadFields()
}

func (p *Panel) editSequence() (string, error) {
	if p.menu == nil {
		return "", fmt.Errorf("sequence editor unavailable")
	}
	return p.menu.Show()
}

// run adapts a controller action to a button callback.
func (p *Panel) run(fn func() (string, error)) func() {
	return func() {
		msg, err := fn()
		if err != nil {
			p.log.Error("Panel action failed", err)
			p.SetStatus(err.Error())
			return
		}
		if msg != "" {
			p.SetStatus(msg)
		}
	}
}

// SetStatus updates the status line and the sequence listing.
func (p *Panel) SetStatus(s string) {
	p.status.SetText(s)
	p.refreshSequence()
}

func (p *Panel) refreshSequence() {
	p.seqArea.SetText(strings.Join(p.ctl.ListSequence(), "\n"))
}

// Write implements activity.Sink.
func (p *Panel) Write(ev activity.Event) error {
	p.AddText(fmt.Sprintf("%s %s", ev.Time.Format("15:04:05"), ev.Message))
	return nil
}

func (p *Panel) AddText(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.content = append(p.content, text)
	if len(p.content) > maxPanelLines {
		p.content = p.content[len(p.content)-maxPanelLines:]
	}
	p.textArea.SetText(strings.Join(p.content, "\n"))
}

func (p *Panel) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.content = nil
	p.textArea.SetText("")
}

// ShowAndRun blocks on the fyne event loop.
func (p *Panel) ShowAndRun() {
	p.window.ShowAndRun()
}

var _ activity.Sink = (*Panel)(nil)
