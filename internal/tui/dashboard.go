// Package tui renders a live scene summary in a terminal and feeds terminal
// mouse input into the scene's pointer dispatcher.
package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/zeuscene/internal/core/interaction"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/core/scene"
	"github.com/zeusync/zeuscene/internal/core/scheduler"
)

// Source is the scene surface the dashboard reads and drives.
type Source interface {
	Snapshot() scene.Snapshot
	Dispatch(kind interaction.EventKind, in interaction.Input) error
	Resize(width, height float32)
}

// cellAspect approximates the height/width ratio of a terminal cell.
const cellAspect = 2

var (
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleLabel   = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleText    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleHovered = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	styleFailed  = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Dashboard is a scheduler.Renderer that redraws at most once per interval.
type Dashboard struct {
	screen   tcell.Screen
	interval time.Duration
	logger   log.Log

	mu       sync.Mutex
	source   Source
	lastDraw time.Time
	buttons  tcell.ButtonMask
}

func New(screen tcell.Screen, interval time.Duration, logger log.Log) *Dashboard {
	if logger == nil {
		logger = log.Provide()
	}
	return &Dashboard{
		screen:   screen,
		interval: interval,
		logger:   logger.Named("tui"),
	}
}

// Bind attaches the scene. Frames rendered before Bind draw nothing.
func (d *Dashboard) Bind(src Source) {
	d.mu.Lock()
	d.source = src
	d.mu.Unlock()
	d.resize()
}

func (d *Dashboard) Render(frame scheduler.Frame) error {
	d.mu.Lock()
	src := d.source
	if src == nil || (d.interval > 0 && frame.Time.Sub(d.lastDraw) < d.interval) {
		d.mu.Unlock()
		return nil
	}
	d.lastDraw = frame.Time
	d.mu.Unlock()

	d.draw(src.Snapshot(), frame)
	return nil
}

func (d *Dashboard) draw(snap scene.Snapshot, frame scheduler.Frame) {
	d.screen.Clear()

	state := "stopped"
	if snap.Running {
		state = "running"
	}
	row := 0
	d.text(0, row, styleTitle, fmt.Sprintf("zeuscene  frame %d  %s  dt %v", frame.Number, state, frame.Delta.Round(time.Millisecond)))
	row += 2

	row = d.field(row, "cache", fmt.Sprintf("%d entries  %d/%d bytes  %.0f%%  hits %d  misses %d  evicted %d",
		snap.Cache.Count, snap.Cache.Size, snap.Cache.MaxSize, snap.Cache.Utilization*100,
		snap.Cache.Hits, snap.Cache.Misses, snap.Cache.Evictions))
	row = d.field(row, "loads", fmt.Sprintf("%d/%d loaded  %d failed  %d in flight  %.0f%%",
		snap.Loads.Loaded, snap.Loads.Total, snap.Loads.Failed, snap.Loads.InFlight, snap.Loads.Progress*100))
	row = d.field(row, "stage", fmt.Sprintf("%d attached  %d mixers", snap.Stage, snap.Mixers))
	hovered := snap.Hovered
	if hovered == "" {
		hovered = "-"
	}
	row = d.field(row, "hover", hovered)
	row++

	d.text(0, row, styleTitle, "instances")
	row++
	for _, inst := range snap.Instances {
		style := styleText
		switch {
		case inst.Name == snap.Hovered:
			style = styleHovered
		case inst.State == "failed":
			style = styleFailed
		}
		d.text(2, row, style, fmt.Sprintf("%-24s %-12s %s", inst.Name, inst.Component, inst.State))
		row++
	}

	d.screen.Show()
}

func (d *Dashboard) field(row int, label, value string) int {
	d.text(0, row, styleLabel, fmt.Sprintf("%-6s", label))
	d.text(7, row, styleText, value)
	return row + 1
}

func (d *Dashboard) text(x, y int, style tcell.Style, s string) {
	w, h := d.screen.Size()
	if y >= h {
		return
	}
	for _, r := range s {
		if x >= w {
			return
		}
		d.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// HandleEvent routes one terminal event and reports whether the dashboard
// should keep running.
func (d *Dashboard) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
	case *tcell.EventResize:
		d.screen.Sync()
		d.resize()
	case *tcell.EventMouse:
		d.mouse(ev)
	}
	return true
}

func (d *Dashboard) resize() {
	d.mu.Lock()
	src := d.source
	d.mu.Unlock()
	if src == nil {
		return
	}
	w, h := d.screen.Size()
	src.Resize(float32(w), float32(h*cellAspect))
}

func (d *Dashboard) mouse(ev *tcell.EventMouse) {
	d.mu.Lock()
	src := d.source
	prev := d.buttons
	d.buttons = ev.Buttons()
	d.mu.Unlock()
	if src == nil {
		return
	}

	x, y := ev.Position()
	w, h := d.screen.Size()
	in := interaction.PointerAt(float32(x)+0.5, (float32(y)+0.5)*cellAspect, float32(w), float32(h*cellAspect))
	in.Time = ev.When()
	in.Raw = ev

	pressed := ev.Buttons()&tcell.Button1 != 0
	wasPressed := prev&tcell.Button1 != 0

	kinds := []interaction.EventKind{interaction.MouseMove}
	switch {
	case pressed && !wasPressed:
		kinds = append(kinds, interaction.MouseDown)
	case !pressed && wasPressed:
		kinds = append(kinds, interaction.MouseUp, interaction.Click)
	}
	for _, kind := range kinds {
		if err := src.Dispatch(kind, in); err != nil {
			d.logger.Debug("pointer dispatch failed", log.Event(string(kind)), log.Error(err))
		}
	}
}

// Run polls terminal events until ctx is done or the user quits, then
// restores the terminal. The screen must already be initialised.
func (d *Dashboard) Run(ctx context.Context) {
	d.screen.EnableMouse(tcell.MouseMotionEvents)
	defer d.screen.Fini()

	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := d.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if !d.HandleEvent(ev) {
				return
			}
		}
	}
}
