package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/pitch-fighter/engine"
	"github.com/lixenwraith/pitch-fighter/event"
	"github.com/lixenwraith/pitch-fighter/parameter"
	"github.com/lixenwraith/pitch-fighter/status"
)

const helpLine = "s start  x stop  +/- tune  r restart  q quit"

var (
	styleTitle = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleText  = tcell.StyleDefault
	styleDim   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleGood  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleWarn  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleBad   = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// App is the terminal front end: status lines, key commands and event feedback
type App struct {
	screen tcell.Screen
	eng    *engine.Engine
	sched  *engine.Scheduler
	ctx    context.Context
	height float64

	// async runs blocking commands off the input goroutine
	async func(func())

	mu       sync.Mutex
	note     string
	message  string
	gameOver *event.GameOverPayload
}

// NewApp binds a screen to an engine and its scheduler
func NewApp(ctx context.Context, screen tcell.Screen, eng *engine.Engine, sched *engine.Scheduler, fieldHeight float64) *App {
	return &App{
		screen: screen,
		eng:    eng,
		sched:  sched,
		ctx:    ctx,
		height: fieldHeight,
		async:  engine.Go,
		note:   "--",
	}
}

func (a *App) setMessage(format string, args ...any) {
	a.mu.Lock()
	a.message = fmt.Sprintf(format, args...)
	a.mu.Unlock()
}

// report shows err in the message line
func (a *App) report(what string, err error) {
	if err != nil {
		a.setMessage("%s: %v", what, err)
	}
}

// HandleKey runs the command bound to a key, false means quit
func (a *App) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return a.quit()
	case tcell.KeyRune:
	default:
		return true
	}

	switch ev.Rune() {
	case 's':
		a.async(func() {
			a.report("start", a.eng.Start(a.ctx))
		})
	case 'x':
		a.report("stop", a.sched.Do(a.eng.Stop))
	case '+', '=':
		a.report("tune", a.sched.Do(func() error {
			return a.eng.SetTuning(a.eng.Snapshot().Reference + parameter.TuningStep)
		}))
	case '-', '_':
		a.report("tune", a.sched.Do(func() error {
			return a.eng.SetTuning(a.eng.Snapshot().Reference - parameter.TuningStep)
		}))
	case 'r':
		if err := a.sched.Do(a.eng.Restart); err != nil {
			a.report("restart", err)
			return true
		}
		a.mu.Lock()
		a.gameOver = nil
		a.message = ""
		a.mu.Unlock()
	case 'q':
		return a.quit()
	}
	return true
}

// quit exits cleanly after game over, otherwise forces shutdown
func (a *App) quit() bool {
	if a.eng.Snapshot().State == engine.StateGameOver {
		a.report("exit", a.sched.Do(a.eng.Exit))
	}
	_ = a.eng.Close()
	return false
}

// EventTypes implements event.Handler
func (a *App) EventTypes() []event.EventType {
	return []event.EventType{
		event.EventNoteChanged,
		event.EventCaptureFailed,
		event.EventCaptureUnavailable,
		event.EventInputDegraded,
		event.EventTuningChanged,
		event.EventGameOver,
	}
}

// HandleEvent implements event.Handler
func (a *App) HandleEvent(ev event.GameEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch p := ev.Payload.(type) {
	case *event.NotePayload:
		if p.Voiced {
			a.note = fmt.Sprintf("%s %+dc %.1fHz", p.Note.Name, p.Cents, p.Frequency)
		} else {
			a.note = "--"
		}
	case *event.ErrorPayload:
		a.message = fmt.Sprintf("%s: %v", ev.Type, p.Err)
	case *event.CapturePayload:
		a.message = fmt.Sprintf("capture unavailable (%s), idle only", p.Backend)
	case *event.TuningPayload:
		a.message = fmt.Sprintf("tuned A4 = %.0fHz", p.Reference)
	case *event.GameOverPayload:
		a.gameOver = p
		a.message = "press r to restart or q to quit"
	}
}

// Draw renders the status lines and the pitch lane
func (a *App) Draw() {
	snap := a.eng.Snapshot()

	a.mu.Lock()
	noteText, message, over := a.note, a.message, a.gameOver
	a.mu.Unlock()

	s := a.screen
	s.Clear()
	w, h := s.Size()

	state := snap.State
	if state == "" {
		state = "Idle"
	}
	capture := "off"
	if snap.Capturing {
		capture = "on"
	}

	drawText(s, 1, 0, styleTitle, "PITCH FIGHTER")
	drawText(s, 16, 0, styleDim, fmt.Sprintf("session %d  tick %d  %s", snap.Session, snap.Ticks, state))
	drawText(s, 1, 2, styleText, fmt.Sprintf("capture: %-3s  tuning: A4=%.0fHz", capture, snap.Reference))
	drawText(s, 1, 3, styleText, "note:    "+noteText)
	drawText(s, 1, 4, healthStyle(snap.Health), fmt.Sprintf("health:  %s %d", bar(snap.Health, parameter.HealthMax, 20), snap.Health))
	drawText(s, 1, 5, styleText, fmt.Sprintf("score:   %d", snap.Score))
	drawText(s, 1, 6, styleDim, fmt.Sprintf("plasma %d  obstacles %d", snap.Collectibles, snap.Hazards))
	drawText(s, 1, 7, styleDim, "board:   "+boardText(snap.Board))
	drawText(s, 1, 8, styleDim, metricsText(a.eng.Registry().Snapshot()))

	if over != nil {
		sum := over.Summary
		drawText(s, 1, 10, styleBad, fmt.Sprintf("GAME OVER  final score %d", over.FinalScore))
		drawText(s, 1, 11, styleText, fmt.Sprintf("dominant %s  stability %d  accuracy %d  range %.0f-%.0fHz",
			orDash(sum.DominantNote), sum.Stability, sum.AccuracyScore, sum.Range.Min, sum.Range.Max))
	}

	if message != "" {
		drawText(s, 1, h-2, styleWarn, message)
	}
	drawText(s, 1, h-1, styleDim, helpLine)

	a.drawLane(snap, w, h)
	s.Show()
}

// drawLane shows the player's vertical position in the rightmost columns
func (a *App) drawLane(snap engine.Snapshot, w, h int) {
	if snap.State == "" || w < 4 || h < 4 {
		return
	}
	x := w - 3
	rows := h - 2
	for y := 0; y < rows; y++ {
		a.screen.SetContent(x, y, '|', nil, styleDim)
	}
	row := 0
	if a.height > 0 {
		row = int(snap.Y / a.height * float64(rows-1))
	}
	row = max(0, min(rows-1, row))
	a.screen.SetContent(x, row, '>', nil, healthStyle(snap.Health))
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func bar(v, total, width int) string {
	filled := 0
	if total > 0 {
		filled = max(0, min(width, v*width/total))
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(" ", width-filled) + "]"
}

func healthStyle(health int) tcell.Style {
	switch {
	case health > parameter.HealthMax/2:
		return styleGood
	case health > parameter.HealthMax/4:
		return styleWarn
	default:
		return styleBad
	}
}

func boardText(board map[string]int) string {
	if len(board) == 0 {
		return "-"
	}
	tags := make([]string, 0, len(board))
	for tag := range board {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	parts := make([]string, len(tags))
	for i, tag := range tags {
		name := tag
		if name == "" {
			name = "?"
		}
		parts[i] = fmt.Sprintf("%s=%d", name, board[tag])
	}
	return strings.Join(parts, " ")
}

// metricsText renders the voicing counters and any dropped events
func metricsText(m map[string]string) string {
	text := fmt.Sprintf("voiced %s  unvoiced %s  spawned %s",
		orDash(m[status.KeyVoiced]), orDash(m[status.KeyUnvoiced]), orDash(m[status.KeySpawned]))
	if d := m[status.KeyEventsDropped]; d != "" && d != "0" {
		text += "  dropped " + d
	}
	return text
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
