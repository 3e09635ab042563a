// Package ui hosts the agent's system tray: a status line, project and
// unsaved-edit indicators, and autosave controls.
package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"
)

// AutosaveControl is the slice of the autosaver the tray drives.
type AutosaveControl interface {
	Pause()
	Resume()
	IsPaused() bool
}

type Tray struct {
	autosave AutosaveControl
	logger   *slog.Logger

	statusItem   *systray.MenuItem
	projectsItem *systray.MenuItem
	pauseItem    *systray.MenuItem

	mu sync.Mutex

	onOpenEditor func() error
	onQuit       func()
}

type TrayConfig struct {
	Autosave     AutosaveControl
	Logger       *slog.Logger
	OnOpenEditor func() error
	OnQuit       func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		autosave:     cfg.Autosave,
		logger:       cfg.Logger,
		onOpenEditor: cfg.OnOpenEditor,
		onQuit:       cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Clipforge")
	systray.SetTooltip("Clipforge Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current agent status")
	t.statusItem.Disable()

	t.projectsItem = systray.AddMenuItem("Projects: 0", "Projects in the library")
	t.projectsItem.Disable()

	systray.AddSeparator()

	t.pauseItem = systray.AddMenuItem("Pause Autosave", "Pause automatic saving")

	openItem := systray.AddMenuItem("Open Editor...", "Open the editor in your browser")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Clipforge Agent")

	go func() {
		for {
			select {
			case <-t.pauseItem.ClickedCh:
				t.toggleAutosave()
			case <-openItem.ClickedCh:
				t.handleOpenEditor()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) toggleAutosave() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autosave == nil {
		return
	}

	if t.autosave.IsPaused() {
		t.autosave.Resume()
		t.pauseItem.SetTitle("Pause Autosave")
		t.statusItem.SetTitle("Status: Idle")
	} else {
		t.autosave.Pause()
		t.pauseItem.SetTitle("Resume Autosave")
		t.statusItem.SetTitle("Status: Autosave Paused")
	}
}

func (t *Tray) handleOpenEditor() {
	if t.onOpenEditor != nil {
		if err := t.onOpenEditor(); err != nil {
			t.logger.Error("failed to open editor", "error", err)
		}
	}
}

// UpdateStatus sets the status line. A paused autosaver takes priority so
// the pause state stays visible.
func (t *Tray) UpdateStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autosave != nil && t.autosave.IsPaused() {
		return
	}
	t.statusItem.SetTitle("Status: " + status)
}

func (t *Tray) UpdateProjectsCount(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.projectsItem.SetTitle(fmt.Sprintf("Projects: %d", count))
}

// SetUnsaved toggles the unsaved-edits marker on the status line.
func (t *Tray) SetUnsaved(unsaved bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autosave != nil && t.autosave.IsPaused() {
		return
	}
	if unsaved {
		t.statusItem.SetTitle("Status: Editing (unsaved)")
	} else {
		t.statusItem.SetTitle("Status: Idle")
	}
}

func (t *Tray) Quit() {
	systray.Quit()
}
