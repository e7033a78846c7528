package events

import (
	"context"
	"strings"

	"github.com/jonathan/resume-site/internal/types"
)

// ResumeLoader is the delegation target the résumé switcher hands paths to.
type ResumeLoader interface {
	Load(ctx context.Context, path string) (*types.ResumeData, error)
}

// RendererReady is published once, after the renderer's first successful render.
type RendererReady struct {
	Renderer ResumeLoader
}

// ResumeChanged is published after a résumé selection was stored.
type ResumeChanged struct {
	ResumePath string `json:"resumePath"`
}

// ThemeChanged is published after a theme was applied and stored.
type ThemeChanged struct {
	ThemeName string `json:"themeName"`
	ThemeFile string `json:"themeFile"`
	FullPath  string `json:"fullPath"`
	IsPDFMode bool   `json:"isPDFMode"`
}

// PrintPhase marks the print lifecycle.
type PrintPhase struct {
	Reason string
}

// SelectChange is published when the value of a <select> changes through user input.
type SelectChange struct {
	SelectID string
	Value    string
}

// KeyEvent is a keyboard event captured at document level.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Alt   bool
	Shift bool

	defaultPrevented bool
}

// HasModifier reports whether Ctrl or Meta was held.
func (k *KeyEvent) HasModifier() bool {
	return k.Ctrl || k.Meta
}

// Is reports whether the key matches letter case-insensitively.
func (k *KeyEvent) Is(letter string) bool {
	return strings.EqualFold(k.Key, letter)
}

// PreventDefault marks the event as handled so the host skips its default action.
func (k *KeyEvent) PreventDefault() {
	k.defaultPrevented = true
}

// DefaultPrevented reports whether some handler called PreventDefault.
func (k *KeyEvent) DefaultPrevented() bool {
	return k.defaultPrevented
}

// Topics exchanged between the page components.
var (
	TopicRendererReady = NewTopic[RendererReady]("resumeRendererReady")
	TopicResumeChanged = NewTopic[ResumeChanged]("resumeChanged")
	TopicThemeChanged  = NewTopic[ThemeChanged]("themeChanged")
	TopicBeforePrint   = NewTopic[PrintPhase]("beforeprint")
	TopicAfterPrint    = NewTopic[PrintPhase]("afterprint")
	TopicSelectChange  = NewTopic[SelectChange]("change")
	TopicKeyDown       = NewTopic[*KeyEvent]("keydown")
)
