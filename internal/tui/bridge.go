package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shaiso/Shellboard/internal/orchestrator"
)

// -- Messages --

type changeMsg orchestrator.ChangeEvent

type resultMsg orchestrator.ResultEvent

type errorMsg orchestrator.ErrorEvent

type effectMsg orchestrator.Effect

// Bridge пересылает события orchestrator'а в программу bubbletea.
//
// Колбэки вызываются из горутин тиков; после Close отправка прекращается,
// чтобы тики не блокировались на остановленной программе.
type Bridge struct {
	msgs      chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
}

// NewBridge создаёт Bridge с буфером size сообщений.
func NewBridge(size int) *Bridge {
	if size <= 0 {
		size = 64
	}
	return &Bridge{
		msgs: make(chan tea.Msg, size),
		done: make(chan struct{}),
	}
}

// Callbacks возвращает колбэки для orchestrator.DashboardConfig.
func (b *Bridge) Callbacks() orchestrator.Callbacks {
	return orchestrator.Callbacks{
		OnChange: func(e orchestrator.ChangeEvent) { b.send(changeMsg(e)) },
		OnResult: func(e orchestrator.ResultEvent) { b.send(resultMsg(e)) },
		OnError:  func(e orchestrator.ErrorEvent) { b.send(errorMsg(e)) },
		OnEffect: func(e orchestrator.Effect) { b.send(effectMsg(e)) },
	}
}

// Close прекращает доставку сообщений.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.msgs <- msg:
	case <-b.done:
	}
}

// wait ждёт следующее сообщение. После Close возвращает nil.
func (b *Bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.msgs:
			return msg
		case <-b.done:
			return nil
		}
	}
}
