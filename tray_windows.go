//go:build windows
// +build windows

package main

import (
	"errors"
	"runtime/debug"
	"sync"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

const (
	wmApp         = 0x8000
	wmAppTrayMsg  = wmApp + 1
	wmAppTrayDo   = wmApp + 2
	wmNull        = 0x0000
	wmContextMenu = 0x007B

	mfUnchecked = 0x0000
	mfChecked   = 0x0008

	tpmRightAlign  = 0x0008
	tpmBottomAlign = 0x0020

	idiApplication = 32512

	trayClassName = "VolumeSyncerTrayClass"
	trayIconID    = 1
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procAppendMenuW = user32.NewProc("AppendMenuW")
	procTrackPopup  = user32.NewProc("TrackPopupMenu")
)

// activeTray is the window the Win32 window procedure dispatches to. There
// is exactly one per process.
var activeTray *trayWindow

// trayWindow owns the hidden window, the notification-area icon and the
// context menu. All Win32 calls on it happen on the thread that created it;
// other goroutines go through invoke.
type trayWindow struct {
	hwnd           win.HWND
	hIcon          win.HICON
	taskbarCreated uint32
	log            zerolog.Logger

	mu  sync.Mutex // guards nid
	nid win.NOTIFYICONDATA

	queue *uiQueue
	app   *App
}

// newTrayWindow creates the hidden window and registers the tray icon. The
// caller's OS thread must stay locked for the lifetime of the window.
func newTrayWindow(log zerolog.Logger) (*trayWindow, error) {
	if activeTray != nil {
		return nil, errors.New("tray window already exists")
	}
	t := &trayWindow{
		log:   log.With().Str("component", "tray").Logger(),
		queue: newUIQueue(uiQueueSize),
	}

	hInst := win.GetModuleHandle(nil)
	className, _ := syscall.UTF16PtrFromString(trayClassName)
	wc := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		LpfnWndProc:   syscall.NewCallback(trayWndProc),
		HInstance:     hInst,
		LpszClassName: className,
	}
	if win.RegisterClassEx(&wc) == 0 {
		return nil, callError("RegisterClassEx", windows.GetLastError())
	}

	windowName, _ := syscall.UTF16PtrFromString(appName)
	t.hwnd = win.CreateWindowEx(0, className, windowName, 0, 0, 0, 0, 0, 0, 0, hInst, nil)
	if t.hwnd == 0 {
		return nil, callError("CreateWindowEx", windows.GetLastError())
	}
	activeTray = t

	t.taskbarCreated = win.RegisterWindowMessage(syscall.StringToUTF16Ptr("TaskbarCreated"))

	t.hIcon = win.LoadIcon(hInst, win.MAKEINTRESOURCE(1))
	if t.hIcon == 0 {
		t.hIcon = win.LoadIcon(0, win.MAKEINTRESOURCE(idiApplication))
	}

	t.nid = win.NOTIFYICONDATA{}
	t.nid.CbSize = uint32(unsafe.Sizeof(t.nid))
	t.nid.HWnd = t.hwnd
	t.nid.UID = trayIconID
	t.nid.UFlags = win.NIF_ICON | win.NIF_MESSAGE | win.NIF_TIP
	t.nid.UCallbackMessage = wmAppTrayMsg
	t.nid.HIcon = t.hIcon
	fillUTF16(t.nid.SzTip[:], appName)

	if err := t.addIcon(); err != nil {
		win.DestroyWindow(t.hwnd)
		activeTray = nil
		return nil, err
	}
	t.log.Info().Msg("tray icon registered")
	return t, nil
}

// attach connects the application state used by the context menu.
func (t *trayWindow) attach(app *App) {
	t.app = app
}

func (t *trayWindow) addIcon() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !win.Shell_NotifyIcon(win.NIM_ADD, &t.nid) {
		return errors.New("Shell_NotifyIcon(NIM_ADD) failed")
	}
	t.nid.UVersion = win.NOTIFYICON_VERSION_4
	win.Shell_NotifyIcon(win.NIM_SETVERSION, &t.nid)
	return nil
}

// run pumps window messages until WM_QUIT.
func (t *trayWindow) run() {
	var msg win.MSG
	for win.GetMessage(&msg, 0, 0, 0) > 0 {
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
}

// close asks the message loop to stop. Safe from any goroutine.
func (t *trayWindow) close() {
	win.PostMessage(t.hwnd, win.WM_CLOSE, 0, 0)
}

// destroy removes the icon and the window. Call after run returns.
func (t *trayWindow) destroy() {
	t.queue.close()
	t.mu.Lock()
	win.Shell_NotifyIcon(win.NIM_DELETE, &t.nid)
	t.mu.Unlock()
	win.DestroyWindow(t.hwnd)
	activeTray = nil
	t.log.Info().Msg("tray icon removed")
}

// invoke queues fn for the window thread. Updates arriving while the queue
// is full or after shutdown are dropped.
func (t *trayWindow) invoke(fn func()) {
	if !t.queue.push(fn) {
		t.log.Debug().Msg("tray update dropped")
		return
	}
	win.PostMessage(t.hwnd, wmAppTrayDo, 0, 0)
}

func (t *trayWindow) drainOps() {
	t.queue.drain(func(r any) {
		t.log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("tray op recovered")
	})
}

// Notify shows a balloon on the tray icon, replacing any balloon still
// visible.
func (t *trayWindow) Notify(title, message string) {
	t.invoke(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.nid.UFlags = win.NIF_INFO
		t.nid.DwInfoFlags = win.NIIF_INFO
		fillUTF16(t.nid.SzInfoTitle[:], title)
		fillUTF16(t.nid.SzInfo[:], message)
		win.Shell_NotifyIcon(win.NIM_MODIFY, &t.nid)

		t.nid.UFlags = win.NIF_ICON | win.NIF_MESSAGE | win.NIF_TIP
	})
}

func (t *trayWindow) SetTooltip(text string) {
	text = normalizeTooltip(text)
	t.invoke(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		fillUTF16(t.nid.SzTip[:], text)
		t.nid.UFlags = win.NIF_ICON | win.NIF_MESSAGE | win.NIF_TIP
		win.Shell_NotifyIcon(win.NIM_MODIFY, &t.nid)
	})
}

// showMenu builds the popup from live state, tracks it and dispatches the
// selection.
func (t *trayWindow) showMenu() {
	if t.app == nil {
		return
	}
	hMenu := win.CreatePopupMenu()
	if hMenu == 0 {
		t.log.Warn().Msg("CreatePopupMenu failed")
		return
	}
	defer win.DestroyMenu(hMenu)

	for _, item := range t.app.Menu() {
		if item.Separator {
			procAppendMenuW.Call(uintptr(hMenu), uintptr(win.MF_SEPARATOR), 0, 0)
			continue
		}
		flags := uint32(win.MF_STRING)
		if item.Checkable {
			if item.Checked {
				flags |= mfChecked
			} else {
				flags |= mfUnchecked
			}
		}
		label, _ := syscall.UTF16PtrFromString(item.Label)
		procAppendMenuW.Call(uintptr(hMenu), uintptr(flags), uintptr(item.ID), uintptr(unsafe.Pointer(label)))
	}

	var pt win.POINT
	win.GetCursorPos(&pt)
	win.SetForegroundWindow(t.hwnd)

	cmd, _, _ := procTrackPopup.Call(
		uintptr(hMenu),
		uintptr(win.TPM_RETURNCMD|win.TPM_RIGHTBUTTON|tpmRightAlign|tpmBottomAlign),
		uintptr(pt.X),
		uintptr(pt.Y),
		0,
		uintptr(t.hwnd),
		0,
	)
	win.PostMessage(t.hwnd, wmNull, 0, 0)

	if cmd != 0 {
		t.app.HandleCommand(int(cmd))
	}
}

func trayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	t := activeTray
	if t == nil || hwnd != t.hwnd {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	if msg == t.taskbarCreated {
		t.log.Info().Msg("taskbar recreated, re-adding icon")
		if err := t.addIcon(); err != nil {
			t.log.Error().Err(err).Msg("re-adding tray icon failed")
		}
		return 0
	}

	switch msg {
	case wmAppTrayMsg:
		code := uint32(lParam) & 0xFFFF
		if code == win.WM_RBUTTONUP || code == wmContextMenu {
			t.showMenu()
		}
		return 0

	case wmAppTrayDo:
		t.drainOps()
		return 0

	case win.WM_CLOSE:
		win.PostQuitMessage(0)
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}
