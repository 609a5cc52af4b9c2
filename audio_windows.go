//go:build windows && (amd64 || 386)
// +build windows
// +build amd64 386

package main

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
)

var (
	clsidMMDeviceEnumerator = ole.NewGUID("{BCDE0395-E52F-467C-8E3D-C4579291692E}")
	iidIMMDeviceEnumerator  = ole.NewGUID("{A95664D2-9614-4F35-A746-DE8DB63617E6}")
	iidIAudioEndpointVolume = ole.NewGUID("{5CDF2C82-841E-4546-9722-0CF74078229A}")
)

const (
	eRender  = 0
	eConsole = 0

	clsctxAll = 0x17

	hrSFalse         = 0x00000001
	hrRPCChangedMode = 0x80010106
	hrNotFound       = 0x80070490
)

type iMMDeviceEnumerator struct {
	ole.IUnknown
}

type iMMDeviceEnumeratorVtbl struct {
	ole.IUnknownVtbl
	EnumAudioEndpoints                     uintptr
	GetDefaultAudioEndpoint                uintptr
	GetDevice                              uintptr
	RegisterEndpointNotificationCallback   uintptr
	UnregisterEndpointNotificationCallback uintptr
}

func (v *iMMDeviceEnumerator) vtbl() *iMMDeviceEnumeratorVtbl {
	return (*iMMDeviceEnumeratorVtbl)(unsafe.Pointer(v.RawVTable))
}

func (v *iMMDeviceEnumerator) defaultAudioEndpoint() (*iMMDevice, error) {
	var dev *iMMDevice
	hr, _, _ := syscall.SyscallN(
		v.vtbl().GetDefaultAudioEndpoint,
		uintptr(unsafe.Pointer(v)),
		eRender,
		eConsole,
		uintptr(unsafe.Pointer(&dev)))
	if hr != 0 {
		return nil, ole.NewError(hr)
	}
	return dev, nil
}

type iMMDevice struct {
	ole.IUnknown
}

type iMMDeviceVtbl struct {
	ole.IUnknownVtbl
	Activate          uintptr
	OpenPropertyStore uintptr
	GetId             uintptr
	GetState          uintptr
}

func (v *iMMDevice) vtbl() *iMMDeviceVtbl {
	return (*iMMDeviceVtbl)(unsafe.Pointer(v.RawVTable))
}

func (v *iMMDevice) activateEndpointVolume() (*iAudioEndpointVolume, error) {
	var aev *iAudioEndpointVolume
	hr, _, _ := syscall.SyscallN(
		v.vtbl().Activate,
		uintptr(unsafe.Pointer(v)),
		uintptr(unsafe.Pointer(iidIAudioEndpointVolume)),
		clsctxAll,
		0,
		uintptr(unsafe.Pointer(&aev)))
	if hr != 0 {
		return nil, ole.NewError(hr)
	}
	return aev, nil
}

type iAudioEndpointVolume struct {
	ole.IUnknown
}

type iAudioEndpointVolumeVtbl struct {
	ole.IUnknownVtbl
	RegisterControlChangeNotify   uintptr
	UnregisterControlChangeNotify uintptr
	GetChannelCount               uintptr
	SetMasterVolumeLevel          uintptr
	SetMasterVolumeLevelScalar    uintptr
	GetMasterVolumeLevel          uintptr
	GetMasterVolumeLevelScalar    uintptr
	SetChannelVolumeLevel         uintptr
	SetChannelVolumeLevelScalar   uintptr
	GetChannelVolumeLevel         uintptr
	GetChannelVolumeLevelScalar   uintptr
	SetMute                       uintptr
	GetMute                       uintptr
	GetVolumeStepInfo             uintptr
	VolumeStepUp                  uintptr
	VolumeStepDown                uintptr
	QueryHardwareSupport          uintptr
	GetVolumeRange                uintptr
}

func (v *iAudioEndpointVolume) vtbl() *iAudioEndpointVolumeVtbl {
	return (*iAudioEndpointVolumeVtbl)(unsafe.Pointer(v.RawVTable))
}

// wasapiMixer resolves the default console render endpoint through the
// MMDevice API.
type wasapiMixer struct{}

func newWASAPIMixer() Mixer { return wasapiMixer{} }

// DefaultEndpoint initializes COM on the calling goroutine's OS thread and
// keeps it locked until the endpoint is closed.
func (wasapiMixer) DefaultEndpoint() (Endpoint, error) {
	runtime.LockOSThread()

	uninit := true
	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		var oleErr *ole.OleError
		switch {
		case errors.As(err, &oleErr) && oleErr.Code() == hrSFalse:
		case errors.As(err, &oleErr) && oleErr.Code() == hrRPCChangedMode:
			uninit = false
		default:
			runtime.UnlockOSThread()
			return nil, fmt.Errorf("CoInitializeEx: %w", err)
		}
	}
	release := func() {
		if uninit {
			ole.CoUninitialize()
		}
		runtime.UnlockOSThread()
	}

	aev, err := activateDefaultEndpoint()
	if err != nil {
		release()
		return nil, err
	}
	return &wasapiEndpoint{aev: aev, release: release}, nil
}

// activateDefaultEndpoint must run with COM initialized. The enumerator and
// device are released before it returns; only the volume interface survives.
func activateDefaultEndpoint() (*iAudioEndpointVolume, error) {
	unk, err := ole.CreateInstance(clsidMMDeviceEnumerator, iidIMMDeviceEnumerator)
	if err != nil {
		return nil, fmt.Errorf("create device enumerator: %w", err)
	}
	enum := (*iMMDeviceEnumerator)(unsafe.Pointer(unk))
	defer enum.Release()

	dev, err := enum.defaultAudioEndpoint()
	if err != nil {
		var oleErr *ole.OleError
		if errors.As(err, &oleErr) && oleErr.Code() == hrNotFound {
			return nil, fmt.Errorf("no default render device: %w", err)
		}
		return nil, fmt.Errorf("GetDefaultAudioEndpoint: %w", err)
	}
	defer dev.Release()

	aev, err := dev.activateEndpointVolume()
	if err != nil {
		return nil, fmt.Errorf("activate IAudioEndpointVolume: %w", err)
	}
	return aev, nil
}

type wasapiEndpoint struct {
	aev     *iAudioEndpointVolume
	release func()
}

func (e *wasapiEndpoint) ChannelCount() (uint32, error) {
	var n uint32
	hr, _, _ := syscall.SyscallN(
		e.aev.vtbl().GetChannelCount,
		uintptr(unsafe.Pointer(e.aev)),
		uintptr(unsafe.Pointer(&n)))
	if hr != 0 {
		return 0, ole.NewError(hr)
	}
	return n, nil
}

func (e *wasapiEndpoint) ChannelLevel(channel uint32) (float32, error) {
	var level float32
	hr, _, _ := syscall.SyscallN(
		e.aev.vtbl().GetChannelVolumeLevelScalar,
		uintptr(unsafe.Pointer(e.aev)),
		uintptr(channel),
		uintptr(unsafe.Pointer(&level)))
	if hr != 0 {
		return 0, ole.NewError(hr)
	}
	return level, nil
}

// SetChannelLevel passes the float bits in an integer slot. On amd64 the
// syscall trampoline mirrors the first four arguments into XMM0-3 and on 386
// stdcall arguments live on the stack, so the callee reads the right value.
// Other architectures get the stub in audio_unsupported_windows.go.
func (e *wasapiEndpoint) SetChannelLevel(channel uint32, level float32) error {
	hr, _, _ := syscall.SyscallN(
		e.aev.vtbl().SetChannelVolumeLevelScalar,
		uintptr(unsafe.Pointer(e.aev)),
		uintptr(channel),
		uintptr(math.Float32bits(level)),
		0)
	if hr != 0 {
		return ole.NewError(hr)
	}
	return nil
}

func (e *wasapiEndpoint) Close() error {
	if e.aev != nil {
		e.aev.Release()
		e.aev = nil
	}
	if e.release != nil {
		e.release()
		e.release = nil
	}
	return nil
}
