//go:build !windows

package input

// NewSystemSource reports that no native capture backend exists on this
// platform.
func NewSystemSource() (Source, error) {
	return nil, ErrUnsupported
}

// NewSystemInjector reports that no native injection backend exists on
// this platform.
func NewSystemInjector() (Injector, error) {
	return nil, ErrUnsupported
}

// NewSystemHotkeys reports that no global hotkey backend exists on this
// platform.
func NewSystemHotkeys(handlers HotkeyHandlers) (Hotkeys, error) {
	return nil, ErrUnsupported
}
