package vim

import "github.com/atotto/clipboard"

// SystemClipboard is a ClipboardProvider backed by the host clipboard.
type SystemClipboard struct{}

// Get returns the clipboard content.
func (SystemClipboard) Get() (string, error) {
	return clipboard.ReadAll()
}

// Set replaces the clipboard content.
func (SystemClipboard) Set(content string) error {
	return clipboard.WriteAll(content)
}

// Available reports whether the host has a usable clipboard.
func (SystemClipboard) Available() bool {
	return !clipboard.Unsupported
}
