//go:build !linux

package platform

import "errors"

func openX11(Options) (Host, error) {
	return nil, errors.New("x11 backend is only available on linux")
}
