//go:build !darwin

package runtime

import "github.com/streamshift/adrestreamer/utils/errorx"

func Run(f func()) {
	defer errorx.Recover(false)

	f()
}
