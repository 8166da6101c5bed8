//go:build !gocv
// +build !gocv

package tracker

import "github.com/pkg/errors"

func newGocvBackend() (Backend, error) {
	return nil, errors.New("gocv build tag is not enabled")
}
