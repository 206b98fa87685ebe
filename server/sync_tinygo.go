//go:build tinygo

package server

import (
	"sync"
)

type rwMutex struct {
	sync.RWMutex
}
