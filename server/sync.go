//go:build !tinygo

package server

import (
	//"sync"
	sync "github.com/sasha-s/go-deadlock"
)

type rwMutex struct {
	sync.RWMutex
}
