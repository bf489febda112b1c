// SPDX-FileCopyrightText: 2026 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package gpiocfg

import (
	"fmt"
	"time"

	"github.com/warthog618/gpiocfg/uapi"
	"golang.org/x/sys/unix"
)

// watcher reads edge events from a request fd and passes them to the event
// handler.
//
// The watcher does not own the request fd - it is closed by the request.
type watcher struct {
	epfd int

	// the request fd producing the events
	fd int

	// the handler for detected events
	eh EventHandler

	// eventfd to signal the watcher to shutdown
	donefd int

	// closed once the watcher exits
	doneCh chan struct{}
}

func newWatcher(fd uintptr, eh EventHandler) (w *watcher, err error) {
	var epfd, donefd int
	epfd, err = unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			unix.Close(epfd)
		}
	}()
	donefd, err = unix.Eventfd(0, unix.EFD_CLOEXEC)
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			unix.Close(donefd)
		}
	}()
	epv := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(donefd)}
	err = unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, donefd, &epv)
	if err != nil {
		return
	}
	epv.Fd = int32(fd)
	err = unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, int(fd), &epv)
	if err != nil {
		return
	}
	w = &watcher{
		epfd:   epfd,
		fd:     int(fd),
		eh:     eh,
		donefd: donefd,
		doneCh: make(chan struct{}),
	}
	go w.watch()
	return
}

func (w *watcher) close() {
	unix.Write(w.donefd, []byte{1, 0, 0, 0, 0, 0, 0, 0})
	<-w.doneCh
	unix.Close(w.donefd)
}

func (w *watcher) watch() {
	epollEvents := make([]unix.EpollEvent, 2)
	defer close(w.doneCh)
	for {
		n, err := unix.EpollWait(w.epfd, epollEvents[:], -1)
		if err != nil {
			if err == unix.EBADF || err == unix.EINVAL {
				// fd closed so exit
				return
			}
			if err == unix.EINTR {
				continue
			}
			panic(fmt.Sprintf("EpollWait unexpected error: %v", err))
		}
		for i := 0; i < n; i++ {
			ev := epollEvents[i]
			if ev.Fd == int32(w.donefd) {
				unix.Close(w.epfd)
				return
			}
			evt, err := uapi.ReadLineEvent(uintptr(w.fd))
			if err != nil {
				continue
			}
			le := LineEvent{
				Offset:    int(evt.Offset),
				Timestamp: time.Duration(evt.Timestamp),
				Type:      LineEventType(evt.ID),
				Seqno:     evt.Seqno,
				LineSeqno: evt.LineSeqno,
			}
			w.eh(le)
		}
	}
}
