// Package dirty holds the process-wide "store changed since last sync" flag.
//
// The flag lives in memory only. A fresh process starts dirty so the first
// sync after a restart always propagates everything.
package dirty

import "sync/atomic"

// Tracker is a single atomic flag. The zero value is clean; use New.
type Tracker struct {
	dirty atomic.Bool
}

// New returns a tracker that starts dirty.
func New() *Tracker {
	t := &Tracker{}
	t.dirty.Store(true)
	return t
}

func (t *Tracker) MarkDirty()    { t.dirty.Store(true) }
func (t *Tracker) IsDirty() bool { return t.dirty.Load() }
func (t *Tracker) ClearDirty()   { t.dirty.Store(false) }

// Default is the tracker shared by the whole process.
var Default = New()

func MarkDirty()    { Default.MarkDirty() }
func IsDirty() bool { return Default.IsDirty() }
func ClearDirty()   { Default.ClearDirty() }
